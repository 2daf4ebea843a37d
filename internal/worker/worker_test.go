package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ds124wfegd/showcaller/internal/duecheck"
	"github.com/ds124wfegd/showcaller/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSnapshots struct {
	snap *entity.Snapshot
}

func (s staticSnapshots) Snapshot() (*entity.Snapshot, bool) {
	return s.snap, s.snap != nil
}

var curtain = time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)

func testSnapshot() *entity.Snapshot {
	return &entity.Snapshot{
		Shows:  []entity.Show{{ID: 1, Name: "Hamlet", StartTime: curtain}},
		Groups: []entity.Group{{ID: 1, Name: "Cast"}},
		Calls: []entity.Call{
			{ID: 1, ShowID: 1, MinutesBefore: 5, Title: "Places", GroupIDs: entity.NewGroupIDs(1), SendNotification: entity.NotifyAuto},
			{ID: 2, ShowID: 1, MinutesBefore: 90, Title: "Half", SendNotification: entity.NotifyAuto},
			{ID: 3, ShowID: 42, MinutesBefore: 10},
			{ID: 4, ShowID: 1, MinutesBefore: 30, GroupIDs: entity.ParseGroupIDs("oops")},
		},
	}
}

func TestCountdownWorkerRefresh(t *testing.T) {
	notified := duecheck.NewMemoryNotifiedSet()
	require.NoError(t, notified.Add(context.Background(), 2))

	w := NewCountdownWorker(staticSnapshots{testSnapshot()}, notified, 0)
	assert.Equal(t, DefaultCountdownInterval, w.interval)

	now := curtain.Add(-40 * time.Minute)
	w.Refresh(context.Background(), now)

	board := w.Board()
	require.Len(t, board, 3, "calls of unknown shows are left off the board")

	assert.Equal(t, int64(2), board[0].CallID)
	assert.Equal(t, "0:00", board[0].Remaining)
	assert.True(t, board[0].Due)
	assert.True(t, board[0].Notified)

	assert.Equal(t, int64(4), board[1].CallID)
	assert.Equal(t, "0:10", board[1].Remaining)

	assert.Equal(t, int64(1), board[2].CallID)
	assert.Equal(t, "Cast Call: Places", board[2].Title)
	assert.Equal(t, "0:35", board[2].Remaining)
	assert.False(t, board[2].Due)
	assert.False(t, board[2].Notified)
}

func TestCountdownWorkerSkipsStartedShows(t *testing.T) {
	w := NewCountdownWorker(staticSnapshots{testSnapshot()}, nil, time.Minute)
	w.Refresh(context.Background(), curtain.Add(time.Second))
	assert.Empty(t, w.Board())
	assert.Equal(t, 0, w.GetStats()["entries"])
}

func TestCountdownWorkerWaitsForSnapshot(t *testing.T) {
	w := NewCountdownWorker(staticSnapshots{}, nil, time.Minute)
	w.Refresh(context.Background(), curtain)
	assert.Empty(t, w.Board())
}

type countingStore struct {
	calls atomic.Int32
}

func (s *countingStore) Refresh(context.Context) error {
	s.calls.Add(1)
	return errors.New("db unavailable")
}

func TestSnapshotWorkerRunsUntilCancelled(t *testing.T) {
	store := &countingStore{}
	w := NewSnapshotWorker(store, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("snapshot worker did not stop")
	}

	stats := w.GetStats()
	assert.Equal(t, "snapshot_refresh", stats["worker_type"])
	assert.Equal(t, int64(store.calls.Load()), stats["refreshes"])
	assert.Equal(t, stats["refreshes"], stats["failures"])
}
