package duecheck

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ds124wfegd/showcaller/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSnapshots struct {
	snap   *entity.Snapshot
	loaded bool
	reads  atomic.Int32
}

func (s *staticSnapshots) Snapshot() (*entity.Snapshot, bool) {
	s.reads.Add(1)
	return s.snap, s.loaded
}

type alert struct {
	title string
	body  string
}

type recordingDispatcher struct {
	mu     sync.Mutex
	alerts []alert
	panic  bool
}

func (d *recordingDispatcher) Dispatch(title, body string) {
	d.mu.Lock()
	d.alerts = append(d.alerts, alert{title: title, body: body})
	d.mu.Unlock()
	if d.panic {
		panic("dispatch exploded")
	}
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.alerts)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*entity.CallFired
}

func (p *recordingPublisher) PublishCallFired(ctx context.Context, event *entity.CallFired) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type brokenSet struct{}

func (brokenSet) Contains(context.Context, int64) (bool, error) { return false, errors.New("redis down") }
func (brokenSet) Add(context.Context, int64) error              { return errors.New("redis down") }
func (brokenSet) Len() int                                      { return 0 }

var showStart = time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)

func at(clock string) time.Time {
	t, err := time.Parse(time.RFC3339, "2024-01-01T"+clock+"Z")
	if err != nil {
		panic(err)
	}
	return t
}

func baseSnapshot(calls ...entity.Call) *entity.Snapshot {
	return &entity.Snapshot{
		Shows: []entity.Show{{ID: 1, Name: "Hamlet", StartTime: showStart}},
		Calls: calls,
		Groups: []entity.Group{
			{ID: 1, Name: "Cast"},
			{ID: 2, Name: "Crew"},
		},
	}
}

func newScheduler(snap *entity.Snapshot) (*Scheduler, *recordingDispatcher) {
	d := &recordingDispatcher{}
	s := New(Options{
		Snapshots:  &staticSnapshots{snap: snap, loaded: true},
		Dispatcher: d,
		Tolerance:  time.Minute,
	})
	return s, d
}

func TestTickExactDueScenario(t *testing.T) {
	call := entity.Call{ID: 10, ShowID: 1, MinutesBefore: 30, SendNotification: entity.NotifyAuto}
	s, d := newScheduler(baseSnapshot(call))
	ctx := context.Background()

	assert.Equal(t, 1, s.Tick(ctx, at("19:30:00")))
	require.Equal(t, 1, d.count())
	assert.Equal(t, "Call: Call Time", d.alerts[0].title)
	assert.Equal(t, "Time to prepare for Hamlet.", d.alerts[0].body)

	assert.Zero(t, s.Tick(ctx, at("19:30:05")))
	assert.Zero(t, s.Tick(ctx, at("19:31:00")))
	assert.Equal(t, 1, d.count())

	seen, err := s.Notified().Contains(ctx, 10)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestTickIdempotence(t *testing.T) {
	call := entity.Call{ID: 7, ShowID: 1, MinutesBefore: 15, SendNotification: entity.NotifyAuto}
	s, d := newScheduler(baseSnapshot(call))
	ctx := context.Background()

	now := at("19:45:00")
	for i := 0; i < 50; i++ {
		s.Tick(ctx, now)
		now = now.Add(time.Second)
	}
	assert.Equal(t, 1, d.count())
}

func TestTickToleranceWindow(t *testing.T) {
	ctx := context.Background()

	t.Run("45 seconds late still fires once", func(t *testing.T) {
		call := entity.Call{ID: 1, ShowID: 1, MinutesBefore: 30, SendNotification: entity.NotifyAuto}
		s, d := newScheduler(baseSnapshot(call))

		assert.Equal(t, 1, s.Tick(ctx, at("19:30:45")))
		assert.Zero(t, s.Tick(ctx, at("19:30:50")))
		assert.Equal(t, 1, d.count())
	})

	t.Run("5 minutes late and already notified does not re-fire", func(t *testing.T) {
		call := entity.Call{ID: 2, ShowID: 1, MinutesBefore: 30, SendNotification: entity.NotifyAuto}
		s, d := newScheduler(baseSnapshot(call))
		require.NoError(t, s.Notified().Add(ctx, 2))

		assert.Zero(t, s.Tick(ctx, at("19:35:00")))
		assert.Zero(t, d.count())
	})

	t.Run("outside the window never fires", func(t *testing.T) {
		call := entity.Call{ID: 3, ShowID: 1, MinutesBefore: 30, SendNotification: entity.NotifyAuto}
		s, d := newScheduler(baseSnapshot(call))

		assert.Zero(t, s.Tick(ctx, at("19:25:00")))
		assert.Zero(t, s.Tick(ctx, at("19:31:00")))
		assert.Zero(t, d.count())
	})
}

func TestTickSkipsManualCalls(t *testing.T) {
	call := entity.Call{ID: 4, ShowID: 1, MinutesBefore: 30, SendNotification: entity.NotifyManual}
	s, d := newScheduler(baseSnapshot(call))

	assert.Zero(t, s.Tick(context.Background(), at("19:30:00")))
	assert.Zero(t, d.count())
	assert.Zero(t, s.Notified().Len())
}

func TestTickDanglingShowReference(t *testing.T) {
	call := entity.Call{ID: 5, ShowID: 99, MinutesBefore: 30, SendNotification: entity.NotifyAuto}
	s, d := newScheduler(baseSnapshot(call))

	assert.NotPanics(t, func() {
		for i := 0; i < 10; i++ {
			s.Tick(context.Background(), at("19:30:00"))
		}
	})
	assert.Zero(t, d.count())
}

func TestTickIdleUntilLoaded(t *testing.T) {
	d := &recordingDispatcher{}
	s := New(Options{Snapshots: &staticSnapshots{}, Dispatcher: d})

	assert.Zero(t, s.Tick(context.Background(), at("19:30:00")))
	assert.Zero(t, d.count())

	s = New(Options{Dispatcher: d})
	assert.Zero(t, s.Tick(context.Background(), at("19:30:00")))
}

func TestTickIsolatesFailures(t *testing.T) {
	bad := entity.Call{ID: 1, ShowID: 1, MinutesBefore: 30, SendNotification: entity.NotifyAuto,
		GroupIDs: entity.ParseGroupIDs("cast")}
	good := entity.Call{ID: 2, ShowID: 1, MinutesBefore: 30, SendNotification: entity.NotifyAuto,
		GroupIDs: entity.NewGroupIDs(1, 2), Title: "Places"}
	s, d := newScheduler(baseSnapshot(bad, good))
	ctx := context.Background()

	assert.Equal(t, 1, s.Tick(ctx, at("19:30:00")))
	require.Equal(t, 1, d.count())
	assert.Equal(t, "Cast, Crew Call: Places", d.alerts[0].title)

	seen, err := s.Notified().Contains(ctx, 1)
	require.NoError(t, err)
	assert.False(t, seen, "malformed call is retried on the next tick")
}

func TestTickMarksNotifiedWhenDispatchPanics(t *testing.T) {
	call := entity.Call{ID: 8, ShowID: 1, MinutesBefore: 30, SendNotification: entity.NotifyAuto}
	d := &recordingDispatcher{panic: true}
	s := New(Options{Snapshots: &staticSnapshots{snap: baseSnapshot(call), loaded: true}, Dispatcher: d})
	ctx := context.Background()

	assert.NotPanics(t, func() {
		s.Tick(ctx, at("19:30:00"))
		s.Tick(ctx, at("19:30:05"))
	})
	assert.Equal(t, 1, d.count())
}

func TestTickNotifiedSetFailureSkipsCall(t *testing.T) {
	call := entity.Call{ID: 9, ShowID: 1, MinutesBefore: 30, SendNotification: entity.NotifyAuto}
	d := &recordingDispatcher{}
	s := New(Options{
		Snapshots:  &staticSnapshots{snap: baseSnapshot(call), loaded: true},
		Dispatcher: d,
		Notified:   brokenSet{},
	})

	assert.Zero(t, s.Tick(context.Background(), at("19:30:00")))
	assert.Zero(t, d.count())
}

func TestTickPublishesFiredCalls(t *testing.T) {
	call := entity.Call{ID: 11, ShowID: 1, MinutesBefore: 10, SendNotification: entity.NotifyAuto}
	pub := &recordingPublisher{}
	s := New(Options{
		Snapshots:  &staticSnapshots{snap: baseSnapshot(call), loaded: true},
		Dispatcher: &recordingDispatcher{},
		Publisher:  pub,
	})

	s.Tick(context.Background(), at("19:50:00"))
	s.Stop()
	s.publishing.Wait()

	require.Len(t, pub.events, 1)
	assert.Equal(t, int64(11), pub.events[0].CallID)
	assert.Equal(t, at("19:50:00"), pub.events[0].TriggerAt)
	assert.NotEmpty(t, pub.events[0].ID)
}

func TestSchedulerStopEndsTicks(t *testing.T) {
	snaps := &staticSnapshots{snap: baseSnapshot(), loaded: true}
	s := New(Options{Snapshots: snaps, Dispatcher: &recordingDispatcher{}, Interval: 5 * time.Millisecond})

	s.Start(context.Background())
	s.Start(context.Background())
	assert.Eventually(t, func() bool { return snaps.reads.Load() >= 2 }, time.Second, time.Millisecond)

	s.Stop()
	stopped := snaps.reads.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, snaps.reads.Load(), "a stopped scheduler must not keep ticking")

	assert.NotPanics(t, s.Stop)
}

func TestDefaults(t *testing.T) {
	s := New(Options{})
	assert.Equal(t, DefaultTolerance, s.Tolerance())
	assert.Equal(t, DefaultInterval, s.interval)
	assert.NotNil(t, s.Notified())
}

func TestNarrowToleranceIsRaisedToTheTick(t *testing.T) {
	call := entity.Call{ID: 12, ShowID: 1, MinutesBefore: 30, SendNotification: entity.NotifyAuto}
	d := &recordingDispatcher{}
	s := New(Options{
		Snapshots:  &staticSnapshots{snap: baseSnapshot(call), loaded: true},
		Dispatcher: d,
		Interval:   5 * time.Second,
		Tolerance:  2 * time.Second,
	})
	assert.Equal(t, 5*time.Second, s.Tolerance())

	// ticks straddle 19:30:00 without landing within two seconds of it
	now := at("19:29:57")
	for i := 0; i < 20; i++ {
		s.Tick(context.Background(), now)
		now = now.Add(5 * time.Second)
	}
	assert.Equal(t, 1, d.count())
}
