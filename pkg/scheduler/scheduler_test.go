package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerRunsUntilCancelled(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler("test", 5*time.Millisecond, func(ctx context.Context, now time.Time) {
		runs.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	<-done

	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load(), "no ticks after cancellation")
}

func TestSchedulerSurvivesPanics(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler("panicky", 5*time.Millisecond, func(ctx context.Context, now time.Time) {
		runs.Add(1)
		panic("boom")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Start(ctx)

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, time.Millisecond)
}
