package scheduler

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
)

// Task is one run of a recurring job.
type Task func(ctx context.Context, now time.Time)

// Scheduler runs a task on a fixed interval until its context ends. A panic
// inside the task is logged and the next tick still happens.
type Scheduler struct {
	name     string
	interval time.Duration
	task     Task
	log      *logrus.Entry
}

func NewScheduler(name string, interval time.Duration, task Task) *Scheduler {
	return &Scheduler{
		name:     name,
		interval: interval,
		task:     task,
		log:      logrus.WithField("task", name),
	}
}

// Start blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.WithField("interval", s.interval.String()).Info("Scheduler started")

	for {
		select {
		case now := <-ticker.C:
			s.run(ctx, now)
		case <-ctx.Done():
			s.log.Info("Scheduler stopped")
			return
		}
	}
}

func (s *Scheduler) run(ctx context.Context, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("stack", string(debug.Stack())).Errorf("Task panicked: %v", r)
		}
	}()

	s.task(ctx, now)
}
