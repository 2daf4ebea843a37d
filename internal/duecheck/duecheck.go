// Package duecheck decides, tick after tick, which calls have reached their
// trigger instant and alerts each of them at most once per session.
package duecheck

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ds124wfegd/showcaller/internal/entity"
	"github.com/ds124wfegd/showcaller/internal/timecalc"
	"github.com/ds124wfegd/showcaller/pkg/scheduler"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultInterval  = 5 * time.Second
	DefaultTolerance = 60 * time.Second

	publishTimeout = 10 * time.Second
)

// SnapshotProvider hands out the already fetched data; false means nothing
// has been loaded yet.
type SnapshotProvider interface {
	Snapshot() (*entity.Snapshot, bool)
}

type Dispatcher interface {
	Dispatch(title, body string)
}

// Publisher receives fired calls for downstream consumers.
type Publisher interface {
	PublishCallFired(ctx context.Context, event *entity.CallFired) error
}

type Options struct {
	Snapshots  SnapshotProvider
	Dispatcher Dispatcher
	Notified   NotifiedSet
	Publisher  Publisher
	Interval   time.Duration
	Tolerance  time.Duration
}

// Scheduler fires a call when |trigger - now| < tolerance and it is not yet in
// the notified set. The window makes a call that came due while ticks were
// paused still fire on the next tick, as long as the window has not passed.
type Scheduler struct {
	snapshots  SnapshotProvider
	dispatcher Dispatcher
	notified   NotifiedSet
	publisher  Publisher
	interval   time.Duration
	tolerance  time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	publishing sync.WaitGroup
	log        *logrus.Entry
}

func New(opts Options) *Scheduler {
	s := &Scheduler{
		snapshots:  opts.Snapshots,
		dispatcher: opts.Dispatcher,
		notified:   opts.Notified,
		publisher:  opts.Publisher,
		interval:   opts.Interval,
		tolerance:  opts.Tolerance,
		log:        logrus.WithField("component", "duecheck"),
	}
	if s.notified == nil {
		s.notified = NewMemoryNotifiedSet()
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.tolerance <= 0 {
		s.tolerance = DefaultTolerance
	}
	// a window of 2*tolerance no wider than the tick lets calls slip between ticks
	if 2*s.tolerance <= s.interval {
		s.log.WithFields(logrus.Fields{
			"tolerance": s.tolerance.String(),
			"interval":  s.interval.String(),
		}).Warn("Tolerance too small for the tick interval, raising it")
		s.tolerance = s.interval
	}
	return s
}

func (s *Scheduler) Notified() NotifiedSet { return s.notified }

func (s *Scheduler) Tolerance() time.Duration { return s.tolerance }

// Start launches the tick loop in the background. Calling it twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	runner := scheduler.NewScheduler("call-alerts", s.interval, func(ctx context.Context, now time.Time) {
		s.Tick(ctx, now)
	})
	go func(done chan struct{}) {
		defer close(done)
		runner.Start(ctx)
	}(s.done)
}

// Stop cancels the timer and waits for the loop and pending publishes.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.publishing.Wait()
}

// Tick evaluates every call once and returns how many fired.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (fired int) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("Tick panicked: %v", r)
		}
	}()

	if s.snapshots == nil {
		return 0
	}
	snap, ok := s.snapshots.Snapshot()
	if !ok || snap == nil {
		return 0
	}

	for _, call := range snap.Calls {
		ok, err := s.evaluate(ctx, snap, call, now)
		if err != nil {
			s.log.WithError(err).WithField("call_id", call.ID).Warn("Call skipped this tick")
			continue
		}
		if ok {
			fired++
		}
	}
	return fired
}

func (s *Scheduler) evaluate(ctx context.Context, snap *entity.Snapshot, call entity.Call, now time.Time) (fired bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("evaluating call %d: %v", call.ID, r)
		}
	}()

	if !call.SendNotification.Enabled() {
		return false, nil
	}

	seen, err := s.notified.Contains(ctx, call.ID)
	if err != nil {
		return false, fmt.Errorf("notified set lookup: %w", err)
	}
	if seen {
		return false, nil
	}

	show, ok := snap.ShowByID(call.ShowID)
	if !ok {
		s.log.WithFields(logrus.Fields{"call_id": call.ID, "show_id": call.ShowID}).Debug("Call references unknown show")
		return false, nil
	}

	trigger := timecalc.TriggerInstant(show.StartTime, call.MinutesBefore)
	if !timecalc.WithinWindow(trigger, now, s.tolerance) {
		return false, nil
	}

	title, body, err := Compose(show, call, snap.GroupsFor(show.ID))
	if err != nil {
		return false, err
	}

	// marked even if the dispatcher blows up, so the call never re-fires
	defer s.markNotified(ctx, call.ID)

	s.log.WithFields(logrus.Fields{
		"call_id":    call.ID,
		"show_id":    show.ID,
		"trigger_at": trigger,
	}).Info("Call is due, dispatching alert")

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(title, body)
	}

	s.publish(&entity.CallFired{
		ID:        uuid.New().String(),
		CallID:    call.ID,
		ShowID:    show.ID,
		Title:     title,
		Body:      body,
		TriggerAt: trigger,
		FiredAt:   now,
	})
	return true, nil
}

func (s *Scheduler) markNotified(ctx context.Context, callID int64) {
	if err := s.notified.Add(ctx, callID); err != nil {
		s.log.WithError(err).WithField("call_id", callID).Error("Failed to record notified call")
	}
}

func (s *Scheduler) publish(event *entity.CallFired) {
	if s.publisher == nil {
		return
	}

	s.publishing.Add(1)
	go func() {
		defer s.publishing.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.Errorf("Publishing call %d panicked: %v", event.CallID, r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := s.publisher.PublishCallFired(ctx, event); err != nil {
			s.log.WithError(err).WithField("call_id", event.CallID).Warn("Failed to publish fired call")
		}
	}()
}
