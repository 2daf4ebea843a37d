package worker

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ds124wfegd/showcaller/internal/duecheck"
	"github.com/ds124wfegd/showcaller/internal/entity"
	"github.com/ds124wfegd/showcaller/internal/timecalc"

	"github.com/sirupsen/logrus"
)

const DefaultCountdownInterval = 60 * time.Second

type NotifiedLookup interface {
	Contains(ctx context.Context, callID int64) (bool, error)
}

// CountdownWorker rebuilds the "time until call" board on its own cadence.
// It only reads; alerts are the due-check scheduler's job.
type CountdownWorker struct {
	snapshots duecheck.SnapshotProvider
	notified  NotifiedLookup
	interval  time.Duration

	mu    sync.RWMutex
	board []entity.Countdown
}

func NewCountdownWorker(snapshots duecheck.SnapshotProvider, notified NotifiedLookup, interval time.Duration) *CountdownWorker {
	if interval <= 0 {
		interval = DefaultCountdownInterval
	}
	return &CountdownWorker{
		snapshots: snapshots,
		notified:  notified,
		interval:  interval,
	}
}

func (w *CountdownWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Countdown worker started")
	w.Refresh(ctx, time.Now())

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Countdown worker stopped")
			return
		case now := <-ticker.C:
			w.Refresh(ctx, now)
		}
	}
}

// Refresh recomputes the board for every call of a show that has not started.
func (w *CountdownWorker) Refresh(ctx context.Context, now time.Time) {
	snap, ok := w.snapshots.Snapshot()
	if !ok || snap == nil {
		return
	}

	board := make([]entity.Countdown, 0, len(snap.Calls))
	for _, call := range snap.Calls {
		show, ok := snap.ShowByID(call.ShowID)
		if !ok || !now.Before(show.StartTime) {
			continue
		}

		trigger := timecalc.TriggerInstant(show.StartTime, call.MinutesBefore)
		remaining := timecalc.Remaining(trigger, now)

		title, _, err := duecheck.Compose(show, call, snap.GroupsFor(show.ID))
		if err != nil {
			title = call.Title
		}

		entry := entity.Countdown{
			CallID:    call.ID,
			ShowID:    show.ID,
			Title:     title,
			TriggerAt: trigger,
			Remaining: timecalc.FormatDuration(remaining),
			Due:       remaining == 0,
		}
		if w.notified != nil && call.SendNotification.Enabled() {
			seen, err := w.notified.Contains(ctx, call.ID)
			if err != nil {
				logrus.Debugf("Notified lookup failed for call %d: %v", call.ID, err)
			}
			entry.Notified = seen
		}
		board = append(board, entry)
	}

	sort.SliceStable(board, func(i, j int) bool {
		return board[i].TriggerAt.Before(board[j].TriggerAt)
	})

	w.mu.Lock()
	w.board = board
	w.mu.Unlock()
}

// Board returns a copy of the latest countdowns, soonest first.
func (w *CountdownWorker) Board() []entity.Countdown {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]entity.Countdown(nil), w.board...)
}

// GetStats reports the worker state on /health.
func (w *CountdownWorker) GetStats() map[string]interface{} {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return map[string]interface{}{
		"worker_type": "countdown",
		"interval":    w.interval.String(),
		"entries":     len(w.board),
	}
}
