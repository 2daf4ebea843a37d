package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultSnapshotRefresh = 15 * time.Second

type Refresher interface {
	Refresh(ctx context.Context) error
}

// SnapshotWorker reloads the alert snapshot so edits made outside this
// process reach the scheduler.
type SnapshotWorker struct {
	store    Refresher
	interval time.Duration

	refreshes atomic.Int64
	failures  atomic.Int64
}

func NewSnapshotWorker(store Refresher, interval time.Duration) *SnapshotWorker {
	if interval <= 0 {
		interval = DefaultSnapshotRefresh
	}
	return &SnapshotWorker{
		store:    store,
		interval: interval,
	}
}

func (w *SnapshotWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Snapshot worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Snapshot worker stopped")
			return
		case <-ticker.C:
			w.refreshes.Add(1)
			if err := w.store.Refresh(ctx); err != nil {
				w.failures.Add(1)
				logrus.Errorf("Failed to refresh snapshot: %v", err)
			}
		}
	}
}

func (w *SnapshotWorker) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"worker_type": "snapshot_refresh",
		"interval":    w.interval.String(),
		"refreshes":   w.refreshes.Load(),
		"failures":    w.failures.Load(),
	}
}
