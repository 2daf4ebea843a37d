package service

import (
	"context"

	"github.com/sirupsen/logrus"
)

// refreshAfterWrite keeps the alert snapshot in step with a successful write.
// A failed reload is not the caller's problem; the periodic refresh catches up.
func refreshAfterWrite(ctx context.Context, r Refresher) {
	if r == nil {
		return
	}
	if err := r.Refresh(ctx); err != nil {
		logrus.WithError(err).Warn("Failed to refresh snapshot after write")
	}
}
