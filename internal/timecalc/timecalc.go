// Package timecalc holds the pure time arithmetic behind call alerts.
package timecalc

import (
	"fmt"
	"time"
)

// TriggerInstant is the moment a call becomes due. It is not clamped and may
// lie in the past.
func TriggerInstant(showStart time.Time, minutesBefore int) time.Time {
	return showStart.Add(-time.Duration(minutesBefore) * time.Minute)
}

// Remaining returns how long until instant, never negative.
func Remaining(instant, now time.Time) time.Duration {
	if d := instant.Sub(now); d > 0 {
		return d
	}
	return 0
}

// FormatDuration renders d as H:MM. Seconds are truncated.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Minute)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// WithinWindow reports whether instant is strictly closer to now than tolerance.
func WithinWindow(instant, now time.Time, tolerance time.Duration) bool {
	d := instant.Sub(now)
	if d < 0 {
		d = -d
	}
	return d < tolerance
}
