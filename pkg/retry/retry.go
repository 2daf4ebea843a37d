package retry

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"
)

// Manager manages retry logic for failed deliveries
type Manager struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// NewManager creates a new Manager
func NewManager(maxRetries int, baseDelay time.Duration) *Manager {
	return &Manager{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   baseDelay * 16, // Maximum 16x base delay
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// ShouldRetry determines if another attempt should be made and returns the delay
func (m *Manager) ShouldRetry(attempt int, err error) (bool, time.Duration) {
	if attempt >= m.maxRetries {
		return false, 0
	}

	if !m.isRetryableError(err) {
		return false, 0
	}

	return true, m.calculateBackoff(attempt)
}

// Do runs fn until it succeeds, fails permanently, retries run out or ctx ends.
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		retry, delay := m.ShouldRetry(attempt, err)
		if !retry {
			return err
		}

		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
	}
}

// isRetryableError determines if an error is retryable
func (m *Manager) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	// Define non-retryable error patterns
	nonRetryableErrors := []string{
		"invalid",
		"not found",
		"permission denied",
		"forbidden",
		"unauthorized",
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range nonRetryableErrors {
		if strings.Contains(errStr, pattern) {
			return false
		}
	}

	return true
}

// calculateBackoff calculates exponential backoff delay with jitter
func (m *Manager) calculateBackoff(attempt int) time.Duration {
	if attempt <= 0 || m.baseDelay <= 0 {
		return m.baseDelay
	}

	// Exponential backoff: base * 2^attempt
	backoff := m.baseDelay * time.Duration(1<<attempt)

	// Apply jitter (±25%)
	if quarter := int64(backoff / 4); quarter > 0 {
		jitter := time.Duration(rand.Int63n(quarter))
		if rand.Intn(2) == 0 {
			backoff += jitter
		} else {
			backoff -= jitter
		}
	}

	// Cap at maximum delay
	if backoff > m.maxDelay {
		backoff = m.maxDelay
	}

	return backoff
}
