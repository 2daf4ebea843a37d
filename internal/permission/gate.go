// Package permission tracks whether alerts may be sent over the native channel.
package permission

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type State string

const (
	StateUnsupported State = "unsupported"
	StateDefault     State = "default"
	StateGranted     State = "granted"
	StateDenied      State = "denied"
)

// DefaultPromptTimeout bounds one prompt, independent of who asked for it.
const DefaultPromptTimeout = 30 * time.Second

// Platform is a native notification channel that can be asked for permission.
type Platform interface {
	// Supported reports whether the channel exists at all.
	Supported() bool
	// Request prompts for permission and returns StateGranted or StateDenied.
	Request(ctx context.Context) (State, error)
}

// Gate is the single source of truth for "can we emit a native alert now".
// Only default moves, and only to granted or denied; every other state is
// terminal.
type Gate struct {
	platform Platform

	mu    sync.RWMutex
	state State

	prompt        singleflight.Group
	promptTimeout time.Duration
	log           *logrus.Entry
}

func NewGate(platform Platform) *Gate {
	state := StateDefault
	if platform == nil || !platform.Supported() {
		state = StateUnsupported
	}
	return &Gate{
		platform:      platform,
		state:         state,
		promptTimeout: DefaultPromptTimeout,
		log:           logrus.WithField("component", "permission"),
	}
}

func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// RequestPermission is idempotent: granted resolves true and denied resolves
// false without prompting. Concurrent callers share one outstanding prompt.
func (g *Gate) RequestPermission(ctx context.Context) (bool, error) {
	switch g.State() {
	case StateGranted:
		return true, nil
	case StateDenied, StateUnsupported:
		return false, nil
	}

	// the prompt outlives any single caller; each caller waits on its own ctx
	ch := g.prompt.DoChan("request", func() (interface{}, error) {
		// a prompt that finished while we waited already settled the state
		if s := g.State(); s != StateDefault {
			return s, nil
		}

		promptCtx, cancel := context.WithTimeout(context.Background(), g.promptTimeout)
		defer cancel()

		s, err := g.platform.Request(promptCtx)
		if err != nil {
			return StateDefault, fmt.Errorf("permission request: %w", err)
		}
		if s != StateGranted && s != StateDenied {
			return StateDefault, fmt.Errorf("permission request: unexpected state %q", s)
		}

		g.mu.Lock()
		if g.state == StateDefault {
			g.state = s
		}
		s = g.state
		g.mu.Unlock()

		g.log.WithField("state", s).Info("Native notification permission settled")
		return s, nil
	})

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			g.log.WithError(res.Err).Warn("Native notification permission request failed")
			return false, res.Err
		}
		return res.Val.(State) == StateGranted, nil
	}
}

func (g *Gate) CanNotifyNatively() bool {
	return g.State() == StateGranted
}

// IsPlatformNotificationCapable distinguishes "supported but not granted" from
// "no native channel at all".
func (g *Gate) IsPlatformNotificationCapable() bool {
	return g.State() != StateUnsupported
}
