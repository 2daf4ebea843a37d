package notify

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Tone is one segment of an audible cue.
type Tone struct {
	Frequency float64
	Duration  time.Duration
}

// Cue is played in order, tone after tone.
type Cue []Tone

// DefaultCue is the short two-tone chime that accompanies every alert.
var DefaultCue = Cue{
	{Frequency: 880, Duration: 150 * time.Millisecond},
	{Frequency: 660, Duration: 150 * time.Millisecond},
}

// Player produces sound. Implementations may fail (no device, muted host);
// the dispatcher swallows those failures.
type Player interface {
	Play(cue Cue) error
}

// BellPlayer rings the terminal bell once per tone. Terminals cannot pitch the
// bell, so only the rhythm of the cue survives.
type BellPlayer struct {
	mu  sync.Mutex
	out io.Writer
}

func NewBellPlayer(out io.Writer) *BellPlayer {
	return &BellPlayer{out: out}
}

func (p *BellPlayer) Play(cue Cue) error {
	if p.out == nil {
		return fmt.Errorf("bell player: no output")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, tone := range cue {
		if _, err := p.out.Write([]byte{'\a'}); err != nil {
			return fmt.Errorf("bell player: %w", err)
		}
		time.Sleep(tone.Duration)
	}
	return nil
}

// SilentPlayer is used when audio is disabled.
type SilentPlayer struct{}

func (SilentPlayer) Play(Cue) error { return nil }
