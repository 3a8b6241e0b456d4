// Package reference plays the equal-tempered pitch of a note so a player can
// tune by ear.
package reference

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/RyanBlaney/sonido-tuner/algorithms/tonal"
	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

// Tone returns a finite sine streamer at the note's frequency. volume is a
// linear gain in [0, 1].
func Tone(note tonal.Note, sampleRate beep.SampleRate, duration time.Duration, volume float64) (beep.Streamer, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive: %s", duration)
	}
	if volume < 0 || volume > 1 {
		return nil, fmt.Errorf("volume must be in [0, 1]: %.2f", volume)
	}

	if nyquist := float64(sampleRate) / 2; note.Frequency() >= nyquist {
		return nil, fmt.Errorf("%s (%.2f Hz) is above nyquist at %d Hz", note, note.Frequency(), sampleRate)
	}

	sine, err := generators.SineTone(sampleRate, note.Frequency())
	if err != nil {
		return nil, fmt.Errorf("failed to create tone for %s: %w", note, err)
	}

	return &effects.Volume{
		Streamer: beep.Take(sampleRate.N(duration), sine),
		Base:     2,
		Volume:   math.Log2(volume),
		Silent:   volume == 0,
	}, nil
}

// Player owns the speaker. The speaker is process wide, so it is initialized
// once.
type Player struct {
	sampleRate beep.SampleRate
	volume     float64

	mu          sync.Mutex
	initialized bool
	logger      logging.Logger
}

// NewPlayer creates a player at sampleRate
func NewPlayer(sampleRate int, volume float64) *Player {
	return &Player{
		sampleRate: beep.SampleRate(sampleRate),
		volume:     volume,
		logger:     logging.WithFields(logging.Fields{"component": "reference_player"}),
	}
}

// Play sounds note for duration and blocks until it finishes or ctx is done.
func (p *Player) Play(ctx context.Context, note tonal.Note, duration time.Duration) error {
	tone, err := Tone(note, p.sampleRate, duration, p.volume)
	if err != nil {
		return err
	}

	if err := p.init(); err != nil {
		return err
	}

	p.logger.Info("Playing reference tone", logging.Fields{
		"note":      note.String(),
		"frequency": note.Frequency(),
		"duration":  duration.String(),
	})

	done := make(chan struct{})
	speaker.Play(beep.Seq(tone, beep.Callback(func() { close(done) })))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

func (p *Player) init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.sampleRate, p.sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	p.initialized = true
	return nil
}

// Close releases the speaker
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		speaker.Close()
		p.initialized = false
	}
}
