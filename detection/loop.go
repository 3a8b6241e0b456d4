// Package detection drives the tuner: each cycle pulls one block from
// capture, estimates its pitch, filters it to the method's frequency band
// and shows either the note name or a placeholder.
package detection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RyanBlaney/sonido-tuner/algorithms/tonal"
	"github.com/RyanBlaney/sonido-tuner/capture"
	"github.com/RyanBlaney/sonido-tuner/config"
	"github.com/RyanBlaney/sonido-tuner/display"
	"github.com/RyanBlaney/sonido-tuner/logging"
)

// Stats counts completed cycles
type Stats struct {
	Cycles   uint64 `json:"cycles"`
	Accepted uint64 `json:"accepted"`
}

// Loop is the detection driver. Cycles never overlap.
type Loop struct {
	stage       stage
	sink        display.Sink
	band        tonal.Band
	placeholder string
	interval    time.Duration
	logger      logging.Logger

	stopped  atomic.Bool
	cycles   atomic.Uint64
	accepted atomic.Uint64

	mu   sync.Mutex
	last string
}

// New builds a loop for cfg. The detection method is fixed for the lifetime
// of the loop. The loop does not close source.
func New(cfg *config.Config, source capture.Source, sink display.Sink) (*Loop, error) {
	if source == nil || sink == nil {
		return nil, errors.New("detection loop needs a source and a sink")
	}
	if cfg.RefreshRate <= 0 {
		return nil, fmt.Errorf("refresh rate must be positive: %.2f", cfg.RefreshRate)
	}

	method, err := cfg.DetectionMethod()
	if err != nil {
		return nil, err
	}

	var st stage
	switch method {
	case tonal.TimeDomainAutocorrelation:
		st = &timeDomainStage{
			source:   source,
			detector: tonal.NewAutocorrelationDetector(cfg.AutocorrelationParams()),
		}
	case tonal.FrequencyDomainPeak:
		spectra, err := capture.NewSpectrumSource(source, cfg.FFTSize)
		if err != nil {
			return nil, err
		}
		st = &frequencyDomainStage{
			source:   spectra,
			detector: tonal.NewSpectralPeakDetector(),
		}
	}

	band := cfg.AcceptanceBand()
	l := &Loop{
		stage:       st,
		sink:        sink,
		band:        band,
		placeholder: cfg.Placeholder,
		interval:    time.Duration(float64(time.Second) / cfg.RefreshRate),
		logger:      logging.WithFields(logging.Fields{"component": "detection_loop"}),
		last: cfg.Placeholder,
	}

	l.logger.Debug("Detection loop created", logging.Fields{
		"band":     band.String(),
		"interval": l.interval.String(),
	})

	return l, nil
}

// Cycle runs exactly one detect and display pass. Capture errors are
// returned wrapped; io.EOF from a finite source is preserved for errors.Is.
func (l *Loop) Cycle(ctx context.Context) error {
	est, err := l.stage.estimate(ctx)
	if err != nil {
		return fmt.Errorf("failed to read capture block: %w", err)
	}

	value := l.placeholder
	if l.band.Accepts(est) {
		note := tonal.NoteFromFrequency(est.Frequency)
		value = note.String()
		l.accepted.Add(1)

		l.logger.Debug("Pitch detected", logging.Fields{
			"frequency": est.Frequency,
			"note":      value,
		})
	} else if est.Voiced {
		l.logger.Debug("Pitch outside acceptance band", logging.Fields{
			"frequency": est.Frequency,
			"band":      l.band.String(),
		})
	}

	l.cycles.Add(1)
	l.mu.Lock()
	l.last = value
	l.mu.Unlock()

	l.sink.Show(value)
	return nil
}

// Run cycles at the refresh rate until Stop is called, ctx is cancelled or
// the source runs out. End of input returns nil; cancellation returns
// ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info("Detection loop started", logging.Fields{
		"method":           l.stage.method().String(),
		"refresh_interval": l.interval.String(),
	})

	for {
		if l.stopped.Load() {
			l.logger.Info("Detection loop stopped", logging.Fields{"cycles": l.cycles.Load()})
			return nil
		}

		if err := l.Cycle(ctx); err != nil {
			switch {
			case errors.Is(err, io.EOF):
				l.logger.Info("End of input", logging.Fields{"cycles": l.cycles.Load()})
				return nil
			case ctx.Err() != nil:
				return ctx.Err()
			default:
				l.logger.Error(err, "Detection loop failed")
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Stop makes Run return before its next cycle. Safe to call from any
// goroutine, and before Run.
func (l *Loop) Stop() {
	l.stopped.Store(true)
}

// Last returns the most recently displayed value
func (l *Loop) Last() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// Stats returns the cycle counters
func (l *Loop) Stats() Stats {
	return Stats{
		Cycles:   l.cycles.Load(),
		Accepted: l.accepted.Load(),
	}
}
