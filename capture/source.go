// Package capture supplies fixed-length audio blocks to the detection loop
// from live input, audio files or a synthetic tone.
package capture

import (
	"context"
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/algorithms/filters"
	"github.com/RyanBlaney/sonido-tuner/algorithms/spectral"
)

// ErrClosed is returned by ReadBlock after Close
var ErrClosed = errors.New("capture source closed")

// Source produces one AudioBlock per call. Finite sources return io.EOF
// once exhausted. Returned blocks must not be modified by the caller.
type Source interface {
	ReadBlock(ctx context.Context) (common.AudioBlock, error)
	Close() error
}

// SpectrumSource wraps a Source with a fixed-size magnitude transform
type SpectrumSource struct {
	source   Source
	analyzer *spectral.Analyzer
}

// NewSpectrumSource creates a spectrum source with an fftSize-point transform
func NewSpectrumSource(source Source, fftSize int) (*SpectrumSource, error) {
	analyzer, err := spectral.NewAnalyzer(fftSize)
	if err != nil {
		return nil, err
	}
	return &SpectrumSource{source: source, analyzer: analyzer}, nil
}

// ReadSpectrum pulls one block and returns its magnitude spectrum
func (s *SpectrumSource) ReadSpectrum(ctx context.Context) (common.SpectrumBlock, error) {
	block, err := s.source.ReadBlock(ctx)
	if err != nil {
		return common.SpectrumBlock{}, err
	}
	return s.analyzer.Spectrum(block), nil
}

// Close closes the underlying source
func (s *SpectrumSource) Close() error {
	return s.source.Close()
}

// FilterOptions selects the filters run over captured audio before analysis.
// A zero cutoff disables that stage.
type FilterOptions struct {
	DCCutoff      float64 // Hz
	LowpassCutoff float64 // Hz
}

// newPreFilter builds the DC blocker and low-pass stages that are enabled
func newPreFilter(sampleRate int, opts FilterOptions) (filters.Chain, error) {
	var chain filters.Chain
	if opts.DCCutoff > 0 {
		dc, err := filters.NewDCBlocker(sampleRate, opts.DCCutoff)
		if err != nil {
			return nil, fmt.Errorf("failed to create dc blocker: %w", err)
		}
		chain = append(chain, dc)
	}
	if opts.LowpassCutoff > 0 {
		lp, err := filters.NewLowpass(sampleRate, opts.LowpassCutoff)
		if err != nil {
			return nil, fmt.Errorf("failed to create lowpass filter: %w", err)
		}
		chain = append(chain, lp)
	}
	return chain, nil
}
