package capture

import (
	"context"
	"fmt"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/algorithms/filters"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
)

// ToneSource is an endless synthetic sine source, silent when frequency is 0.
// Consecutive blocks are contiguous.
type ToneSource struct {
	streamer   beep.Streamer
	sampleRate int
	blockSize  int
	amplitude  float64
	filter     filters.Chain
	frames     [][2]float64
	closed     bool
}

// NewToneSource creates a tone generator. lowpassCutoff of 0 disables filtering.
func NewToneSource(sampleRate, blockSize int, frequency, amplitude, lowpassCutoff float64) (*ToneSource, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("block size must be positive: %d", blockSize)
	}

	var streamer beep.Streamer
	if frequency > 0 {
		sine, err := generators.SineTone(beep.SampleRate(sampleRate), frequency)
		if err != nil {
			return nil, fmt.Errorf("failed to create sine tone: %w", err)
		}
		streamer = sine
	} else {
		streamer = beep.Silence(-1)
	}

	filter, err := newPreFilter(sampleRate, FilterOptions{LowpassCutoff: lowpassCutoff})
	if err != nil {
		return nil, err
	}

	return &ToneSource{
		streamer:   streamer,
		sampleRate: sampleRate,
		blockSize:  blockSize,
		amplitude:  amplitude,
		filter:     filter,
		frames:     make([][2]float64, blockSize),
	}, nil
}

// ReadBlock generates the next block
func (s *ToneSource) ReadBlock(ctx context.Context) (common.AudioBlock, error) {
	if err := ctx.Err(); err != nil {
		return common.AudioBlock{}, err
	}
	if s.closed {
		return common.AudioBlock{}, ErrClosed
	}

	n, _ := s.streamer.Stream(s.frames)

	samples := make([]float64, s.blockSize)
	for i := range n {
		samples[i] = s.frames[i][0] * s.amplitude
	}
	s.filter.ProcessInPlace(samples)

	return common.AudioBlock{Samples: samples, SampleRate: s.sampleRate}, nil
}

// Close stops the generator
func (s *ToneSource) Close() error {
	s.closed = true
	return nil
}
