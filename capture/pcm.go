package capture

import (
	"context"
	"fmt"
	"io"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

// PCMSource serves blocks from in-memory mono PCM. Each read advances by
// hop samples, so blocks overlap when hop < block size. The final partial
// block is zero padded.
type PCMSource struct {
	samples    []float64
	sampleRate int
	blockSize  int
	hop        int
	pos        int
	closed     bool
}

// NewPCMSource creates a source over samples. The slice is not copied.
func NewPCMSource(samples []float64, sampleRate, blockSize, hop int) (*PCMSource, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive: %d", sampleRate)
	}
	if blockSize <= 0 || hop <= 0 {
		return nil, fmt.Errorf("block size and hop must be positive: %d, %d", blockSize, hop)
	}
	return &PCMSource{
		samples:    samples,
		sampleRate: sampleRate,
		blockSize:  blockSize,
		hop:        hop,
	}, nil
}

// ReadBlock returns the next block or io.EOF
func (s *PCMSource) ReadBlock(ctx context.Context) (common.AudioBlock, error) {
	if err := ctx.Err(); err != nil {
		return common.AudioBlock{}, err
	}
	if s.closed {
		return common.AudioBlock{}, ErrClosed
	}
	if s.pos >= len(s.samples) {
		return common.AudioBlock{}, io.EOF
	}

	block := make([]float64, s.blockSize)
	copy(block, s.samples[s.pos:])
	s.pos += s.hop

	return common.AudioBlock{Samples: block, SampleRate: s.sampleRate}, nil
}

// SampleRate returns the PCM sample rate
func (s *PCMSource) SampleRate() int {
	return s.sampleRate
}

// Close marks the source closed
func (s *PCMSource) Close() error {
	s.closed = true
	return nil
}
