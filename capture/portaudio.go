package capture

import (
	"context"
	"fmt"
	"sync"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/algorithms/filters"
	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/gordonklaus/portaudio"
)

// Ring is the shared capture buffer: the audio callback writes, the
// detection loop takes snapshots of the most recent block.
type Ring struct {
	mu      sync.Mutex
	buffer  *common.CircularBuffer
	filter  filters.Chain
	scratch []float64
}

// NewRing creates a ring holding size samples. filter may be empty.
func NewRing(size int, filter filters.Chain) *Ring {
	return &Ring{
		buffer: common.NewCircularBuffer(size),
		filter: filter,
	}
}

// Write appends raw samples, filtering them on the way in
func (r *Ring) Write(in []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cap(r.scratch) < len(in) {
		r.scratch = make([]float64, len(in))
	}
	buf := r.scratch[:len(in)]
	for i, v := range in {
		buf[i] = float64(v)
	}
	r.filter.ProcessInPlace(buf)
	r.buffer.Write(buf)
}

// Snapshot copies the latest len(dst) samples into dst, zero padded at the
// front until enough audio has arrived
func (r *Ring) Snapshot(dst []float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buffer.Latest(dst)
}

// PortAudioSource captures mono float32 audio from the default input device
type PortAudioSource struct {
	stream     *portaudio.Stream
	ring       *Ring
	sampleRate int
	blockSize  int

	mu     sync.Mutex
	closed bool
}

// NewPortAudioSource opens and starts the default input device. Any failure
// here is an acquisition error and the loop must not start.
func NewPortAudioSource(sampleRate, blockSize, framesPerBuffer int, filterOpts FilterOptions) (*PortAudioSource, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "capture",
		"function":  "NewPortAudioSource",
	})

	filter, err := newPreFilter(sampleRate, filterOpts)
	if err != nil {
		return nil, err
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	s := &PortAudioSource{
		ring:       NewRing(blockSize, filter),
		sampleRate: sampleRate,
		blockSize:  blockSize,
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), framesPerBuffer, s.ring.Write)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open default input stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start input stream: %w", err)
	}
	s.stream = stream

	logger.Info("Audio capture started", logging.Fields{
		"sample_rate":       sampleRate,
		"block_size":        blockSize,
		"frames_per_buffer": framesPerBuffer,
		"dc_cutoff":         filterOpts.DCCutoff,
		"lowpass_cutoff":    filterOpts.LowpassCutoff,
	})

	return s, nil
}

// ReadBlock snapshots the most recent block without blocking
func (s *PortAudioSource) ReadBlock(ctx context.Context) (common.AudioBlock, error) {
	if err := ctx.Err(); err != nil {
		return common.AudioBlock{}, err
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return common.AudioBlock{}, ErrClosed
	}

	samples := make([]float64, s.blockSize)
	s.ring.Snapshot(samples)
	return common.AudioBlock{Samples: samples, SampleRate: s.sampleRate}, nil
}

// Close stops the stream and releases portaudio. Safe to call twice.
func (s *PortAudioSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	if err := s.stream.Stop(); err != nil {
		firstErr = fmt.Errorf("failed to stop input stream: %w", err)
	}
	if err := s.stream.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close input stream: %w", err)
	}
	if err := portaudio.Terminate(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to terminate portaudio: %w", err)
	}
	return firstErr
}
