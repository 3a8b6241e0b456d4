package detection

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/capture"
	"github.com/RyanBlaney/sonido-tuner/config"
	"github.com/RyanBlaney/sonido-tuner/internal/testutil"
	"github.com/RyanBlaney/sonido-tuner/logging"
)

func init() {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
}

type recordingSink struct {
	mu     sync.Mutex
	values []string
}

func (s *recordingSink) Show(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = append(s.values, value)
}

func (s *recordingSink) Values() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.values...)
}

type failingSource struct {
	err error
}

func (s *failingSource) ReadBlock(context.Context) (common.AudioBlock, error) {
	return common.AudioBlock{}, s.err
}

func (s *failingSource) Close() error { return nil }

func pcmSource(t *testing.T, samples []float64, blockSize int) *capture.PCMSource {
	t.Helper()
	src, err := capture.NewPCMSource(samples, 44100, blockSize, blockSize)
	if err != nil {
		t.Fatalf("NewPCMSource: %v", err)
	}
	return src
}

func concat(parts ...[]float64) []float64 {
	var out []float64
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestLoopTimeDomainEndToEnd(t *testing.T) {
	cfg := config.DefaultConfig()
	samples := concat(
		testutil.DeterministicSine(440, 44100, 0.8, 2048),
		testutil.Zeros(2048),
	)

	sink := &recordingSink{}
	loop, err := New(cfg, pcmSource(t, samples, 2048), sink)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if err := loop.Cycle(ctx); err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	if got := loop.Last(); got != "A4" {
		t.Errorf("after 440 Hz block, Last() = %q, want %q", got, "A4")
	}

	if err := loop.Cycle(ctx); err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if got := loop.Last(); got != cfg.Placeholder {
		t.Errorf("after silent block, Last() = %q, want placeholder %q", got, cfg.Placeholder)
	}

	if err := loop.Cycle(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("third cycle error = %v, want io.EOF", err)
	}

	want := []string{"A4", "--"}
	got := sink.Values()
	if len(got) != len(want) {
		t.Fatalf("sink values = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sink value %d = %q, want %q", i, got[i], want[i])
		}
	}

	stats := loop.Stats()
	if stats.Cycles != 2 || stats.Accepted != 1 {
		t.Errorf("Stats() = %+v, want 2 cycles and 1 accepted", stats)
	}
}

func TestLoopRejectsOutOfBandPitch(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
		freq float64
		want string
	}{
		{"time domain in band", config.TimeDomainPreset(), 220, "A3"},
		{"time domain above band", config.TimeDomainPreset(), 3000, "--"},
		{"frequency domain in band", config.FrequencyDomainPreset(), 110, "A2"},
		{"frequency domain above band", config.FrequencyDomainPreset(), 1000, "--"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			samples := testutil.DeterministicSine(tt.freq, 44100, 0.8, 2048)
			loop, err := New(tt.cfg, pcmSource(t, samples, 2048), sink)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			if err := loop.Cycle(context.Background()); err != nil {
				t.Fatalf("Cycle: %v", err)
			}
			if got := loop.Last(); got != tt.want {
				t.Errorf("%.0f Hz displayed %q, want %q", tt.freq, got, tt.want)
			}
		})
	}
}

func TestLoopFrequencyDomainHasNoSilenceGate(t *testing.T) {
	cfg := config.FrequencyDomainPreset()
	sink := &recordingSink{}

	// a silent spectrum peaks at bin 0, which sits below the band
	loop, err := New(cfg, pcmSource(t, testutil.Zeros(2048), 2048), sink)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := loop.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	if got := loop.Last(); got != cfg.Placeholder {
		t.Errorf("Last() = %q, want placeholder", got)
	}
}

func TestLoopRunStopsAtEndOfInput(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RefreshRate = 1000

	samples := concat(
		testutil.DeterministicSine(440, 44100, 0.8, 2048),
		testutil.DeterministicSine(220, 44100, 0.8, 2048),
		testutil.Zeros(2048),
	)
	sink := &recordingSink{}
	loop, err := New(cfg, pcmSource(t, samples, 2048), sink)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"A4", "A3", "--"}
	got := sink.Values()
	if len(got) != len(want) {
		t.Fatalf("sink values = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sink value %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoopRunStop(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RefreshRate = 500

	source, err := capture.NewToneSource(44100, 2048, 440, 0.5, 0)
	if err != nil {
		t.Fatalf("NewToneSource: %v", err)
	}
	loop, err := New(cfg, source, &recordingSink{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- loop.Run(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for loop.Stats().Cycles < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	loop.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v after Stop, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}

	if loop.Last() != "A4" {
		t.Errorf("Last() = %q, want A4", loop.Last())
	}
}

func TestLoopStopBeforeRun(t *testing.T) {
	loop, err := New(config.DefaultConfig(), pcmSource(t, testutil.Zeros(2048), 2048), &recordingSink{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	loop.Stop()
	if err := loop.Run(context.Background()); err != nil {
		t.Errorf("Run = %v, want nil", err)
	}
	if cycles := loop.Stats().Cycles; cycles != 0 {
		t.Errorf("ran %d cycles after Stop, want 0", cycles)
	}
}

func TestLoopRunContextCancel(t *testing.T) {
	cfg := config.DefaultConfig()
	source, err := capture.NewToneSource(44100, 2048, 440, 0.5, 0)
	if err != nil {
		t.Fatalf("NewToneSource: %v", err)
	}
	loop, err := New(cfg, source, &recordingSink{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := loop.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run = %v, want context.DeadlineExceeded", err)
	}
}

func TestLoopRunReturnsCaptureError(t *testing.T) {
	deviceLost := errors.New("device lost")
	sink := &recordingSink{}

	loop, err := New(config.DefaultConfig(), &failingSource{err: deviceLost}, sink)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := loop.Run(context.Background()); !errors.Is(err, deviceLost) {
		t.Errorf("Run = %v, want wrapped %v", err, deviceLost)
	}
	if len(sink.Values()) != 0 {
		t.Errorf("sink received %v after capture failure", sink.Values())
	}
}

func TestNewValidation(t *testing.T) {
	source := pcmSource(t, testutil.Zeros(16), 16)

	bad := config.DefaultConfig()
	bad.Method = "cepstrum"
	if _, err := New(bad, source, &recordingSink{}); err == nil {
		t.Error("expected error for unknown method")
	}

	bad = config.DefaultConfig()
	bad.RefreshRate = 0
	if _, err := New(bad, source, &recordingSink{}); err == nil {
		t.Error("expected error for zero refresh rate")
	}

	if _, err := New(config.DefaultConfig(), nil, &recordingSink{}); err == nil {
		t.Error("expected error for missing source")
	}
}
