package capture

import (
	"testing"

	"github.com/RyanBlaney/sonido-tuner/algorithms/filters"
)

func TestRingSnapshotKeepsLatest(t *testing.T) {
	ring := NewRing(4, nil)
	ring.Write([]float32{1, 2, 3})
	ring.Write([]float32{4, 5})

	dst := make([]float64, 4)
	if n := ring.Snapshot(dst); n != 4 {
		t.Fatalf("Snapshot copied %d, want 4", n)
	}
	want := []float64{2, 3, 4, 5}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %f, want %f", i, dst[i], want[i])
		}
	}
}

func TestRingAppliesLowpass(t *testing.T) {
	lp, err := filters.NewLowpass(44100, 1000)
	if err != nil {
		t.Fatalf("NewLowpass: %v", err)
	}
	ring := NewRing(8, filters.Chain{lp})

	// alternating samples sit at nyquist, far above the cutoff
	in := make([]float32, 512)
	for i := range in {
		if i%2 == 0 {
			in[i] = 1
		} else {
			in[i] = -1
		}
	}
	ring.Write(in)

	dst := make([]float64, 8)
	ring.Snapshot(dst)
	for i, v := range dst {
		if v > 0.05 || v < -0.05 {
			t.Errorf("dst[%d] = %f, expected nyquist tone to be removed", i, v)
		}
	}
}
