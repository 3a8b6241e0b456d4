package capture

import (
	"context"
	"errors"
	"io"
	"testing"
)

func TestPCMSourceBlocksAndEOF(t *testing.T) {
	ctx := context.Background()
	samples := []float64{1, 2, 3, 4, 5, 6, 7}

	src, err := NewPCMSource(samples, 8000, 4, 3)
	if err != nil {
		t.Fatalf("NewPCMSource: %v", err)
	}

	want := [][]float64{
		{1, 2, 3, 4},
		{4, 5, 6, 7},
		{7, 0, 0, 0},
	}
	for i, w := range want {
		block, err := src.ReadBlock(ctx)
		if err != nil {
			t.Fatalf("block %d: %v", i, err)
		}
		if block.SampleRate != 8000 || len(block.Samples) != 4 {
			t.Fatalf("block %d: unexpected shape %d samples at %d Hz", i, len(block.Samples), block.SampleRate)
		}
		for j := range w {
			if block.Samples[j] != w[j] {
				t.Errorf("block %d sample %d = %f, want %f", i, j, block.Samples[j], w[j])
			}
		}
	}

	if _, err := src.ReadBlock(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestPCMSourceBlocksAreCopies(t *testing.T) {
	samples := []float64{1, 2}
	src, _ := NewPCMSource(samples, 8000, 2, 2)

	block, err := src.ReadBlock(context.Background())
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	block.Samples[0] = 99
	if samples[0] != 1 {
		t.Error("writing to a block changed the source PCM")
	}
}

func TestPCMSourceClosedAndCancelled(t *testing.T) {
	src, _ := NewPCMSource([]float64{1, 2, 3}, 8000, 2, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.ReadBlock(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	src.Close()
	if _, err := src.ReadBlock(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestNewPCMSourceValidation(t *testing.T) {
	if _, err := NewPCMSource(nil, 0, 4, 4); err == nil {
		t.Error("expected error for zero sample rate")
	}
	if _, err := NewPCMSource(nil, 8000, 0, 4); err == nil {
		t.Error("expected error for zero block size")
	}
	if _, err := NewPCMSource(nil, 8000, 4, 0); err == nil {
		t.Error("expected error for zero hop")
	}
}
