package spectral

import (
	"fmt"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Analyzer turns audio blocks into magnitude spectra of a fixed FFT size.
// Blocks shorter than the FFT size are zero padded, longer ones truncated.
type Analyzer struct {
	fftSize int
	window  []float64
}

// NewAnalyzer creates an analyzer with a Hann window of fftSize points
func NewAnalyzer(fftSize int) (*Analyzer, error) {
	if fftSize < 2 {
		return nil, fmt.Errorf("fft size must be at least 2: %d", fftSize)
	}
	return &Analyzer{
		fftSize: fftSize,
		window:  window.Hann(fftSize),
	}, nil
}

// FFTSize returns the transform length
func (a *Analyzer) FFTSize() int {
	return a.fftSize
}

// Spectrum computes the magnitude of the first fftSize/2 bins, scaled by
// 1/fftSize. The input block is not modified.
func (a *Analyzer) Spectrum(block common.AudioBlock) common.SpectrumBlock {
	frame := make([]float64, a.fftSize)
	n := copy(frame, block.Samples)
	for i := range n {
		frame[i] *= a.window[i]
	}

	// mjibson/go-dsp handles all sizes, including non-power-of-2
	coeffs := fft.FFTReal(frame)

	bins := a.fftSize / 2
	magnitudes := make([]float64, bins)
	scale := 1.0 / float64(a.fftSize)
	for k := range bins {
		magnitudes[k] = cmplx.Abs(coeffs[k]) * scale
	}

	return common.SpectrumBlock{
		Magnitudes: magnitudes,
		SampleRate: block.SampleRate,
		FFTSize:    a.fftSize,
	}
}
