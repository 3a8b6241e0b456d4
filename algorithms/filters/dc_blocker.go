package filters

import (
	"fmt"
	"math"
)

// DCBlocker is a one-pole, one-zero high-pass that removes the DC offset
// some microphones and interfaces add to the signal.
//
// References:
//   - Julius O. Smith III, "Introduction to Digital Filters with Audio Applications"
//     https://ccrma.stanford.edu/~jos/filters/DC_Blocker.html
//
// y[n] = x[n] - x[n-1] + R*y[n-1]
type DCBlocker struct {
	sampleRate int
	cutoffFreq float64
	pole       float64 // R, 0 < R < 1

	x1 float64 // x[n-1]
	y1 float64 // y[n-1]
}

// NewDCBlocker creates a DC blocker with the given -3 dB frequency. The pole
// uses the small angle approximation R = 1 - 2*pi*fc/fs, so cutoffs should
// stay well below the lowest note of interest.
func NewDCBlocker(sampleRate int, cutoffFreq float64) (*DCBlocker, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive: %d", sampleRate)
	}
	if cutoffFreq <= 0 || cutoffFreq >= float64(sampleRate)/2 {
		return nil, fmt.Errorf("cutoff frequency must be between 0 and Nyquist frequency (%d Hz): %.2f", sampleRate/2, cutoffFreq)
	}

	pole := 1.0 - 2.0*math.Pi*cutoffFreq/float64(sampleRate)
	switch {
	case pole >= 1.0:
		pole = 0.999
	case pole <= 0.0:
		pole = 0.001
	}

	return &DCBlocker{
		sampleRate: sampleRate,
		cutoffFreq: cutoffFreq,
		pole:       pole,
	}, nil
}

// Process filters a single sample
func (dc *DCBlocker) Process(input float64) float64 {
	output := input - dc.x1 + dc.pole*dc.y1
	dc.x1 = input
	dc.y1 = output
	return output
}

// ProcessInPlace filters buf, carrying state over from previous calls
func (dc *DCBlocker) ProcessInPlace(buf []float64) {
	for i, sample := range buf {
		buf[i] = dc.Process(sample)
	}
}

// Reset clears the filter state
func (dc *DCBlocker) Reset() {
	dc.x1, dc.y1 = 0.0, 0.0
}

// Cutoff returns the configured cutoff frequency in Hz
func (dc *DCBlocker) Cutoff() float64 {
	return dc.cutoffFreq
}

// FrequencyResponse computes the linear magnitude response at frequency.
//
// H(e^jw) = (1 - e^-jw) / (1 - R*e^-jw)
func (dc *DCBlocker) FrequencyResponse(frequency float64) float64 {
	w := 2.0 * math.Pi * frequency / float64(dc.sampleRate)
	cosW, sinW := math.Cos(w), math.Sin(w)

	numReal, numImag := 1.0-cosW, sinW
	denReal, denImag := 1.0-dc.pole*cosW, dc.pole*sinW

	return math.Sqrt((numReal*numReal + numImag*numImag) / (denReal*denReal + denImag*denImag))
}
