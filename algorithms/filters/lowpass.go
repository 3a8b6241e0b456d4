package filters

import (
	"fmt"
	"math"
)

// ButterworthQ is the Q of a second order Butterworth response
const ButterworthQ = 1.0 / math.Sqrt2

// Lowpass implements a second order low-pass filter using biquad topology.
//
// Coefficients follow Robert Bristow-Johnson's
// "Cookbook formulae for audio EQ biquad filter coefficients"
// Reference: https://webaudio.github.io/Audio-EQ-Cookbook/audio-eq-cookbook.html
//
// The tuner runs the input through a 1 kHz low-pass before analysis so that
// upper harmonics and hiss do not dominate the autocorrelation.
type Lowpass struct {
	sampleRate int
	cutoffFreq float64 // Cutoff frequency in Hz
	qFactor    float64

	// Normalized biquad coefficients (a0 == 1)
	b0, b1, b2 float64
	a1, a2     float64

	// Direct form II state
	w1, w2 float64
}

// NewLowpass creates a Butterworth low-pass filter.
//
// Parameters:
//   - sampleRate: Sample rate in Hz
//   - cutoffFreq: -3 dB frequency in Hz
func NewLowpass(sampleRate int, cutoffFreq float64) (*Lowpass, error) {
	return NewLowpassWithQ(sampleRate, cutoffFreq, ButterworthQ)
}

// NewLowpassWithQ creates a low-pass filter with explicit Q factor.
func NewLowpassWithQ(sampleRate int, cutoffFreq, qFactor float64) (*Lowpass, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive: %d", sampleRate)
	}
	if cutoffFreq <= 0 || cutoffFreq >= float64(sampleRate)/2 {
		return nil, fmt.Errorf("cutoff frequency must be between 0 and Nyquist frequency (%d Hz): %.2f", sampleRate/2, cutoffFreq)
	}
	if qFactor <= 0 {
		return nil, fmt.Errorf("q factor must be positive: %.3f", qFactor)
	}

	lp := &Lowpass{
		sampleRate: sampleRate,
		cutoffFreq: cutoffFreq,
		qFactor:    qFactor,
	}
	lp.computeCoefficients()
	return lp, nil
}

func (lp *Lowpass) computeCoefficients() {
	// w0 = 2*pi*f0/Fs
	w0 := 2.0 * math.Pi * lp.cutoffFreq / float64(lp.sampleRate)
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2.0 * lp.qFactor)

	a0 := 1.0 + alpha
	lp.b0 = (1.0 - cosW0) / 2.0 / a0
	lp.b1 = (1.0 - cosW0) / a0
	lp.b2 = (1.0 - cosW0) / 2.0 / a0
	lp.a1 = -2.0 * cosW0 / a0
	lp.a2 = (1.0 - alpha) / a0
}

// Process filters a single sample.
//
// w[n] = x[n] - a1*w[n-1] - a2*w[n-2]
// y[n] = b0*w[n] + b1*w[n-1] + b2*w[n-2]
func (lp *Lowpass) Process(input float64) float64 {
	w := input - lp.a1*lp.w1 - lp.a2*lp.w2
	output := lp.b0*w + lp.b1*lp.w1 + lp.b2*lp.w2

	lp.w2 = lp.w1
	lp.w1 = w

	return output
}

// ProcessInPlace filters buf, carrying state over from previous calls
func (lp *Lowpass) ProcessInPlace(buf []float64) {
	for i, sample := range buf {
		buf[i] = lp.Process(sample)
	}
}

// Reset clears the delay line.
// Call this when processing discontinuous audio segments.
func (lp *Lowpass) Reset() {
	lp.w1, lp.w2 = 0.0, 0.0
}

// Cutoff returns the configured cutoff frequency in Hz
func (lp *Lowpass) Cutoff() float64 {
	return lp.cutoffFreq
}

// FrequencyResponse computes the linear magnitude response at frequency.
//
// H(e^jw) = (b0 + b1*e^-jw + b2*e^-j2w) / (1 + a1*e^-jw + a2*e^-j2w)
func (lp *Lowpass) FrequencyResponse(frequency float64) float64 {
	w := 2.0 * math.Pi * frequency / float64(lp.sampleRate)

	cosW, sinW := math.Cos(w), math.Sin(w)
	cos2W, sin2W := math.Cos(2*w), math.Sin(2*w)

	numReal := lp.b0 + lp.b1*cosW + lp.b2*cos2W
	numImag := -lp.b1*sinW - lp.b2*sin2W
	denReal := 1.0 + lp.a1*cosW + lp.a2*cos2W
	denImag := -lp.a1*sinW - lp.a2*sin2W

	return math.Sqrt((numReal*numReal + numImag*numImag) / (denReal*denReal + denImag*denImag))
}
