package tonal

import (
	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

// SpectralPeakDetector takes the strongest bin of a magnitude spectrum as the
// fundamental. Resolution is limited to one bin (SampleRate / FFTSize), so it
// suits narrow low-frequency bands such as bass tuning. There is no silence
// gate; the caller decides which estimates to accept.
type SpectralPeakDetector struct{}

// NewSpectralPeakDetector creates a peak-bin detector
func NewSpectralPeakDetector() *SpectralPeakDetector {
	return &SpectralPeakDetector{}
}

// Estimate returns the center frequency of the loudest bin, lowest bin on
// ties. Empty or malformed blocks yield NoPitch.
func (d *SpectralPeakDetector) Estimate(block common.SpectrumBlock) PitchEstimate {
	if len(block.Magnitudes) == 0 || block.FFTSize <= 0 || block.SampleRate <= 0 {
		return NoPitch
	}

	peak := common.ArgMax(block.Magnitudes)
	frequency := block.BinFrequency(peak)

	// bin 0 maps to 0 Hz, still a concrete (if useless) answer
	return PitchEstimate{Frequency: frequency, Voiced: true}
}
