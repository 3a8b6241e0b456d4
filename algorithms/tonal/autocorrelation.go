package tonal

import (
	"math"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

// AutocorrelationParams configures the time-domain detector
type AutocorrelationParams struct {
	// Blocks with RMS strictly below this are silence
	SilenceThreshold float64 `json:"silence_threshold"`
	// Amplitude that marks onset/offset when trimming block edges
	EdgeThreshold float64 `json:"edge_threshold"`
}

// DefaultAutocorrelationParams returns the thresholds used for live input
func DefaultAutocorrelationParams() AutocorrelationParams {
	return AutocorrelationParams{
		SilenceThreshold: 0.01,
		EdgeThreshold:    0.2,
	}
}

// AutocorrelationDetector estimates the fundamental from a waveform block
// using the unnormalized autocorrelation of its trimmed body.
//
// Reference:
// - Rabiner, L.R. (1977). "On the use of autocorrelation analysis for pitch detection"
//
// Cost is O(N^2) in the block length, fine for one analysis block per frame.
type AutocorrelationDetector struct {
	params AutocorrelationParams
}

// NewAutocorrelationDetector creates a detector with the given parameters
func NewAutocorrelationDetector(params AutocorrelationParams) *AutocorrelationDetector {
	return &AutocorrelationDetector{params: params}
}

// Params returns the detector configuration
func (d *AutocorrelationDetector) Params() AutocorrelationParams {
	return d.params
}

// Estimate returns the fundamental frequency of block or NoPitch.
// The result is not range checked.
func (d *AutocorrelationDetector) Estimate(block common.AudioBlock) PitchEstimate {
	if block.SampleRate <= 0 || d.belowSilenceGate(block.Samples) {
		return NoPitch
	}

	buf := d.trimEdges(block.Samples)
	if len(buf) < 2 {
		return NoPitch
	}

	c := common.AutoCorrelation(buf)

	period, ok := firstPeriodicPeak(c)
	if !ok {
		return NoPitch
	}

	return Pitch(float64(block.SampleRate) / float64(period))
}

func (d *AutocorrelationDetector) belowSilenceGate(samples []float64) bool {
	return common.RMS(samples) < d.params.SilenceThreshold
}

// trimEdges drops leading and trailing quiet samples. Only the first half of
// the block is inspected from each end. The returned slice aliases samples
// and must not be written to.
func (d *AutocorrelationDetector) trimEdges(samples []float64) []float64 {
	n := len(samples)
	threshold := d.params.EdgeThreshold

	r1, r2 := 0, n-1
	for i := 0; i < n/2; i++ {
		if math.Abs(samples[i]) > threshold {
			r1 = i
			break
		}
	}
	for i := 1; i < n/2; i++ {
		if math.Abs(samples[n-i]) > threshold {
			r2 = n - i
			break
		}
	}

	if r2 <= r1 {
		return nil
	}
	return samples[r1:r2]
}

// firstPeriodicPeak skips the zero-lag lobe while the correlation is still
// falling, then returns the lag of the largest remaining value. The skip is
// bounded at len(c)-2; reaching it means no periodic structure.
func firstPeriodicPeak(c []float64) (int, bool) {
	last := len(c) - 2
	d := 0
	for d <= last && c[d] > c[d+1] {
		d++
	}
	if d > last {
		return 0, false
	}

	period := d + common.ArgMax(c[d:])
	if period <= 0 {
		return 0, false
	}
	return period, true
}
