package common

// AudioBlock is one fixed-length analysis frame of mono samples in [-1, 1].
// Blocks are treated as immutable once produced; consumers copy before writing.
type AudioBlock struct {
	Samples    []float64 `json:"-"`
	SampleRate int       `json:"sample_rate"`
}

// Len returns the number of samples in the block
func (b AudioBlock) Len() int {
	return len(b.Samples)
}

// Duration returns the block length in seconds
func (b AudioBlock) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// SpectrumBlock holds non-negative magnitudes, one per frequency bin.
// Bin i is centered on i * SampleRate / FFTSize.
type SpectrumBlock struct {
	Magnitudes []float64 `json:"magnitudes"`
	SampleRate int       `json:"sample_rate"`
	FFTSize    int       `json:"fft_size"`
}

// BinFrequency returns the center frequency of bin i in Hz
func (s SpectrumBlock) BinFrequency(i int) float64 {
	if s.FFTSize <= 0 {
		return 0
	}
	return float64(i) * float64(s.SampleRate) / float64(s.FFTSize)
}

// BinWidth returns the frequency resolution of the spectrum in Hz
func (s SpectrumBlock) BinWidth() float64 {
	return s.BinFrequency(1)
}
