package tonal

import (
	"fmt"
	"math"
	"strings"
)

// PitchDetectionMethod selects one of the supported estimation strategies
type PitchDetectionMethod int

const (
	// TimeDomainAutocorrelation estimates the period from the waveform
	TimeDomainAutocorrelation PitchDetectionMethod = iota
	// FrequencyDomainPeak picks the strongest magnitude spectrum bin
	FrequencyDomainPeak
)

func (m PitchDetectionMethod) String() string {
	switch m {
	case TimeDomainAutocorrelation:
		return "time_domain"
	case FrequencyDomainPeak:
		return "frequency_domain"
	default:
		return "unknown"
	}
}

// ParseMethod maps a configuration name to a detection method
func ParseMethod(name string) (PitchDetectionMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "time_domain", "time", "autocorrelation", "acf":
		return TimeDomainAutocorrelation, nil
	case "frequency_domain", "frequency", "spectral", "fft":
		return FrequencyDomainPeak, nil
	default:
		return 0, fmt.Errorf("unsupported pitch detection method: %q", name)
	}
}

// PitchEstimate is either a voiced frequency in Hz or NoPitch.
// There is no confidence attached; callers accept or reject.
type PitchEstimate struct {
	Frequency float64 `json:"frequency"` // Hz, zero when unvoiced
	Voiced    bool    `json:"voiced"`
}

// NoPitch is returned when the block is too quiet or has no usable period
var NoPitch = PitchEstimate{}

// Pitch wraps a frequency as a voiced estimate. Non-finite or non-positive
// values collapse to NoPitch.
func Pitch(frequency float64) PitchEstimate {
	if frequency <= 0 || math.IsNaN(frequency) || math.IsInf(frequency, 0) {
		return NoPitch
	}
	return PitchEstimate{Frequency: frequency, Voiced: true}
}

func (p PitchEstimate) String() string {
	if !p.Voiced {
		return "unvoiced"
	}
	return fmt.Sprintf("%.2f Hz", p.Frequency)
}

// Band is an open frequency interval (Min, Max) used to accept estimates
type Band struct {
	Min float64 `json:"min"` // exclusive lower bound in Hz
	Max float64 `json:"max"` // exclusive upper bound in Hz
}

// Accepts reports whether p is voiced and strictly inside the band
func (b Band) Accepts(p PitchEstimate) bool {
	return p.Voiced && p.Frequency > b.Min && p.Frequency < b.Max
}

func (b Band) String() string {
	return fmt.Sprintf("(%.1f, %.1f) Hz", b.Min, b.Max)
}

// VocalBand is the acceptance range used with autocorrelation: anything
// at or above 2 kHz is treated as a harmonic or artifact.
var VocalBand = Band{Min: 0, Max: 2000}

// BassBand is the acceptance range used with spectral peak picking,
// tuned for low fundamentals such as bass strings.
var BassBand = Band{Min: 20, Max: 300}

// DefaultBand returns the acceptance band paired with a method
func DefaultBand(method PitchDetectionMethod) Band {
	if method == FrequencyDomainPeak {
		return BassBand
	}
	return VocalBand
}
