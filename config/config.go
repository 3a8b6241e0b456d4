package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/RyanBlaney/sonido-tuner/algorithms/tonal"
	"github.com/RyanBlaney/sonido-tuner/logging"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Capture source kinds
const (
	SourceMic  = "mic"
	SourceWAV  = "wav"
	SourceFile = "file"
	SourceTone = "tone"
)

// Display modes
const (
	DisplayTerminal = "terminal"
	DisplayLine     = "line"
)

// Config is the full tuner configuration
type Config struct {
	Method      string  `json:"method"` // "time_domain" or "frequency_domain"
	SampleRate  int     `json:"sample_rate"`
	BlockSize   int     `json:"block_size"`
	FFTSize     int     `json:"fft_size"`
	RefreshRate float64 `json:"refresh_rate"` // detection cycles per second
	Placeholder string  `json:"placeholder"`  // shown when there is no accepted pitch
	LogLevel    string  `json:"log_level"`

	Autocorrelation AutocorrelationConfig `json:"autocorrelation"`
	Spectral        SpectralConfig        `json:"spectral"`
	Capture         CaptureConfig         `json:"capture"`
	Display         DisplayConfig         `json:"display"`
}

// AutocorrelationConfig configures the time-domain path
type AutocorrelationConfig struct {
	SilenceThreshold float64 `json:"silence_threshold"` // RMS gate
	EdgeThreshold    float64 `json:"edge_threshold"`    // onset/offset amplitude
	MinFrequency     float64 `json:"min_frequency"`     // exclusive, Hz
	MaxFrequency     float64 `json:"max_frequency"`     // exclusive, Hz
}

// SpectralConfig configures the frequency-domain path
type SpectralConfig struct {
	MinFrequency float64 `json:"min_frequency"` // exclusive, Hz
	MaxFrequency float64 `json:"max_frequency"` // exclusive, Hz
}

// CaptureConfig selects and tunes the audio source
type CaptureConfig struct {
	Source          string  `json:"source"` // "mic", "wav", "file", "tone"
	Path            string  `json:"path,omitempty"`
	ToneFrequency   float64 `json:"tone_frequency,omitempty"`
	ToneAmplitude   float64 `json:"tone_amplitude,omitempty"`
	DCCutoff        float64 `json:"dc_cutoff"`      // Hz, 0 disables
	LowpassCutoff   float64 `json:"lowpass_cutoff"` // Hz, 0 disables
	FramesPerBuffer int     `json:"frames_per_buffer"`
	Hop             int     `json:"hop,omitempty"` // samples advanced per block for file sources, 0 = real time
	FFmpegPath      string  `json:"ffmpeg_path"`
	FFprobePath     string  `json:"ffprobe_path"`
}

// DisplayConfig selects the display sink
type DisplayConfig struct {
	Mode string `json:"mode"` // "terminal" or "line"
}

// DefaultConfig returns the time-domain tuner used for voice and general
// instruments
func DefaultConfig() *Config {
	return &Config{
		Method:      tonal.TimeDomainAutocorrelation.String(),
		SampleRate:  44100,
		BlockSize:   2048,
		FFTSize:     2048,
		RefreshRate: 60,
		Placeholder: "--",
		LogLevel:    "info",
		Autocorrelation: AutocorrelationConfig{
			SilenceThreshold: 0.01,
			EdgeThreshold:    0.2,
			MinFrequency:     tonal.VocalBand.Min,
			MaxFrequency:     tonal.VocalBand.Max,
		},
		Spectral: SpectralConfig{
			MinFrequency: tonal.BassBand.Min,
			MaxFrequency: tonal.BassBand.Max,
		},
		Capture: CaptureConfig{
			Source:          SourceMic,
			ToneFrequency:   440,
			ToneAmplitude:   0.5,
			LowpassCutoff:   1000,
			FramesPerBuffer: 512,
			FFmpegPath:      "ffmpeg",
			FFprobePath:     "ffprobe",
		},
		Display: DisplayConfig{
			Mode: DisplayTerminal,
		},
	}
}

// TimeDomainPreset is DefaultConfig under a descriptive name
func TimeDomainPreset() *Config {
	return DefaultConfig()
}

// FrequencyDomainPreset returns the bass tuner: spectral peak picking
// accepted only between 20 and 300 Hz
func FrequencyDomainPreset() *Config {
	config := DefaultConfig()
	config.Method = tonal.FrequencyDomainPeak.String()
	return config
}

// Load reads a JSON file over DefaultConfig and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DetectionMethod parses Method
func (c *Config) DetectionMethod() (tonal.PitchDetectionMethod, error) {
	return tonal.ParseMethod(c.Method)
}

// AcceptanceBand returns the band paired with the configured method
func (c *Config) AcceptanceBand() tonal.Band {
	method, err := c.DetectionMethod()
	if err == nil && method == tonal.FrequencyDomainPeak {
		return tonal.Band{Min: c.Spectral.MinFrequency, Max: c.Spectral.MaxFrequency}
	}
	return tonal.Band{Min: c.Autocorrelation.MinFrequency, Max: c.Autocorrelation.MaxFrequency}
}

// AutocorrelationParams converts the time-domain section for the detector
func (c *Config) AutocorrelationParams() tonal.AutocorrelationParams {
	return tonal.AutocorrelationParams{
		SilenceThreshold: c.Autocorrelation.SilenceThreshold,
		EdgeThreshold:    c.Autocorrelation.EdgeThreshold,
	}
}

// Validate checks every field the tuner depends on
func (c *Config) Validate() error {
	if _, err := c.DetectionMethod(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive: %d", ErrInvalidConfig, c.SampleRate)
	}
	if c.BlockSize < 2 {
		return fmt.Errorf("%w: block size must be at least 2: %d", ErrInvalidConfig, c.BlockSize)
	}
	if c.FFTSize < 2 {
		return fmt.Errorf("%w: fft size must be at least 2: %d", ErrInvalidConfig, c.FFTSize)
	}
	if c.RefreshRate <= 0 {
		return fmt.Errorf("%w: refresh rate must be positive: %.2f", ErrInvalidConfig, c.RefreshRate)
	}

	if c.Autocorrelation.SilenceThreshold < 0 || c.Autocorrelation.EdgeThreshold < 0 {
		return fmt.Errorf("%w: autocorrelation thresholds must not be negative", ErrInvalidConfig)
	}
	band := c.AcceptanceBand()
	if band.Min < 0 || band.Max <= band.Min {
		return fmt.Errorf("%w: acceptance band %v is empty", ErrInvalidConfig, band)
	}

	nyquist := float64(c.SampleRate) / 2
	switch c.Capture.Source {
	case SourceMic:
	case SourceWAV, SourceFile:
		if c.Capture.Path == "" {
			return fmt.Errorf("%w: %s source needs a path", ErrInvalidConfig, c.Capture.Source)
		}
	case SourceTone:
		if c.Capture.ToneFrequency < 0 || c.Capture.ToneFrequency >= nyquist {
			return fmt.Errorf("%w: tone frequency must be in [0, %.0f): %.2f", ErrInvalidConfig, nyquist, c.Capture.ToneFrequency)
		}
		if c.Capture.ToneAmplitude < 0 || c.Capture.ToneAmplitude > 1 {
			return fmt.Errorf("%w: tone amplitude must be in [0, 1]: %.2f", ErrInvalidConfig, c.Capture.ToneAmplitude)
		}
	default:
		return fmt.Errorf("%w: unknown capture source %q", ErrInvalidConfig, c.Capture.Source)
	}

	if c.Capture.DCCutoff < 0 || c.Capture.DCCutoff >= nyquist {
		return fmt.Errorf("%w: dc cutoff must be in [0, %.0f): %.2f", ErrInvalidConfig, nyquist, c.Capture.DCCutoff)
	}
	if c.Capture.LowpassCutoff < 0 || c.Capture.LowpassCutoff >= nyquist {
		return fmt.Errorf("%w: lowpass cutoff must be in [0, %.0f): %.2f", ErrInvalidConfig, nyquist, c.Capture.LowpassCutoff)
	}
	if c.Capture.FramesPerBuffer <= 0 {
		return fmt.Errorf("%w: frames per buffer must be positive: %d", ErrInvalidConfig, c.Capture.FramesPerBuffer)
	}
	if c.Capture.Hop < 0 {
		return fmt.Errorf("%w: hop must not be negative: %d", ErrInvalidConfig, c.Capture.Hop)
	}

	switch c.Display.Mode {
	case DisplayTerminal, DisplayLine:
	default:
		return fmt.Errorf("%w: unknown display mode %q", ErrInvalidConfig, c.Display.Mode)
	}

	return nil
}

// FileHop returns the samples to advance per block for file sources. The
// default keeps playback at real time for the configured refresh rate.
func (c *Config) FileHop() int {
	if c.Capture.Hop > 0 {
		return c.Capture.Hop
	}
	hop := int(float64(c.SampleRate) / c.RefreshRate)
	return max(hop, 1)
}
