package capture

import (
	"context"
	"fmt"

	"github.com/RyanBlaney/sonido-tuner/config"
	"github.com/RyanBlaney/sonido-tuner/transcode"
)

// Open builds the source named by cfg.Capture.Source
func Open(ctx context.Context, cfg *config.Config) (Source, error) {
	filterOpts := FilterOptions{
		DCCutoff:      cfg.Capture.DCCutoff,
		LowpassCutoff: cfg.Capture.LowpassCutoff,
	}
	opts := FileOptions{
		BlockSize: cfg.BlockSize,
		Hop:       cfg.FileHop(),
		Filters:   filterOpts,
	}

	var (
		source Source
		err    error
	)

	switch cfg.Capture.Source {
	case config.SourceMic:
		var s *PortAudioSource
		if s, err = NewPortAudioSource(cfg.SampleRate, cfg.BlockSize, cfg.Capture.FramesPerBuffer, filterOpts); err == nil {
			source = s
		}
	case config.SourceWAV:
		var s *PCMSource
		if s, err = LoadWAV(cfg.Capture.Path, opts); err == nil {
			source = s
		}
	case config.SourceFile:
		decoderConfig := transcode.DefaultDecoderConfig()
		decoderConfig.FFmpegPath = cfg.Capture.FFmpegPath
		decoderConfig.FFprobePath = cfg.Capture.FFprobePath

		var s *PCMSource
		if s, err = LoadFile(ctx, cfg.Capture.Path, cfg.SampleRate, decoderConfig, opts); err == nil {
			source = s
		}
	case config.SourceTone:
		var s *ToneSource
		if s, err = NewToneSource(cfg.SampleRate, cfg.BlockSize, cfg.Capture.ToneFrequency, cfg.Capture.ToneAmplitude, cfg.Capture.LowpassCutoff); err == nil {
			source = s
		}
	default:
		err = fmt.Errorf("unknown capture source %q", cfg.Capture.Source)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open %s capture: %w", cfg.Capture.Source, err)
	}
	return source, nil
}
