package capture

import (
	"context"
	"fmt"
	"os"

	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/RyanBlaney/sonido-tuner/transcode"
	"github.com/gopxl/beep/wav"
)

// FileOptions controls how decoded files are cut into blocks
type FileOptions struct {
	BlockSize int
	Hop       int
	Filters   FilterOptions
}

// LoadWAV decodes a WAV file, down-mixes it to mono and serves it as blocks
func LoadWAV(path string, opts FileOptions) (*PCMSource, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "capture",
		"function":  "LoadWAV",
		"path":      path,
	})

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wav file: %w", err)
	}
	defer f.Close()

	streamer, format, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode wav file %s: %w", path, err)
	}
	defer streamer.Close()

	var mono []float64
	frames := make([][2]float64, 4096)
	for {
		n, ok := streamer.Stream(frames)
		for i := range n {
			mono = append(mono, (frames[i][0]+frames[i][1])/2)
		}
		if !ok {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("failed to read wav samples: %w", err)
	}

	sampleRate := int(format.SampleRate)
	logger.Debug("WAV file decoded", logging.Fields{
		"sample_rate": sampleRate,
		"channels":    format.NumChannels,
		"samples":     len(mono),
	})

	return newFilteredPCMSource(mono, sampleRate, opts)
}

// LoadFile decodes any ffmpeg-readable file to mono PCM at sampleRate
func LoadFile(ctx context.Context, path string, sampleRate int, decoderConfig *transcode.DecoderConfig, opts FileOptions) (*PCMSource, error) {
	if decoderConfig == nil {
		decoderConfig = transcode.DefaultDecoderConfig()
	}
	decoderConfig.TargetSampleRate = sampleRate
	decoderConfig.TargetChannels = 1

	decoder := transcode.NewDecoder(decoderConfig)
	if err := decoder.ValidateConfig(); err != nil {
		return nil, err
	}

	data, err := decoder.DecodeFile(ctx, path)
	if err != nil {
		return nil, err
	}

	return newFilteredPCMSource(data.PCM, data.SampleRate, opts)
}

func newFilteredPCMSource(samples []float64, sampleRate int, opts FileOptions) (*PCMSource, error) {
	filter, err := newPreFilter(sampleRate, opts.Filters)
	if err != nil {
		return nil, err
	}
	filter.ProcessInPlace(samples)

	hop := opts.Hop
	if hop <= 0 {
		hop = opts.BlockSize
	}
	return NewPCMSource(samples, sampleRate, opts.BlockSize, hop)
}
