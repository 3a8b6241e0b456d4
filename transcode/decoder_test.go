package transcode

import (
	"encoding/binary"
	"math"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestBytesToFloat64(t *testing.T) {
	want := []float64{0.5, -0.25, 1}
	data := make([]byte, 0, len(want)*8+3)
	for _, v := range want {
		data = binary.LittleEndian.AppendUint64(data, math.Float64bits(v))
	}
	// trailing partial sample is dropped
	data = append(data, 1, 2, 3)

	got := bytesToFloat64(data)
	if !slices.Equal(got, want) {
		t.Errorf("bytesToFloat64 = %v, want %v", got, want)
	}
	if bytesToFloat64([]byte{1, 2}) != nil {
		t.Error("expected nil for short input")
	}
}

func TestParseFFprobeOutput(t *testing.T) {
	output := []byte(`{"streams":[{"codec_type":"audio","codec_name":"mp3","sample_rate":"48000","channels":2,"duration":"3.5","bit_rate":"128000","codec_long_name":"MP3"}]}`)

	meta, err := parseFFprobeOutput(output)
	if err != nil {
		t.Fatalf("parseFFprobeOutput: %v", err)
	}
	if meta.SampleRate != 48000 || meta.Channels != 2 || meta.Codec != "mp3" || meta.Duration != 3.5 || meta.Bitrate != 128000 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
}

func TestParseFFprobeOutputErrors(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{"not json", `streams`},
		{"no streams", `{"streams":[]}`},
		{"video stream", `{"streams":[{"codec_type":"video","channels":1}]}`},
		{"bad channels", `{"streams":[{"codec_type":"audio","channels":0}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseFFprobeOutput([]byte(tt.output)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBuildFFmpegArgs(t *testing.T) {
	config := DefaultDecoderConfig()
	config.MaxDuration = 2 * time.Second
	d := NewDecoder(config)

	args := strings.Join(d.buildFFmpegArgs(&AudioMetadata{SampleRate: 48000}), " ")
	for _, want := range []string{"-f f64le", "-ac 1", "-ar 44100", "precision=20", "-t 2.00", "-v error"} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}

	same := strings.Join(d.buildFFmpegArgs(&AudioMetadata{SampleRate: 44100}), " ")
	if strings.Contains(same, "aresample") {
		t.Errorf("no resampling expected when rates match: %q", same)
	}
}

func TestValidateConfig(t *testing.T) {
	config := DefaultDecoderConfig()
	config.TargetChannels = 0
	if err := NewDecoder(config).ValidateConfig(); err == nil {
		t.Error("expected error for zero channels")
	}

	config = DefaultDecoderConfig()
	config.FFmpegPath = "/nonexistent/ffmpeg-binary"
	if err := NewDecoder(config).ValidateConfig(); err == nil {
		t.Error("expected error for missing ffmpeg")
	}
}
