package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func newBufferedLogger() (*DefaultLogger, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return NewDefaultLoggerWithWriters(&stdout, &stderr), &stdout, &stderr
}

func TestDefaultLoggerRoutesByLevel(t *testing.T) {
	logger, stdout, stderr := newBufferedLogger()

	logger.Info("cycle complete")
	logger.Warn("stale block")
	logger.Error(errors.New("device gone"), "capture failed")

	if !strings.Contains(stdout.String(), "[INFO] cycle complete") {
		t.Errorf("stdout = %q, expected info line", stdout.String())
	}
	if !strings.Contains(stderr.String(), "[WARN] stale block") {
		t.Errorf("stderr = %q, expected warn line", stderr.String())
	}
	if !strings.Contains(stderr.String(), "[ERROR] capture failed: device gone") {
		t.Errorf("stderr = %q, expected error line", stderr.String())
	}
}

func TestDefaultLoggerLevelFilter(t *testing.T) {
	logger, stdout, _ := newBufferedLogger()

	logger.Debug("hidden")
	if stdout.Len() != 0 {
		t.Errorf("debug written at info level: %q", stdout.String())
	}

	child := logger.WithFields(Fields{"component": "test"})
	logger.SetLevel(DebugLevel)
	child.Debug("visible")
	if !strings.Contains(stdout.String(), "[DEBUG] visible component=test") {
		t.Errorf("stdout = %q, expected child to follow parent level", stdout.String())
	}
}

func TestDefaultLoggerFieldsSorted(t *testing.T) {
	logger, stdout, _ := newBufferedLogger()

	logger.WithFields(Fields{"note": "A4"}).Info("detected", Fields{"freq": 441.0})

	if !strings.Contains(stdout.String(), "detected freq=441 note=A4") {
		t.Errorf("stdout = %q, expected sorted fields", stdout.String())
	}
}

func TestDefaultLoggerFatalExits(t *testing.T) {
	logger, _, stderr := newBufferedLogger()
	code := -1
	logger.exit = func(c int) { code = c }

	logger.Fatal(errors.New("boom"), "cannot start")

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "[FATAL] cannot start: boom") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestWithContextFields(t *testing.T) {
	logger, stdout, _ := newBufferedLogger()

	ctx := ContextWithFields(context.Background(), Fields{"session": 7})
	logger.WithContext(ctx).Info("started")

	if !strings.Contains(stdout.String(), "session=7") {
		t.Errorf("stdout = %q, expected context fields", stdout.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"loud", InfoLevel, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, err=%v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestSetGlobalLoggerNil(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(nil)
	if _, ok := GetGlobalLogger().(*NoOpLogger); !ok {
		t.Errorf("global logger = %T, want *NoOpLogger", GetGlobalLogger())
	}
}
