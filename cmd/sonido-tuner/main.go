// Command sonido-tuner shows the note being played into the microphone (or a
// file, or a synthetic tone) and can play reference pitches.
//
// Usage:
//
//	sonido-tuner [flags]
//
// Examples:
//
//	sonido-tuner
//	sonido-tuner -method frequency_domain
//	sonido-tuner -source wav -input take.wav -display line
//	sonido-tuner -source tone -tone 82.41 -display line
//	sonido-tuner -reference E2
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RyanBlaney/sonido-tuner/algorithms/tonal"
	"github.com/RyanBlaney/sonido-tuner/capture"
	"github.com/RyanBlaney/sonido-tuner/config"
	"github.com/RyanBlaney/sonido-tuner/detection"
	"github.com/RyanBlaney/sonido-tuner/display"
	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/RyanBlaney/sonido-tuner/reference"
)

type options struct {
	reference         string
	referenceDuration time.Duration
	referenceVolume   float64
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "sonido-tuner: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags layers command line overrides on top of the defaults or the
// -config file, then validates the result.
func parseFlags(args []string, output io.Writer) (*config.Config, options, error) {
	fs := flag.NewFlagSet("sonido-tuner", flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		configPath = fs.String("config", "", "JSON config file; flags override its values")
		method     = fs.String("method", "", "detection method: time_domain or frequency_domain")
		source     = fs.String("source", "", "capture source: mic, wav, file or tone")
		input      = fs.String("input", "", "input path for the wav and file sources")
		tone       = fs.Float64("tone", -1, "tone source frequency in Hz (0 for silence)")
		lowpass    = fs.Float64("lowpass", -1, "low-pass cutoff in Hz applied before analysis (0 disables)")
		dcCutoff   = fs.Float64("dc-cutoff", -1, "DC blocker cutoff in Hz applied before analysis (0 disables)")
		mode       = fs.String("display", "", "display mode: terminal or line")
		logLevel   = fs.String("log-level", "", "log level: debug, info, warn, error")
		opts       options
	)
	fs.StringVar(&opts.reference, "reference", "", "play the reference pitch of a note (e.g. A4) and exit")
	fs.DurationVar(&opts.referenceDuration, "reference-duration", 2*time.Second, "reference tone length")
	fs.Float64Var(&opts.referenceVolume, "reference-volume", 0.5, "reference tone volume in [0, 1]")

	if err := fs.Parse(args); err != nil {
		return nil, opts, err
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, opts, err
		}
		cfg = loaded
	}

	if *method != "" {
		cfg.Method = *method
	}
	if *source != "" {
		cfg.Capture.Source = *source
	}
	if *input != "" {
		cfg.Capture.Path = *input
	}
	if *tone >= 0 {
		cfg.Capture.ToneFrequency = *tone
	}
	if *lowpass >= 0 {
		cfg.Capture.LowpassCutoff = *lowpass
	}
	if *dcCutoff >= 0 {
		cfg.Capture.DCCutoff = *dcCutoff
	}
	if *mode != "" {
		cfg.Display.Mode = *mode
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, opts, err
	}
	return cfg, opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	setupLogging(cfg, stderr, cfg.Display.Mode == config.DisplayTerminal && opts.reference == "")

	if opts.reference != "" {
		return playReference(ctx, cfg, opts)
	}

	source, err := capture.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer source.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sink display.Sink
	switch cfg.Display.Mode {
	case config.DisplayTerminal:
		terminal, err := display.NewTerminalSink()
		if err != nil {
			return err
		}
		defer terminal.Close()

		go func() {
			select {
			case <-terminal.Done():
				cancel()
			case <-ctx.Done():
			}
		}()
		sink = terminal
	default:
		sink = display.NewLineSink(stdout)
	}

	loop, err := detection.New(cfg, source, sink)
	if err != nil {
		return err
	}

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logging.Info("Tuner stopped", logging.Fields{"cycles": loop.Stats().Cycles})
	return nil
}

// setupLogging installs the global logger. Logs go to stderr so stdout only
// carries note values in line mode; the terminal display owns the screen, so
// it runs silent.
func setupLogging(cfg *config.Config, stderr io.Writer, silent bool) {
	if silent {
		logging.SetGlobalLogger(&logging.NoOpLogger{})
		return
	}

	logger := logging.NewDefaultLoggerWithWriters(stderr, stderr)
	if level, err := logging.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	logging.SetGlobalLogger(logger)
}

func playReference(ctx context.Context, cfg *config.Config, opts options) error {
	note, err := tonal.ParseNote(opts.reference)
	if err != nil {
		return err
	}

	player := reference.NewPlayer(cfg.SampleRate, opts.referenceVolume)
	defer player.Close()

	if err := player.Play(ctx, note, opts.referenceDuration); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
