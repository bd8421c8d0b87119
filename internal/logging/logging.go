package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Options controls where and how the logger writes
type Options struct {
	Output string // "stderr", "stdout", "discard" or a file path
	Level  string // logrus level name, e.g. "info"
	Format string // "text" or "json"
}

// New builds a logger from options. The returned cleanup closes the log file
// if one was opened.
func New(opts Options) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	cleanup, err := Apply(logger, opts)
	if err != nil {
		return nil, cleanup, err
	}
	return logger, cleanup, nil
}

// Apply reconfigures an existing logger in place, so components already
// holding it pick up the new output.
func Apply(logger *logrus.Logger, opts Options) (func(), error) {
	cleanup := func() {}

	level := opts.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return cleanup, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}
	logger.SetLevel(lvl)

	switch opts.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	switch opts.Output {
	case "", "stderr":
		logger.SetOutput(os.Stderr)
	case "stdout":
		logger.SetOutput(os.Stdout)
	case "discard":
		logger.SetOutput(io.Discard)
	default:
		if dir := filepath.Dir(opts.Output); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return cleanup, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(opts.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return cleanup, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.SetOutput(f)
		cleanup = func() { _ = f.Close() }
	}

	return cleanup, nil
}
