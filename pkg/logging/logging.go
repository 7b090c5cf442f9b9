// Package logging builds the structured loggers used across hv.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Prefix tags every line written by hv.
const Prefix = "hv"

// New returns a logger writing to w at the named level ("debug", "info",
// "warn", "error"). An empty level means "warn". A nil w discards output.
func New(w io.Writer, level string) (*log.Logger, error) {
	if w == nil {
		w = io.Discard
	}
	lvl := log.WarnLevel
	if level != "" {
		var err error
		lvl, err = log.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          Prefix,
		ReportTimestamp: lvl <= log.DebugLevel,
	}), nil
}

// Setup builds a stderr logger and installs it as the package default so
// code logging through log.Debug and friends picks it up.
func Setup(level string) (*log.Logger, error) {
	l, err := New(os.Stderr, level)
	if err != nil {
		return nil, err
	}
	log.SetDefault(l)
	return l, nil
}

// Redirect points l at the file at path, or discards output when path is
// empty, while a full-screen UI owns the terminal. The returned func closes
// the file and restores stderr.
func Redirect(l *log.Logger, path string) (func() error, error) {
	if path == "" {
		l.SetOutput(io.Discard)
		return func() error {
			l.SetOutput(os.Stderr)
			return nil
		}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.SetOutput(f)
	return func() error {
		l.SetOutput(os.Stderr)
		return f.Close()
	}, nil
}
