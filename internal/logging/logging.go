// Package logging builds the slog logger used for diagnostics. Diagnostics
// go to stderr; command output stays on stdout.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = slog.LevelWarn

// ErrUnknownLevel is returned by ParseLevel for unrecognised names.
var ErrUnknownLevel = errors.New("unknown log level")

type Option func(o *options)

type options struct {
	writer io.Writer
	level  slog.Level
}

func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

func WithLevel(lvl slog.Level) Option {
	return func(o *options) {
		o.level = lvl
	}
}

// New returns a tint console logger. Colour is used only when the writer is
// a terminal.
func New(opts ...Option) *slog.Logger {
	o := &options{
		writer: os.Stderr,
		level:  DefaultLevel,
	}
	for _, apply := range opts {
		apply(o)
	}

	return slog.New(tint.NewHandler(o.writer, &tint.Options{
		Level:      o.level,
		TimeFormat: "[15:04:05]",
		NoColor:    !isTerminal(o.writer),
	}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps debug, info, warn and error to slog levels. The empty
// string yields DefaultLevel.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return DefaultLevel, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return DefaultLevel, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
