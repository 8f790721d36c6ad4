// Package logging sets up the structured logger shared by kbc commands.
//
// Diagnostics go to stderr through log/slog so they never mix with the
// tables and messages a command prints on stdout.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Levels accepted by Parse
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// DefaultLevel keeps the CLI quiet unless asked otherwise
const DefaultLevel = LevelWarn

// Parse maps a level name to its slog level
func Parse(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case LevelDebug:
		return slog.LevelDebug, nil
	case LevelInfo:
		return slog.LevelInfo, nil
	case LevelWarn, "warning", "":
		return slog.LevelWarn, nil
	case LevelError:
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", name)
	}
}

// New returns a text logger writing to w at the named level.
// A nil writer means stderr.
func New(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := Parse(level)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler).With("app", "kbc"), nil
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
