// Package logger builds the zerolog logger shared by a pressblocks run.
package logger

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New creates a structured logger writing to w.
// format "console" selects human-readable output; anything else emits JSON.
func New(level, format string, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("service", "pressblocks").
		Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
