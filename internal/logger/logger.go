// Package logger builds the zerolog logger shared by the server and the
// pipeline runner.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a timestamped logger writing to w at the named level
// ("debug", "info", "warn", "error"). Unknown names mean info.
func New(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// NewConsole returns a human-readable logger on stderr. Stdout is reserved
// for the protocol stream.
func NewConsole(level string) zerolog.Logger {
	return New(zerolog.ConsoleWriter{Out: os.Stderr}, level)
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
