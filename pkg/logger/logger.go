package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "clinic-ledger"

// New builds the process logger on stdout.
func New(level string, pretty bool) zerolog.Logger {
	return NewWithWriter(level, pretty, os.Stdout)
}

// NewWithWriter builds the logger on w. Pretty switches to console output;
// at debug and below every line also carries its caller.
func NewWithWriter(level string, pretty bool, w io.Writer) zerolog.Logger {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	lvl := ParseLevel(level)

	ctx := zerolog.New(w).Level(lvl).With().Timestamp().Str("service", serviceName)
	if lvl <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// ParseLevel accepts any zerolog level name in any case. Unknown or empty names mean info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Component returns a child logger tagged with the subsystem name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
