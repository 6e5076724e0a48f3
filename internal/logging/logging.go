// Package logging wires the zerolog console/JSON writer used by every
// service binary.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// AutoPretty reports whether stderr is attached to an interactive terminal.
// Service binaries use this to pick a human-readable console writer when
// run by hand and plain JSON lines when run under a container/log
// collector that isn't a TTY.
func AutoPretty() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// Init configures the global zerolog logger. pretty=true renders a
// human-readable console writer (local development); pretty=false emits
// structured JSON lines (production/container deployment).
func Init(service string, level string, pretty bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out zerolog.Logger
	if pretty {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Str("service", service).Logger()
	} else {
		out = zerolog.New(os.Stderr).With().Timestamp().Str("service", service).Logger()
	}

	log.Logger = out
}
