// Package logging builds the zerolog loggers handed to orbitview components.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// New returns a logger at level writing to w. Terminals get zerolog's
// console writer; anything else gets JSON lines. Unknown levels mean info.
func New(level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	out := w
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// Console returns a human readable logger regardless of where w points.
func Console(level string, w io.Writer) zerolog.Logger {
	l := New(level, io.Discard)
	return l.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: true})
}
