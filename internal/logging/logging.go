// Package logging configures the zerolog diagnostics logger used across kbdocs.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger on w. Level "" or an unknown level falls back to warn;
// verbose forces debug.
func New(w io.Writer, level string, verbose bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	lvl := zerolog.WarnLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil && parsed != zerolog.NoLevel {
		lvl = parsed
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(console).Level(lvl).With().Timestamp().Logger()
}
