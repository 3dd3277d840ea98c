// Package logging sets up the structured loggers used by the command line
// tools.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/carbocation/gridiou/raster"
	"github.com/rs/zerolog"
)

// New returns a logger that writes human-readable lines to w at or above the
// named level (debug, info, warn or error).
func New(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), err
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	consoleWriter := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}

	return zerolog.New(consoleWriter).
		Level(lvl).
		With().
		Timestamp().
		Logger(), nil
}

// NewJSON is like New but emits one JSON object per line, for log collectors.
func NewJSON(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), err
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// Warnings logs each observation at warn level. id identifies the comparison
// (e.g., a manifest row) and may be empty.
func Warnings(logger zerolog.Logger, id string, warnings []raster.Warning) {
	for _, w := range warnings {
		event := logger.Warn().
			Str("component", "raster").
			Str("kind", w.Kind())
		if id != "" {
			event = event.Str("id", id)
		}
		event.Msg(w.Warning())
	}
}
