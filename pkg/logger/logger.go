// Package logger builds the application slog.Logger.
package logger

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// New returns a JSON logger, or a coloured tint logger when pretty is set.
// level is consulted on every record, so a *slog.LevelVar can be changed at
// runtime.
func New(w io.Writer, level slog.Leveler, pretty bool) *slog.Logger {
	var handler slog.Handler
	if pretty {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(handler)
}
