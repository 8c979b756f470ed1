package logger

import (
	"io"
	"log/slog"
	"os"
)

// InitJSONLogger configures and sets the default slog logger to use JSON format.
// Debug enables debug-level records.
func InitJSONLogger(debug bool) {
	slog.SetDefault(New(os.Stdout, debug))
}

// New returns a JSON logger writing to w.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}
