package app

import (
	"io"
	"log/slog"
)

// newLogger builds an isolated logger writing to outW. The global
// logger is left untouched so embedding callers keep their own.
func newLogger(level slog.Level, format string, outW io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
