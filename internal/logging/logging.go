package logging

import (
	"io"
	"log/slog"
	"os"
)

// New builds the process logger and installs it as the slog default so that
// library code logging through slog ends up in the same stream.
func New(level slog.Level, format string) *slog.Logger {
	logger := slog.New(handler(os.Stderr, level, format))
	slog.SetDefault(logger)
	return logger
}

func handler(w io.Writer, level slog.Level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// Discard returns a logger that drops everything. Used by tests and as the
// default for services constructed without a logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
