package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewHandler returns the handler marquee logs through. Structured output
// (JSON) is used when results share a terminal with logs, so each stream
// stays machine-readable; otherwise logs are plain text.
func NewHandler(w io.Writer, structured bool, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if structured {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Init creates and sets the package-level default slog logger on stderr.
// When outputIsStdout is true, uses JSONHandler (avoids mixing with NDJSON output).
// Otherwise uses TextHandler for human readability.
func Init(outputIsStdout bool, level slog.Level) *slog.Logger {
	logger := slog.New(NewHandler(os.Stderr, outputIsStdout, level)).With("app", "marquee")
	slog.SetDefault(logger)
	return logger
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
