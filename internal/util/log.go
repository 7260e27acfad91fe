// Package util provides shared logging setup for the stockviz binaries.
package util

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ParseLevel maps "debug", "info", "warn" and "error" to a slog level.
// Unrecognised strings yield info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured logger writing to w. format is "json" or
// "text" (the default).
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// LogOutput returns stdout teed into the log file named by pattern (see
// OpenLogFile). An empty pattern returns stdout alone.
func LogOutput(pattern string) (io.Writer, func() error, error) {
	if pattern == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := OpenLogFile(pattern)
	if err != nil {
		return nil, nil, err
	}
	return io.MultiWriter(os.Stdout, f), f.Close, nil
}

// OpenLogFile opens pattern for appending. A %s verb in pattern is replaced
// by today's date, e.g. "/tmp/stockviz-server-%s.log".
func OpenLogFile(pattern string) (*os.File, error) {
	name := pattern
	if strings.Contains(pattern, "%s") {
		name = fmt.Sprintf(pattern, time.Now().Format("2006-01-02"))
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

// SetDefault configures the provided logger as the default slog logger.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
