package config

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the process logger from GO_ENV and LOG_LEVEL. Production
// emits JSON; everything else gets the text handler.
func NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(os.Getenv("LOG_LEVEL"))}
	if os.Getenv("GO_ENV") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// parseLogLevel maps a LOG_LEVEL value to a slog level, case-insensitively.
// Unknown or empty values fall back to info.
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
