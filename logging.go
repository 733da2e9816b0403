package airride

import (
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// parseLogLevel mirrors the teacher CLI's level switch (cmd/sand/main.go),
// defaulting to info for anything unrecognized.
func parseLogLevel(s string) slog.Level {
	switch s {
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

// NewSupervisorLogger builds the supervisor's own structured logger. Unlike
// the teacher's CLI (a short-lived process writing to a single truncated
// file), airride runs for the system's entire uptime as process one, so its
// log file is wrapped in lumberjack to cap growth and rotate.
func NewSupervisorLogger(path, level string) *slog.Logger {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(level)}
	if path == "" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		writer := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // MiB
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		handler = slog.NewJSONHandler(writer, opts)
	}
	return slog.New(handler)
}
