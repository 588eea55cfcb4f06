package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel reads the level from LOG_LEVEL.
func LogLevel() slog.Level {
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a logger writing to w at level, as JSON unless format
// is "text".
func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

// SetupLogger builds the logger from LOG_LEVEL and LOG_FORMAT and installs
// it as the slog default.
func SetupLogger(w io.Writer) *slog.Logger {
	logger := NewLogger(w, LogLevel(), os.Getenv("LOG_FORMAT"))
	slog.SetDefault(logger)

	return logger
}

type ctxKey string

// CtxLogger is the context key for the request logger.
const CtxLogger ctxKey = "logger"

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, CtxLogger, logger)
}

// FromContext returns the logger stored in ctx, or the slog default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(CtxLogger).(*slog.Logger); ok {
		return logger
	}

	return slog.Default()
}

// WithModel tags logger with the model name.
func WithModel(logger *slog.Logger, model string) *slog.Logger {
	return logger.With("model", model)
}

// WithRequestID tags logger with an HTTP request id.
func WithRequestID(logger *slog.Logger, id string) *slog.Logger {
	return logger.With("request_id", id)
}
