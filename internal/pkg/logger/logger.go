package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Init installs a JSON slog logger as the process default.
func Init(level string) *slog.Logger {
	return InitWriter(os.Stdout, level)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}
	logger := slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps debug/info/warn/error onto slog levels; anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type bindingsKey struct{}

// With returns a context whose logger carries the extra attributes.
func With(ctx context.Context, args ...any) context.Context {
	bound, _ := ctx.Value(bindingsKey{}).([]any)
	merged := make([]any, 0, len(bound)+len(args))
	merged = append(merged, bound...)
	merged = append(merged, args...)
	return context.WithValue(ctx, bindingsKey{}, merged)
}

func From(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if bound, ok := ctx.Value(bindingsKey{}).([]any); ok && len(bound) > 0 {
		logger = logger.With(bound...)
	}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		logger = logger.With(
			slog.String("trace_id", span.SpanContext().TraceID().String()),
			slog.String("span_id", span.SpanContext().SpanID().String()),
		)
	}

	return logger
}

// Event builds the structured "event" group attached to audit-style log lines.
func Event(eventType string, attrs ...any) slog.Attr {
	return slog.Group("event", append([]any{slog.String("type", eventType)}, attrs...)...)
}
