package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	jobIDKey  contextKey = "ingest.job.id"
	sourceKey contextKey = "ingest.source"
)

// WithJobID tags the context with the ingest job being processed.
func WithJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, jobIDKey, jobID)
}

// WithSource tags the context with the manual being processed.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey, source)
}

// FromContext returns the logger enriched with whatever ingest
// context has been attached.
func FromContext(ctx context.Context, base *slog.Logger) *slog.Logger {
	logger := base
	if jobID, ok := ctx.Value(jobIDKey).(string); ok {
		logger = logger.With(slog.String("job_id", jobID))
	}
	if source, ok := ctx.Value(sourceKey).(string); ok {
		logger = logger.With(slog.String("source", source))
	}
	return logger
}
