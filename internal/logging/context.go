package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldManifest is the standardized structured logging key for manifest identifiers.
	FieldManifest = "manifest"
	// FieldRunID is the standardized structured logging key for run identifiers.
	FieldRunID = "run_id"
	// FieldRow is the standardized structured logging key for 1-based manifest row numbers.
	FieldRow = "row"
	// FieldEventType classifies warnings and errors for log scraping.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the operator's next step after a failure.
	FieldErrorHint = "error_hint"
	// FieldImpact states the user-facing consequence of a warning.
	FieldImpact = "impact"
)

type contextKey int

const (
	runIDKey contextKey = iota
	manifestKey
)

// WithRunID stores a run identifier on the context for downstream loggers.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithManifest stores the manifest currently being processed on the context.
func WithManifest(ctx context.Context, manifestID string) context.Context {
	return context.WithValue(ctx, manifestKey, manifestID)
}

// ContextFields extracts standardized slog attributes from the context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := ctx.Value(runIDKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if id, ok := ctx.Value(manifestKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldManifest, id))
	}
	return fields
}

// WithContext returns a logger augmented with fields derived from ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
	}
	return logger.With(args...)
}
