package logging

import (
	"context"
	"log/slog"

	"flareader/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldParseID is the standardized key for the per-parse correlation identifier.
	FieldParseID = "parse_id"
	// FieldEntry is the standardized key for the archive entry being decoded.
	FieldEntry = "entry"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step to the reader of a warning.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := services.ParseIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldParseID, id))
	}
	if entry, ok := services.EntryFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldEntry, entry))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return slog.New(logger.Handler().WithAttrs(fields))
}
