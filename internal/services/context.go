package services

import "context"

type contextKey string

const (
	parseIDKey contextKey = "parse_id"
	entryKey   contextKey = "entry"
)

// WithParseID annotates context with the per-parse correlation identifier.
func WithParseID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, parseIDKey, id)
}

// ParseIDFromContext extracts the correlation identifier if present.
func ParseIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(parseIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithEntry annotates context with the archive entry being decoded.
func WithEntry(ctx context.Context, entry string) context.Context {
	if entry == "" {
		return ctx
	}
	return context.WithValue(ctx, entryKey, entry)
}

// EntryFromContext returns the archive entry name if present.
func EntryFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(entryKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
