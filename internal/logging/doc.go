// Package logging assembles structured slog loggers and formatting helpers used
// across flareader packages.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so parser code can tag log lines
// with the parse correlation ID and the archive entry being decoded. The
// package also provides a no-op logger for tests and for callers that pass a
// nil logger.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same keys.
package logging
