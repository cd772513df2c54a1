// Package services defines shared utilities consumed by the parser, the codec
// packages, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp the parse correlation ID and the archive
//     entry being processed, for logging.
//   - Structured error markers plus the Wrap helper so callers can classify a
//     failure (invalid archive, missing entry, corrupt payload, unsupported
//     format) with errors.Is.
package services
