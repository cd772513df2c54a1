// Package config loads and validates flareader configuration.
//
// It provides defaults for every option, expands user paths, reads TOML
// files via go-toml, and exposes helpers such as Load, CreateSample, and
// ExpandPath used by the CLI. Configuration is grouped into logging, parser,
// and cache sections.
//
// Run Validate after mutating a Config so downstream code can rely on the
// invariants it enforces (tolerance ranges, worker counts, cache sizing).
package config
