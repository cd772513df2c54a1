// Package mediacache persists decoded bitmaps and sounds between parses.
//
// Entries are keyed by a content hash of the raw archive payload, stored
// zstd-compressed in a SQLite database under the configured cache directory,
// and fronted by a bounded in-memory LRU. Initialization takes a file lock so
// concurrent processes do not race on schema creation.
package mediacache
