// Package main hosts the flareader CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration, builds a parser (with the
// optional decoded-media cache), and renders parsed documents as summary
// tables or JSON. Maintenance commands repair damaged archives, export
// decoded bitmaps and sounds, and manage the media cache.
//
// Keep this package lean: behaviour belongs in the internal packages and is
// surfaced here through dedicated commands or flags.
package main
