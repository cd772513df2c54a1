// Package parser turns FLA archive bytes into an fla.Document.
//
// Parsing opens the archive (repairing it when needed), reads
// DOMDocument.xml, loads every symbol definition reachable through Include
// references or the LIBRARY/ folder, builds timelines with flattened group
// matrices and classified layers, and decodes media items concurrently.
// Only a missing DOMDocument.xml or an unloadable archive fail the parse;
// every other problem degrades the affected unit to an absent value.
//
// A Parser serializes calls to Parse. Construct one per configuration and
// reuse it.
package parser
