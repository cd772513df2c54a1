// Package entrypath normalizes archive entry and library item names.
//
// FLA files saved on Windows mix backslash and forward-slash separators and
// may carry decomposed Unicode. Keys are stored in one canonical form and
// lookups try each separator spelling.
package entrypath
