// Package archive opens FLA containers and resolves entry paths.
//
// Open loads the ZIP with archive/zip (deflate routed through klauspost's
// flate) and, when the central directory is rejected, retries with the
// zipfix repair strategies. Entry names flagged as non-UTF-8 are decoded
// from CP437 and every name is indexed under the canonical key entrypath
// produces. Lookup tries the exact key and finally a case-insensitive basename search so archives
// written on different platforms resolve the same way.
package archive
