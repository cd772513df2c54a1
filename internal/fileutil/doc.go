// Package fileutil provides file helpers shared by the archive loader and the
// CLI: read-only memory mapping of input documents and atomic writes for
// extracted media and repaired archives.
package fileutil
