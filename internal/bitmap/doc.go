// Package bitmap decodes bitmap item payloads into *image.NRGBA.
//
// Lossless payloads use the 0x0503 container: a fixed little-endian header
// followed by a raw-deflate ARGB buffer. Corrupted streams go through an
// ordered recovery pipeline (full inflate, partial inflate, preset-dictionary
// inflate with and without partial capture, stored-block salvage); the
// longest usable buffer wins and short buffers keep only their complete rows.
// Any other payload (JPEG, PNG, GIF, BMP, TIFF, WebP) goes through
// image.Decode with the x/image codecs registered.
package bitmap
