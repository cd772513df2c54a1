// Package twips decodes the fixed-point coordinate tokens used by shape edges
// and morph segments.
//
// A token is either a decimal twips value ("1200", "-35.5") or a hex token
// prefixed with '#', optionally carrying fractional nibbles after a '.'.
// Hex integer parts of six or more nibbles are two's-complement signed at
// their nibble width. All decoders return pixels (twips / PerPixel).
package twips
