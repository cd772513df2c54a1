// Package zipfix repairs ZIP archives whose End-Of-Central-Directory record is
// inconsistent with the bytes around it.
//
// Repair is an ordered list of strategies, each producing a candidate buffer
// that the caller's loader either accepts or rejects. The first accepted
// candidate wins. The package only patches bytes; it never decompresses
// entries itself.
package zipfix
