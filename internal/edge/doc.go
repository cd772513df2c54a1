// Package edge decodes the compact shape-edge grammar stored in the edges and
// cubics attributes of DOMShape/Edge elements.
//
// Operators: '!' moves, '|' draws a line, '[' draws a quadratic curve
// (control then anchor), '/' closes the path, and "S<n>" switches sub-style
// without emitting geometry. Cubic runs are wrapped in parentheses: each ';'
// starts a three-point cubic segment and 'q'/'Q' introduce the quadratic
// approximation the authoring tool stores alongside, which is skipped.
//
// Decoding never fails: a malformed or truncated token stops the decoder and
// the commands decoded so far are returned.
package edge
