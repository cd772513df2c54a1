// Package geom holds the 2x3 affine matrix and point types shared by the
// edge decoder, the scene-graph parser, and the document model.
//
// Matrices are always finite: constructors and Sanitize replace NaN or
// infinite components with the matching identity component, so consumers can
// compose and invert without re-validating.
package geom
