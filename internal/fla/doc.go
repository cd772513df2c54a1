// Package fla defines the parsed document model: the document with its
// scenes, symbol library, and media items; timelines, layers, and frames;
// and the display element variants placed on frames.
//
// Every element matrix is absolute. Media items carry a decoded payload
// that is nil when decoding failed; absence is the only failure signal.
// A Document is not mutated after the parser returns it.
package fla
