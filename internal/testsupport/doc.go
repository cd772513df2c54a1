// Package testsupport holds shared test helpers: a config builder seeded
// with temp directories, an in-memory FLA archive builder, and lossless
// bitmap container fixtures. No binary fixtures are checked in; everything
// is generated per test.
package testsupport
