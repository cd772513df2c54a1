package entrypath

import (
	"path"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize converts backslashes to forward slashes, trims leading "./"
// and "/" prefixes, and NFC-normalizes the result.
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	for {
		switch {
		case strings.HasPrefix(p, "./"):
			p = p[2:]
		case strings.HasPrefix(p, "/"):
			p = p[1:]
		default:
			return norm.NFC.String(p)
		}
	}
}

// Variants returns the distinct spellings of p worth trying in a lookup:
// the input, its forward-slash form, and its backslash form.
func Variants(p string) []string {
	forward := strings.ReplaceAll(p, "\\", "/")
	back := strings.ReplaceAll(p, "/", "\\")
	out := []string{p}
	for _, v := range []string{forward, back, Normalize(p)} {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// Base returns the final element of p under either separator.
func Base(p string) string {
	return path.Base(strings.ReplaceAll(p, "\\", "/"))
}

// FoldBase is the case-insensitive comparison form of p's basename.
func FoldBase(p string) string {
	return strings.ToLower(Normalize(Base(p)))
}
