package parser

import (
	"math"
	"strconv"
	"strings"

	"flareader/internal/geom"
	"flareader/internal/twips"
)

// parseFloat returns def for empty, malformed or non-finite values.
func parseFloat(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func parseInt(s string, def int) int {
	if v := optionalInt(s); v != nil {
		return *v
	}
	return def
}

func parseBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return def
	}
}

func optionalFloat(s string) *float64 {
	v := parseFloat(s, math.NaN())
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func optionalInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return &v
	}
	f := parseFloat(s, math.NaN())
	if math.IsNaN(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return nil
	}
	v := int(f)
	return &v
}

// pixels converts a twips attribute; def is in pixels.
func pixels(s string, def float64) float64 {
	if strings.TrimSpace(s) == "" {
		return def
	}
	v, err := twips.DecodeCoordinate(s)
	if err != nil {
		return def
	}
	return v
}

// matrix converts an optional <Matrix>; nil means the element declared none.
func matrix(m *xmlMatrix) *geom.Matrix {
	if m == nil {
		return nil
	}
	out := geom.Matrix{
		A:  parseFloat(m.A, 1),
		B:  parseFloat(m.B, 0),
		C:  parseFloat(m.C, 0),
		D:  parseFloat(m.D, 1),
		TX: parseFloat(m.TX, 0),
		TY: parseFloat(m.TY, 0),
	}
	return &out
}

func point(p *xmlPoint) geom.Point {
	if p == nil {
		return geom.Point{}
	}
	return geom.Point{X: parseFloat(p.X, 0), Y: parseFloat(p.Y, 0)}
}

// twipsPoint decodes an "x, y" twips pair, zero when malformed.
func twipsPoint(s string) geom.Point {
	p, err := twips.ParsePoint(s)
	if err != nil {
		return geom.Point{}
	}
	return geom.FinitePoint(p)
}

// hexColor normalizes "#rrggbb" to upper case, keeping def when absent.
func hexColor(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	return strings.ToUpper(s)
}
