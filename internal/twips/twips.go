package twips

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"flareader/internal/geom"
)

// PerPixel is the number of twips in one pixel.
const PerPixel = 20

// signedNibbles is the minimum hex integer width treated as two's complement.
const signedNibbles = 6

// ErrMalformed reports a token that is not a decodable coordinate.
var ErrMalformed = errors.New("malformed twips token")

// DecodeHexTwips decodes a '#'-prefixed hex token into pixels.
func DecodeHexTwips(token string) (float64, error) {
	body, ok := strings.CutPrefix(strings.TrimSpace(token), "#")
	if !ok {
		return 0, fmt.Errorf("%w: %q lacks '#' prefix", ErrMalformed, token)
	}
	intPart, fracPart, _ := strings.Cut(body, ".")
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("%w: %q is empty", ErrMalformed, token)
	}
	if len(intPart) > 15 || len(fracPart) > 15 {
		return 0, fmt.Errorf("%w: %q is too wide", ErrMalformed, token)
	}

	var whole float64
	if intPart != "" {
		raw, err := strconv.ParseUint(intPart, 16, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrMalformed, token, err)
		}
		value := int64(raw)
		if len(intPart) >= signedNibbles {
			width := uint(len(intPart) * 4)
			if raw&(1<<(width-1)) != 0 {
				value -= int64(1) << width
			}
		}
		whole = float64(value)
	}

	var frac float64
	if fracPart != "" {
		raw, err := strconv.ParseUint(fracPart, 16, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrMalformed, token, err)
		}
		frac = float64(raw) / math.Pow(16, float64(len(fracPart)))
	}
	return (whole + frac) / PerPixel, nil
}

// DecodeDecimalTwips decodes a decimal twips token into pixels.
func DecodeDecimalTwips(token string) (float64, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty decimal token", ErrMalformed)
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformed, token, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrMalformed, token)
	}
	return value / PerPixel, nil
}

// DecodeCoordinate dispatches to the hex or decimal decoder.
func DecodeCoordinate(token string) (float64, error) {
	trimmed := strings.TrimSpace(token)
	if strings.HasPrefix(trimmed, "#") {
		return DecodeHexTwips(trimmed)
	}
	return DecodeDecimalTwips(trimmed)
}

// ParsePoint decodes an "x, y" pair. Either half may be decimal or hex, and
// the separator may be a comma, whitespace, or both.
func ParsePoint(value string) (geom.Point, error) {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) != 2 {
		return geom.Point{}, fmt.Errorf("%w: point %q needs two coordinates", ErrMalformed, value)
	}
	x, err := DecodeCoordinate(fields[0])
	if err != nil {
		return geom.Point{}, err
	}
	y, err := DecodeCoordinate(fields[1])
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Point{X: x, Y: y}, nil
}

// Encode renders pixels back into a decimal twips token.
func Encode(pixels float64) string {
	return strconv.FormatFloat(pixels*PerPixel, 'f', -1, 64)
}
