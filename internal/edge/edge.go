package edge

import (
	"strings"

	"flareader/internal/geom"
	"flareader/internal/twips"
)

// Kind identifies a path command.
type Kind uint8

const (
	MoveTo Kind = iota
	LineTo
	QuadTo
	CubicTo
	Close
)

func (k Kind) String() string {
	switch k {
	case MoveTo:
		return "MoveTo"
	case LineTo:
		return "LineTo"
	case QuadTo:
		return "QuadraticTo"
	case CubicTo:
		return "CubicTo"
	case Close:
		return "ClosePath"
	default:
		return "Unknown"
	}
}

// MarshalText renders the kind by name in JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Command is one decoded path command. Points holds control points followed
// by the end point: one point for MoveTo/LineTo, two for QuadTo, three for
// CubicTo, none for Close.
type Command struct {
	Kind   Kind         `json:"kind"`
	Points []geom.Point `json:"points,omitempty"`
}

// End returns the command's end point; Close reports false.
func (c Command) End() (geom.Point, bool) {
	if len(c.Points) == 0 {
		return geom.Point{}, false
	}
	return c.Points[len(c.Points)-1], true
}

// Decode converts one edges string into path commands.
func Decode(edges string) []Command {
	l := lexer{src: edges}
	return l.run()
}

// DecodeCubics converts one cubics string into path commands. The cubics
// grammar is a superset of the edges grammar, so both share one lexer.
func DecodeCubics(cubics string) []Command {
	return Decode(cubics)
}

type lexer struct {
	src     string
	pos     int
	out     []Command
	inCubic bool
}

func (l *lexer) run() []Command {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isSpace(c):
			l.pos++
		case c == '!':
			l.pos++
			if !l.emit(MoveTo, 1) {
				return l.out
			}
		case c == '|':
			l.pos++
			if !l.emit(LineTo, 1) {
				return l.out
			}
		case c == '[':
			l.pos++
			if !l.emit(QuadTo, 2) {
				return l.out
			}
		case c == '/':
			l.pos++
			l.out = append(l.out, Command{Kind: Close})
		case c == 'S':
			l.pos++
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		case c == '(':
			l.pos++
			l.inCubic = true
		case c == ')':
			l.pos++
			l.inCubic = false
		case c == ';':
			l.pos++
			if l.inCubic {
				if !l.emit(CubicTo, 3) {
					return l.out
				}
			}
		case c == 'q' || c == 'Q':
			l.skipApproximation()
		default:
			return l.out
		}
	}
	return l.out
}

// emit reads n points and appends a command of the given kind. It reports
// false when the points are missing or malformed.
func (l *lexer) emit(kind Kind, n int) bool {
	points := make([]geom.Point, 0, n)
	for range n {
		x, ok := l.coordinate()
		if !ok {
			return false
		}
		y, ok := l.coordinate()
		if !ok {
			return false
		}
		points = append(points, geom.Point{X: x, Y: y})
	}
	l.out = append(l.out, Command{Kind: kind, Points: points})
	return true
}

func (l *lexer) coordinate() (float64, bool) {
	for l.pos < len(l.src) && (isSpace(l.src[l.pos]) || l.src[l.pos] == ',') {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return 0, false
	}
	start := l.pos
	if l.src[l.pos] == '#' {
		l.pos++
		for l.pos < len(l.src) && (isHex(l.src[l.pos]) || l.src[l.pos] == '.') {
			l.pos++
		}
	} else {
		for l.pos < len(l.src) && isDecimal(l.src[l.pos], l.pos == start) {
			l.pos++
		}
	}
	if l.pos == start {
		return 0, false
	}
	value, err := twips.DecodeCoordinate(l.src[start:l.pos])
	if err != nil {
		return 0, false
	}
	return value, true
}

// skipApproximation advances past a q/Q quadratic approximation run inside a
// cubic group.
func (l *lexer) skipApproximation() {
	l.pos++
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ';', ')':
			return
		}
		l.pos++
	}
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isDecimal(c byte, first bool) bool {
	if isDigit(c) || c == '.' {
		return true
	}
	return first && (c == '-' || c == '+')
}

// Encode serializes commands back into the edges grammar using decimal twips.
// Cubic commands are written as a cubic group.
func Encode(cmds []Command) string {
	var b strings.Builder
	for _, cmd := range cmds {
		switch cmd.Kind {
		case MoveTo:
			b.WriteByte('!')
		case LineTo:
			b.WriteByte('|')
		case QuadTo:
			b.WriteByte('[')
		case CubicTo:
			b.WriteString("(;")
		case Close:
			b.WriteByte('/')
			continue
		}
		for i, p := range cmd.Points {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(twips.Encode(p.X))
			if cmd.Kind == CubicTo {
				b.WriteByte(',')
			} else {
				b.WriteByte(' ')
			}
			b.WriteString(twips.Encode(p.Y))
		}
		if cmd.Kind == CubicTo {
			b.WriteString(");")
		}
	}
	return b.String()
}
