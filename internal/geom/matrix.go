package geom

import "math"

// Point is a 2D coordinate in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Matrix is a 2x3 affine transform laid out the way the authoring tool
// persists it: x' = a*x + c*y + tx, y' = b*x + d*y + ty.
type Matrix struct {
	A  float64 `json:"a"`
	B  float64 `json:"b"`
	C  float64 `json:"c"`
	D  float64 `json:"d"`
	TX float64 `json:"tx"`
	TY float64 `json:"ty"`
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

// IsIdentity reports whether m is exactly the identity transform.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// Sanitize replaces every non-finite component with its identity value.
func (m Matrix) Sanitize() Matrix {
	id := Identity()
	return Matrix{
		A:  finiteOr(m.A, id.A),
		B:  finiteOr(m.B, id.B),
		C:  finiteOr(m.C, id.C),
		D:  finiteOr(m.D, id.D),
		TX: finiteOr(m.TX, id.TX),
		TY: finiteOr(m.TY, id.TY),
	}
}

// Compose returns parent ∘ child: the child transform applied first, then the
// parent transform.
func Compose(parent, child Matrix) Matrix {
	return Matrix{
		A:  parent.A*child.A + parent.C*child.B,
		B:  parent.B*child.A + parent.D*child.B,
		C:  parent.A*child.C + parent.C*child.D,
		D:  parent.B*child.C + parent.D*child.D,
		TX: parent.A*child.TX + parent.C*child.TY + parent.TX,
		TY: parent.B*child.TX + parent.D*child.TY + parent.TY,
	}.Sanitize()
}

// Resolve picks the effective absolute matrix of a group member. A member that
// declares its own matrix keeps it as-is; a member without one inherits the
// ancestor matrix unchanged.
func Resolve(own *Matrix, ancestor Matrix) Matrix {
	if own != nil {
		return own.Sanitize()
	}
	return ancestor.Sanitize()
}

// Apply transforms p by m.
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.TX,
		Y: m.B*p.X + m.D*p.Y + m.TY,
	}
}

// FinitePoint returns p with non-finite coordinates replaced by zero.
func FinitePoint(p Point) Point {
	return Point{X: finiteOr(p.X, 0), Y: finiteOr(p.Y, 0)}
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
