package fla

import "flareader/internal/geom"

// FillKind tags a fill style variant.
type FillKind string

const (
	FillSolid  FillKind = "solid"
	FillLinear FillKind = "linear"
	FillRadial FillKind = "radial"
	FillBitmap FillKind = "bitmap"
)

// FillStyle is one entry of a shape's fill table.
type FillStyle struct {
	Index int      `json:"index"`
	Kind  FillKind `json:"kind"`
	// Color and Alpha apply to solid fills.
	Color string  `json:"color,omitempty"`
	Alpha float64 `json:"alpha"`
	// Gradient applies to linear and radial fills.
	Gradient *Gradient `json:"gradient,omitempty"`
	// BitmapPath, Matrix and Clipped apply to bitmap fills.
	BitmapPath string       `json:"bitmapPath,omitempty"`
	Matrix     *geom.Matrix `json:"matrix,omitempty"`
	Clipped    bool         `json:"clipped,omitempty"`
}

// Gradient describes a linear or radial color ramp.
type Gradient struct {
	Matrix              geom.Matrix     `json:"matrix"`
	Entries             []GradientEntry `json:"entries"`
	SpreadMethod        string          `json:"spreadMethod,omitempty"`
	InterpolationMethod string          `json:"interpolationMethod,omitempty"`
	FocalPointRatio     float64         `json:"focalPointRatio,omitempty"`
}

// GradientEntry is a color stop; Ratio is in [0, 1].
type GradientEntry struct {
	Ratio float64 `json:"ratio"`
	Color string  `json:"color"`
	Alpha float64 `json:"alpha"`
}

// StrokeStyle is one entry of a shape's stroke table.
type StrokeStyle struct {
	Index      int       `json:"index"`
	Weight     float64   `json:"weight"`
	Caps       string    `json:"caps,omitempty"`
	Joints     string    `json:"joints,omitempty"`
	MiterLimit float64   `json:"miterLimit,omitempty"`
	ScaleMode  string    `json:"scaleMode,omitempty"`
	Fill       FillStyle `json:"fill"`
}

// ColorTransform adjusts an instance's colors: channel = channel*Multiplier
// + Offset.
type ColorTransform struct {
	RedMultiplier   float64 `json:"redMultiplier"`
	GreenMultiplier float64 `json:"greenMultiplier"`
	BlueMultiplier  float64 `json:"blueMultiplier"`
	AlphaMultiplier float64 `json:"alphaMultiplier"`
	RedOffset       float64 `json:"redOffset"`
	GreenOffset     float64 `json:"greenOffset"`
	BlueOffset      float64 `json:"blueOffset"`
	AlphaOffset     float64 `json:"alphaOffset"`
	Brightness      float64 `json:"brightness,omitempty"`
	TintMultiplier  float64 `json:"tintMultiplier,omitempty"`
	TintColor       string  `json:"tintColor,omitempty"`
}

// IdentityColorTransform leaves colors unchanged.
func IdentityColorTransform() ColorTransform {
	return ColorTransform{RedMultiplier: 1, GreenMultiplier: 1, BlueMultiplier: 1, AlphaMultiplier: 1}
}

// Filter is a bitmap filter attached to an instance. Params holds the
// filter's numeric attributes; Strings holds the rest (colors, types).
type Filter struct {
	Kind    string             `json:"kind"`
	Enabled bool               `json:"enabled"`
	Params  map[string]float64 `json:"params,omitempty"`
	Strings map[string]string  `json:"strings,omitempty"`
}

// Tween is an easing curve on a keyframe span.
type Tween struct {
	Target    string       `json:"target"`
	Intensity float64      `json:"intensity,omitempty"`
	Points    []geom.Point `json:"points,omitempty"`
}

// FrameSound attaches a sound item to a keyframe.
type FrameSound struct {
	Name       string `json:"name"`
	Sync       string `json:"sync,omitempty"`
	LoopMode   string `json:"loopMode,omitempty"`
	Loop       int    `json:"loop,omitempty"`
	InPoint44  int    `json:"inPoint44,omitempty"`
	OutPoint44 int    `json:"outPoint44,omitempty"`
}

// MorphShape holds the shape-tween hint segments.
type MorphShape struct {
	Segments []MorphSegment `json:"segments"`
}

// MorphSegment is a start/end contour pair.
type MorphSegment struct {
	StartPointA  geom.Point   `json:"startPointA"`
	StartPointB  geom.Point   `json:"startPointB"`
	FillIndex1   int          `json:"fillIndex1,omitempty"`
	FillIndex2   int          `json:"fillIndex2,omitempty"`
	StrokeIndex1 int          `json:"strokeIndex1,omitempty"`
	StrokeIndex2 int          `json:"strokeIndex2,omitempty"`
	Curves       []MorphCurve `json:"curves"`
}

// MorphCurve is one curve of a morph segment.
type MorphCurve struct {
	ControlPointA geom.Point `json:"controlPointA"`
	AnchorPointA  geom.Point `json:"anchorPointA"`
	ControlPointB geom.Point `json:"controlPointB"`
	AnchorPointB  geom.Point `json:"anchorPointB"`
	IsLine        bool       `json:"isLine,omitempty"`
}
