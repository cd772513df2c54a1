package fla

import (
	"flareader/internal/edge"
	"flareader/internal/geom"
)

// ElementKind tags a display element variant.
type ElementKind string

const (
	KindSymbolInstance ElementKind = "symbol"
	KindShape          ElementKind = "shape"
	KindBitmapInstance ElementKind = "bitmap"
	KindTextInstance   ElementKind = "text"
	KindVideoInstance  ElementKind = "video"
)

// Element is a display element on a frame. The set of implementations is
// closed: *SymbolInstance, *Shape, *BitmapInstance, *TextInstance,
// *VideoInstance.
type Element interface {
	Kind() ElementKind
	// Transform returns the element's absolute matrix.
	Transform() geom.Matrix
	element()
}

// SymbolInstance places a library symbol.
type SymbolInstance struct {
	LibraryItemName     string          `json:"libraryItemName"`
	SymbolType          SymbolType      `json:"symbolType"`
	Loop                string          `json:"loop,omitempty"`
	FirstFrame          int             `json:"firstFrame"`
	LastFrame           *int            `json:"lastFrame,omitempty"`
	Matrix              geom.Matrix     `json:"matrix"`
	TransformationPoint geom.Point      `json:"transformationPoint"`
	BlendMode           string          `json:"blendMode,omitempty"`
	CacheAsBitmap       bool            `json:"cacheAsBitmap,omitempty"`
	Name                string          `json:"name,omitempty"`
	ColorTransform      *ColorTransform `json:"colorTransform,omitempty"`
	Filters             []Filter        `json:"filters,omitempty"`
}

// Shape is vector geometry.
type Shape struct {
	Matrix        geom.Matrix   `json:"matrix"`
	DrawingObject bool          `json:"isDrawingObject,omitempty"`
	Fills         []FillStyle   `json:"fills,omitempty"`
	Strokes       []StrokeStyle `json:"strokes,omitempty"`
	Edges         []Edge        `json:"edges"`
}

// Edge is one decoded path tagged with the styles it borders. Style
// indices are 1-based; zero means none.
type Edge struct {
	FillStyle0  int            `json:"fillStyle0,omitempty"`
	FillStyle1  int            `json:"fillStyle1,omitempty"`
	StrokeStyle int            `json:"strokeStyle,omitempty"`
	Commands    []edge.Command `json:"commands"`
}

// BitmapInstance places a bitmap library item.
type BitmapInstance struct {
	LibraryItemName string      `json:"libraryItemName"`
	Matrix          geom.Matrix `json:"matrix"`
}

// TextKind distinguishes the text field types.
type TextKind string

const (
	TextStatic  TextKind = "static"
	TextDynamic TextKind = "dynamic"
	TextInput   TextKind = "input"
)

// TextInstance is a text field.
type TextInstance struct {
	TextKind TextKind    `json:"textKind"`
	Matrix   geom.Matrix `json:"matrix"`
	Name     string      `json:"name,omitempty"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Left     float64     `json:"left,omitempty"`
	Runs     []TextRun   `json:"runs"`
}

// Text concatenates every run's characters.
func (t *TextInstance) Text() string {
	var n int
	for _, r := range t.Runs {
		n += len(r.Characters)
	}
	buf := make([]byte, 0, n)
	for _, r := range t.Runs {
		buf = append(buf, r.Characters...)
	}
	return string(buf)
}

// TextRun is a span of uniformly styled characters.
type TextRun struct {
	Characters    string  `json:"characters"`
	Face          string  `json:"face,omitempty"`
	Size          float64 `json:"size"`
	FillColor     string  `json:"fillColor"`
	Alignment     string  `json:"alignment,omitempty"`
	Bold          bool    `json:"bold,omitempty"`
	Italic        bool    `json:"italic,omitempty"`
	LetterSpacing float64 `json:"letterSpacing,omitempty"`
}

// VideoInstance places a video library item.
type VideoInstance struct {
	LibraryItemName string      `json:"libraryItemName"`
	Matrix          geom.Matrix `json:"matrix"`
	Width           float64     `json:"width"`
	Height          float64     `json:"height"`
}

func (*SymbolInstance) Kind() ElementKind { return KindSymbolInstance }
func (*Shape) Kind() ElementKind          { return KindShape }
func (*BitmapInstance) Kind() ElementKind { return KindBitmapInstance }
func (*TextInstance) Kind() ElementKind   { return KindTextInstance }
func (*VideoInstance) Kind() ElementKind  { return KindVideoInstance }

func (e *SymbolInstance) Transform() geom.Matrix { return e.Matrix }
func (e *Shape) Transform() geom.Matrix          { return e.Matrix }
func (e *BitmapInstance) Transform() geom.Matrix { return e.Matrix }
func (e *TextInstance) Transform() geom.Matrix   { return e.Matrix }
func (e *VideoInstance) Transform() geom.Matrix  { return e.Matrix }

func (*SymbolInstance) element() {}
func (*Shape) element()          {}
func (*BitmapInstance) element() {}
func (*TextInstance) element()   {}
func (*VideoInstance) element()  {}
