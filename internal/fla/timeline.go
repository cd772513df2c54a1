package fla

import "slices"

// Timeline is a scene or a symbol's timeline.
type Timeline struct {
	Name        string   `json:"name"`
	Layers      []*Layer `json:"layers"`
	TotalFrames int      `json:"totalFrames"`
	// CameraLayerIndex is set when a layer passes every camera test.
	CameraLayerIndex *int `json:"cameraLayerIndex,omitempty"`
	// ReferenceLayers holds sorted indices of layers excluded from rendering.
	ReferenceLayers []int `json:"referenceLayers"`
}

// IsReferenceLayer reports whether layer i is excluded from rendering.
func (t *Timeline) IsReferenceLayer(i int) bool {
	_, found := slices.BinarySearch(t.ReferenceLayers, i)
	return found
}

// CameraLayer returns the detected camera layer.
func (t *Timeline) CameraLayer() (*Layer, bool) {
	if t.CameraLayerIndex == nil {
		return nil, false
	}
	i := *t.CameraLayerIndex
	if i < 0 || i >= len(t.Layers) {
		return nil, false
	}
	return t.Layers[i], true
}

// LayerType classifies a layer.
type LayerType string

const (
	LayerNormal LayerType = "normal"
	LayerGuide  LayerType = "guide"
	LayerFolder LayerType = "folder"
	LayerCamera LayerType = "camera"
	LayerMask   LayerType = "mask"
	LayerMasked LayerType = "masked"
)

// Layer is one timeline layer.
type Layer struct {
	Name        string    `json:"name"`
	Color       string    `json:"color,omitempty"`
	Visible     bool      `json:"visible"`
	Locked      bool      `json:"locked"`
	Outline     bool      `json:"outline"`
	Transparent bool      `json:"transparent"`
	Open        bool      `json:"open"`
	AutoNamed   bool      `json:"autoNamed"`
	Type        LayerType `json:"layerType"`
	// AlphaPercent is nil when the layer does not declare one.
	AlphaPercent     *float64 `json:"alphaPercent,omitempty"`
	ParentLayerIndex *int     `json:"parentLayerIndex,omitempty"`
	MaskLayerIndex   *int     `json:"maskLayerIndex,omitempty"`
	Frames           []*Frame `json:"frames"`
}

// FrameAt returns the frame whose span covers index.
func (l *Layer) FrameAt(index int) (*Frame, bool) {
	for _, f := range l.Frames {
		if index >= f.Index && index < f.Index+f.Duration {
			return f, true
		}
	}
	return nil, false
}

// TweenType is the interpolation between keyframes.
type TweenType string

const (
	TweenNone   TweenType = "none"
	TweenMotion TweenType = "motion"
	TweenShape  TweenType = "shape"
)

// Frame is a keyframe span on a layer.
type Frame struct {
	Index        int         `json:"index"`
	Duration     int         `json:"duration"`
	TweenType    TweenType   `json:"tweenType"`
	KeyMode      int         `json:"keyMode,omitempty"`
	Acceleration float64     `json:"acceleration,omitempty"`
	Label        string      `json:"label,omitempty"`
	LabelType    string      `json:"labelType,omitempty"`
	Elements     []Element   `json:"elements"`
	Tweens       []Tween     `json:"tweens,omitempty"`
	Sound        *FrameSound `json:"sound,omitempty"`
	MorphShape   *MorphShape `json:"morphShape,omitempty"`
}

// End returns the first frame index after this span.
func (f *Frame) End() int {
	return f.Index + f.Duration
}
