package parser

import (
	"math"
	"slices"
	"strings"

	"flareader/internal/fla"
	"flareader/internal/geom"
)

func (r *run) timeline(x xmlTimeline) *fla.Timeline {
	t := &fla.Timeline{
		Name:            x.Name,
		Layers:          make([]*fla.Layer, 0, len(x.Layers)),
		ReferenceLayers: []int{},
	}
	for _, xl := range x.Layers {
		t.Layers = append(t.Layers, r.layer(xl))
	}
	wireMasks(t.Layers)

	for i, l := range t.Layers {
		for _, f := range l.Frames {
			t.TotalFrames = max(t.TotalFrames, f.End())
		}
		if r.isReferenceLayer(l) {
			t.ReferenceLayers = append(t.ReferenceLayers, i)
		}
		if t.CameraLayerIndex == nil && r.isCameraLayer(l) {
			idx := i
			t.CameraLayerIndex = &idx
		}
	}
	return t
}

func (r *run) layer(x xmlLayer) *fla.Layer {
	l := &fla.Layer{
		Name:             x.Name,
		Color:            hexColor(x.Color, ""),
		Visible:          parseBool(x.Visible, true),
		Locked:           parseBool(x.Locked, false),
		Outline:          parseBool(x.Outline, false),
		Transparent:      parseBool(x.Transparent, false),
		Open:             parseBool(x.Open, true),
		AutoNamed:        parseBool(x.AutoNamed, false),
		Type:             layerType(x.LayerType),
		AlphaPercent:     optionalFloat(x.AlphaPercent),
		ParentLayerIndex: optionalInt(x.ParentLayerIndex),
		Frames:           make([]*fla.Frame, 0, len(x.Frames)),
	}
	for _, xf := range x.Frames {
		l.Frames = append(l.Frames, r.frame(xf))
	}
	return l
}

func layerType(s string) fla.LayerType {
	switch t := fla.LayerType(strings.ToLower(strings.TrimSpace(s))); t {
	case fla.LayerGuide, fla.LayerFolder, fla.LayerCamera, fla.LayerMask, fla.LayerMasked:
		return t
	default:
		return fla.LayerNormal
	}
}

// wireMasks reclassifies layers parented to a mask layer. Parent indices
// outside the timeline are dropped.
func wireMasks(layers []*fla.Layer) {
	types := make([]fla.LayerType, len(layers))
	for i, l := range layers {
		types[i] = l.Type
	}
	for _, l := range layers {
		if l.ParentLayerIndex == nil {
			continue
		}
		p := *l.ParentLayerIndex
		if p < 0 || p >= len(layers) {
			l.ParentLayerIndex = nil
			continue
		}
		if types[p] == fla.LayerMask {
			l.Type = fla.LayerMasked
			l.MaskLayerIndex = &p
		}
	}
}

// isReferenceLayer decides whether a layer is an authoring aid rather than
// content. Any doubt resolves to rendering the layer.
func (r *run) isReferenceLayer(l *fla.Layer) bool {
	switch l.Type {
	case fla.LayerGuide, fla.LayerFolder, fla.LayerCamera:
		return true
	}
	if l.Transparent && l.AlphaPercent != nil && *l.AlphaPercent < r.opts.ReferenceAlphaThreshold {
		return true
	}
	return l.Outline && r.isCameraAlias(l.Name)
}

func (r *run) isCameraAlias(name string) bool {
	return slices.Contains(r.opts.CameraAliases, strings.ToLower(strings.TrimSpace(name)))
}

// isCameraLayer requires every camera signal at once: a camera-like name, a
// guide, hidden or outlined layer, a single symbol instance on frame one, and
// that instance's pivot near the stage center.
func (r *run) isCameraLayer(l *fla.Layer) bool {
	name := strings.ToLower(l.Name)
	if !r.isCameraAlias(name) && !strings.Contains(name, "camera") && !strings.Contains(name, "viewport") {
		return false
	}
	if l.Type != fla.LayerGuide && l.Visible && !l.Outline {
		return false
	}
	f, ok := l.FrameAt(0)
	if !ok || len(f.Elements) != 1 {
		return false
	}
	inst, ok := f.Elements[0].(*fla.SymbolInstance)
	if !ok {
		return false
	}
	return r.nearStageCenter(inst.Matrix.Apply(inst.TransformationPoint))
}

func (r *run) nearStageCenter(p geom.Point) bool {
	cx, cy := r.doc.Width/2, r.doc.Height/2
	tol := r.opts.CameraCenterTolerance
	return math.Abs(p.X-cx) <= tol*cx && math.Abs(p.Y-cy) <= tol*cy
}

func (r *run) frame(x xmlFrame) *fla.Frame {
	f := &fla.Frame{
		Index:        max(parseInt(x.Index, 0), 0),
		Duration:     max(parseInt(x.Duration, 1), 1),
		TweenType:    tweenType(x.TweenType),
		KeyMode:      parseInt(x.KeyMode, 0),
		Acceleration: parseFloat(x.Acceleration, 0),
		Label:        x.Name,
		Elements:     r.elements(x.Elements.Items, geom.Identity(), make([]fla.Element, 0, len(x.Elements.Items))),
		Tweens:       tweens(x.Tweens),
		Sound:        frameSound(x),
		MorphShape:   morphShape(x.MorphShape),
	}
	if f.Label != "" {
		f.LabelType = x.LabelType
	}
	return f
}

func tweenType(s string) fla.TweenType {
	switch s = strings.ToLower(strings.TrimSpace(s)); {
	case s == "shape":
		return fla.TweenShape
	case strings.HasPrefix(s, "motion"):
		return fla.TweenMotion
	default:
		return fla.TweenNone
	}
}

func tweens(list xmlAnyList) []fla.Tween {
	var out []fla.Tween
	for _, node := range list.Items {
		t := fla.Tween{
			Target:    attr(node, "target"),
			Intensity: parseFloat(attr(node, "intensity"), 0),
		}
		for _, p := range node.Points {
			t.Points = append(t.Points, point(&p))
		}
		out = append(out, t)
	}
	return out
}

func frameSound(x xmlFrame) *fla.FrameSound {
	if strings.TrimSpace(x.SoundName) == "" {
		return nil
	}
	return &fla.FrameSound{
		Name:       x.SoundName,
		Sync:       x.SoundSync,
		LoopMode:   x.SoundLoopMode,
		Loop:       parseInt(x.SoundLoop, 0),
		InPoint44:  parseInt(x.InPoint44, 0),
		OutPoint44: parseInt(x.OutPoint44, 0),
	}
}

func morphShape(x *xmlMorphShape) *fla.MorphShape {
	if x == nil {
		return nil
	}
	m := &fla.MorphShape{Segments: make([]fla.MorphSegment, 0, len(x.Segments))}
	for _, seg := range x.Segments {
		s := fla.MorphSegment{
			StartPointA:  twipsPoint(seg.StartPointA),
			StartPointB:  twipsPoint(seg.StartPointB),
			FillIndex1:   parseInt(seg.FillIndex1, 0),
			FillIndex2:   parseInt(seg.FillIndex2, 0),
			StrokeIndex1: parseInt(seg.StrokeIndex1, 0),
			StrokeIndex2: parseInt(seg.StrokeIndex2, 0),
			Curves:       make([]fla.MorphCurve, 0, len(seg.Curves)),
		}
		for _, c := range seg.Curves {
			s.Curves = append(s.Curves, fla.MorphCurve{
				ControlPointA: twipsPoint(c.ControlPointA),
				AnchorPointA:  twipsPoint(c.AnchorPointA),
				ControlPointB: twipsPoint(c.ControlPointB),
				AnchorPointB:  twipsPoint(c.AnchorPointB),
				IsLine:        parseBool(c.IsLine, false),
			})
		}
		m.Segments = append(m.Segments, s)
	}
	return m
}
