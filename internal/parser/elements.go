package parser

import (
	"math"
	"strings"

	"flareader/internal/edge"
	"flareader/internal/fla"
	"flareader/internal/geom"
)

// elements appends the display elements of items to out in stacking order,
// flattening groups. An element with its own matrix keeps it unchanged; one
// without inherits ancestor. A group passes ancestor ∘ group matrix to its
// members.
func (r *run) elements(items []xmlElement, ancestor geom.Matrix, out []fla.Element) []fla.Element {
	for _, it := range items {
		switch {
		case it.Group != nil:
			next := ancestor
			if own := matrix(it.Group.Matrix); own != nil {
				next = geom.Compose(ancestor, *own)
			}
			out = r.elements(it.Group.Members.Items, next, out)
		case it.Symbol != nil:
			out = append(out, symbolInstance(it.Symbol, ancestor))
		case it.Shape != nil:
			out = append(out, shape(it.Shape, ancestor))
		case it.Bitmap != nil:
			out = append(out, &fla.BitmapInstance{
				LibraryItemName: it.Bitmap.LibraryItemName,
				Matrix:          geom.Resolve(matrix(it.Bitmap.Matrix), ancestor),
			})
		case it.Text != nil:
			out = append(out, text(it.Text, it.TextKind, ancestor))
		case it.Video != nil:
			out = append(out, &fla.VideoInstance{
				LibraryItemName: it.Video.LibraryItemName,
				Matrix:          geom.Resolve(matrix(it.Video.Matrix), ancestor),
				Width:           pixels(it.Video.FrameRight, 0),
				Height:          pixels(it.Video.FrameBottom, 0),
			})
		}
	}
	return out
}

func symbolInstance(x *xmlSymbolInstance, ancestor geom.Matrix) *fla.SymbolInstance {
	inst := &fla.SymbolInstance{
		LibraryItemName:     x.LibraryItemName,
		SymbolType:          symbolType(x.SymbolType),
		Loop:                x.Loop,
		FirstFrame:          max(parseInt(x.FirstFrame, 0), 0),
		LastFrame:           optionalInt(x.LastFrame),
		Matrix:              geom.Resolve(matrix(x.Matrix), ancestor),
		TransformationPoint: point(x.TransformationPoint),
		BlendMode:           x.BlendMode,
		CacheAsBitmap:       parseBool(x.CacheAsBitmap, false),
		Name:                x.Name,
		ColorTransform:      colorTransform(x.Color),
		Filters:             filters(x.Filters),
	}
	if inst.SymbolType == fla.SymbolGraphic && inst.Loop == "" {
		inst.Loop = "loop"
	}
	return inst
}

func colorTransform(x *xmlColor) *fla.ColorTransform {
	if x == nil {
		return nil
	}
	ct := fla.IdentityColorTransform()
	ct.RedMultiplier = parseFloat(x.RedMultiplier, ct.RedMultiplier)
	ct.GreenMultiplier = parseFloat(x.GreenMultiplier, ct.GreenMultiplier)
	ct.BlueMultiplier = parseFloat(x.BlueMultiplier, ct.BlueMultiplier)
	ct.AlphaMultiplier = parseFloat(x.AlphaMultiplier, ct.AlphaMultiplier)
	ct.RedOffset = parseFloat(x.RedOffset, 0)
	ct.GreenOffset = parseFloat(x.GreenOffset, 0)
	ct.BlueOffset = parseFloat(x.BlueOffset, 0)
	ct.AlphaOffset = parseFloat(x.AlphaOffset, 0)
	ct.Brightness = parseFloat(x.Brightness, 0)
	ct.TintMultiplier = parseFloat(x.TintMultiplier, 0)
	ct.TintColor = hexColor(x.TintColor, "")
	return &ct
}

func filters(list xmlAnyList) []fla.Filter {
	var out []fla.Filter
	for _, node := range list.Items {
		f := fla.Filter{Kind: node.XMLName.Local, Enabled: true}
		for _, a := range node.Attrs {
			name := a.Name.Local
			if name == "isEnabled" || name == "enabled" {
				f.Enabled = parseBool(a.Value, true)
				continue
			}
			if v := parseFloat(a.Value, math.NaN()); !math.IsNaN(v) {
				if f.Params == nil {
					f.Params = make(map[string]float64)
				}
				f.Params[name] = v
				continue
			}
			if f.Strings == nil {
				f.Strings = make(map[string]string)
			}
			f.Strings[name] = a.Value
		}
		out = append(out, f)
	}
	return out
}

func shape(x *xmlShape, ancestor geom.Matrix) *fla.Shape {
	s := &fla.Shape{
		Matrix:        geom.Resolve(matrix(x.Matrix), ancestor),
		DrawingObject: parseBool(x.IsDrawingObject, false),
		Edges:         make([]fla.Edge, 0, len(x.Edges)),
	}
	for i, xf := range x.Fills {
		s.Fills = append(s.Fills, fillStyle(xf, i+1))
	}
	for i, xs := range x.Strokes {
		s.Strokes = append(s.Strokes, strokeStyle(xs, i+1))
	}
	for _, xe := range x.Edges {
		var cmds []edge.Command
		if strings.TrimSpace(xe.Edges) != "" {
			cmds = edge.Decode(xe.Edges)
		} else if strings.TrimSpace(xe.Cubics) != "" {
			cmds = edge.DecodeCubics(xe.Cubics)
		}
		if len(cmds) == 0 {
			continue
		}
		s.Edges = append(s.Edges, fla.Edge{
			FillStyle0:  parseInt(xe.FillStyle0, 0),
			FillStyle1:  parseInt(xe.FillStyle1, 0),
			StrokeStyle: parseInt(xe.StrokeStyle, 0),
			Commands:    cmds,
		})
	}
	return s
}

func fillStyle(x xmlFillStyle, index int) fla.FillStyle {
	f := fla.FillStyle{Index: parseInt(x.Index, index), Kind: fla.FillSolid, Color: "#000000", Alpha: 1}
	switch {
	case x.Solid != nil:
		f.Color = hexColor(x.Solid.Color, "#000000")
		f.Alpha = clamp01(parseFloat(x.Solid.Alpha, 1))
	case x.Linear != nil:
		f.Kind, f.Color = fla.FillLinear, ""
		f.Gradient = gradient(x.Linear)
	case x.Radial != nil:
		f.Kind, f.Color = fla.FillRadial, ""
		f.Gradient = gradient(x.Radial)
	case x.Bitmap != nil:
		f.Kind, f.Color = fla.FillBitmap, ""
		f.BitmapPath = x.Bitmap.BitmapPath
		f.Matrix = matrix(x.Bitmap.Matrix)
		f.Clipped = parseBool(x.Bitmap.BitmapIsClipped, false)
	}
	return f
}

func gradient(x *xmlGradient) *fla.Gradient {
	g := &fla.Gradient{
		Matrix:              geom.Resolve(matrix(x.Matrix), geom.Identity()),
		Entries:             make([]fla.GradientEntry, 0, len(x.Entries)),
		SpreadMethod:        x.SpreadMethod,
		InterpolationMethod: x.InterpolationMethod,
		FocalPointRatio:     parseFloat(x.FocalPointRatio, 0),
	}
	for _, e := range x.Entries {
		g.Entries = append(g.Entries, fla.GradientEntry{
			Ratio: clamp01(parseFloat(e.Ratio, 0)),
			Color: hexColor(e.Color, "#000000"),
			Alpha: clamp01(parseFloat(e.Alpha, 1)),
		})
	}
	return g
}

func strokeStyle(x xmlStrokeStyle, index int) fla.StrokeStyle {
	st := x.Stroke
	return fla.StrokeStyle{
		Index:      parseInt(x.Index, index),
		Weight:     parseFloat(st.Weight, 1),
		Caps:       st.Caps,
		Joints:     st.Joints,
		MiterLimit: parseFloat(st.MiterLimit, 0),
		ScaleMode:  st.ScaleMode,
		Fill:       fillStyle(st.Fill, 0),
	}
}

func text(x *xmlText, element string, ancestor geom.Matrix) *fla.TextInstance {
	t := &fla.TextInstance{
		TextKind: textKind(element),
		Matrix:   geom.Resolve(matrix(x.Matrix), ancestor),
		Name:     x.Name,
		Width:    parseFloat(x.Width, 0),
		Height:   parseFloat(x.Height, 0),
		Left:     parseFloat(x.Left, 0),
		Runs:     make([]fla.TextRun, 0, len(x.Runs)),
	}
	for _, tr := range x.Runs {
		a := tr.Attrs
		t.Runs = append(t.Runs, fla.TextRun{
			Characters:    tr.Characters,
			Face:          a.Face,
			Size:          parseFloat(a.Size, 12),
			FillColor:     hexColor(a.FillColor, "#000000"),
			Alignment:     a.Alignment,
			Bold:          parseBool(a.Bold, false),
			Italic:        parseBool(a.Italic, false),
			LetterSpacing: parseFloat(a.LetterSpacing, 0),
		})
	}
	return t
}

func textKind(element string) fla.TextKind {
	switch element {
	case "DOMDynamicText":
		return fla.TextDynamic
	case "DOMInputText":
		return fla.TextInput
	default:
		return fla.TextStatic
	}
}

func attr(node xmlAnyNode, name string) string {
	for _, a := range node.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
