package parser

import "encoding/xml"

// Attributes are kept as strings so malformed numbers fall back to defaults
// per field instead of failing the whole decode.

type xmlDocument struct {
	XMLName         xml.Name      `xml:"DOMDocument"`
	Width           string        `xml:"width,attr"`
	Height          string        `xml:"height,attr"`
	FrameRate       string        `xml:"frameRate,attr"`
	BackgroundColor string        `xml:"backgroundColor,attr"`
	Media           xmlMedia      `xml:"media"`
	Symbols         []xmlInclude  `xml:"symbols>Include"`
	Timelines       []xmlTimeline `xml:"timelines>DOMTimeline"`
}

type xmlInclude struct {
	Href string `xml:"href,attr"`
}

type xmlMedia struct {
	Bitmaps []xmlBitmapItem `xml:"DOMBitmapItem"`
	Sounds  []xmlSoundItem  `xml:"DOMSoundItem"`
	Videos  []xmlVideoItem  `xml:"DOMVideoItem"`
}

type xmlBitmapItem struct {
	Name           string `xml:"name,attr"`
	ItemID         string `xml:"itemID,attr"`
	Href           string `xml:"href,attr"`
	DataHref       string `xml:"bitmapDataHRef,attr"`
	SourcePath     string `xml:"sourceExternalFilepath,attr"`
	AllowSmoothing string `xml:"allowSmoothing,attr"`
	Quality        string `xml:"quality,attr"`
	FrameRight     string `xml:"frameRight,attr"`
	FrameBottom    string `xml:"frameBottom,attr"`
}

type xmlSoundItem struct {
	Name        string `xml:"name,attr"`
	ItemID      string `xml:"itemID,attr"`
	Href        string `xml:"href,attr"`
	DataHref    string `xml:"soundDataHRef,attr"`
	Format      string `xml:"format,attr"`
	SampleCount string `xml:"sampleCount,attr"`
}

type xmlVideoItem struct {
	Name      string `xml:"name,attr"`
	ItemID    string `xml:"itemID,attr"`
	Href      string `xml:"href,attr"`
	DataHref  string `xml:"videoDataHRef,attr"`
	VideoType string `xml:"videoType,attr"`
	FPS       string `xml:"fps,attr"`
	Width     string `xml:"width,attr"`
	Height    string `xml:"height,attr"`
	Length    string `xml:"length,attr"`
}

type xmlSymbolItem struct {
	XMLName    xml.Name    `xml:"DOMSymbolItem"`
	Name       string      `xml:"name,attr"`
	ItemID     string      `xml:"itemID,attr"`
	SymbolType string      `xml:"symbolType,attr"`
	Timeline   xmlTimeline `xml:"timeline>DOMTimeline"`
}

type xmlTimeline struct {
	Name   string     `xml:"name,attr"`
	Layers []xmlLayer `xml:"layers>DOMLayer"`
}

type xmlLayer struct {
	Name             string     `xml:"name,attr"`
	Color            string     `xml:"color,attr"`
	Visible          string     `xml:"visible,attr"`
	Locked           string     `xml:"locked,attr"`
	Outline          string     `xml:"outline,attr"`
	Transparent      string     `xml:"transparent,attr"`
	AlphaPercent     string     `xml:"alphaPercent,attr"`
	LayerType        string     `xml:"layerType,attr"`
	ParentLayerIndex string     `xml:"parentLayerIndex,attr"`
	Open             string     `xml:"open,attr"`
	AutoNamed        string     `xml:"autoNamed,attr"`
	Frames           []xmlFrame `xml:"frames>DOMFrame"`
}

type xmlFrame struct {
	Index         string         `xml:"index,attr"`
	Duration      string         `xml:"duration,attr"`
	TweenType     string         `xml:"tweenType,attr"`
	KeyMode       string         `xml:"keyMode,attr"`
	Acceleration  string         `xml:"acceleration,attr"`
	Name          string         `xml:"name,attr"`
	LabelType     string         `xml:"labelType,attr"`
	SoundName     string         `xml:"soundName,attr"`
	SoundSync     string         `xml:"soundSync,attr"`
	SoundLoopMode string         `xml:"soundLoopMode,attr"`
	SoundLoop     string         `xml:"soundLoop,attr"`
	InPoint44     string         `xml:"inPoint44,attr"`
	OutPoint44    string         `xml:"outPoint44,attr"`
	Tweens        xmlAnyList     `xml:"tweens"`
	Elements      xmlElements    `xml:"elements"`
	MorphShape    *xmlMorphShape `xml:"MorphShape"`
}

type xmlMatrix struct {
	A  string `xml:"a,attr"`
	B  string `xml:"b,attr"`
	C  string `xml:"c,attr"`
	D  string `xml:"d,attr"`
	TX string `xml:"tx,attr"`
	TY string `xml:"ty,attr"`
}

type xmlPoint struct {
	X string `xml:"x,attr"`
	Y string `xml:"y,attr"`
}

// xmlAnyNode captures an element of open-ended type by name and attributes.
type xmlAnyNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Points  []xmlPoint `xml:"Point"`
}

type xmlAnyList struct {
	Items []xmlAnyNode `xml:",any"`
}

type xmlSymbolInstance struct {
	LibraryItemName     string     `xml:"libraryItemName,attr"`
	SymbolType          string     `xml:"symbolType,attr"`
	Loop                string     `xml:"loop,attr"`
	FirstFrame          string     `xml:"firstFrame,attr"`
	LastFrame           string     `xml:"lastFrame,attr"`
	BlendMode           string     `xml:"blendMode,attr"`
	CacheAsBitmap       string     `xml:"cacheAsBitmap,attr"`
	Name                string     `xml:"name,attr"`
	Matrix              *xmlMatrix `xml:"matrix>Matrix"`
	TransformationPoint *xmlPoint  `xml:"transformationPoint>Point"`
	Color               *xmlColor  `xml:"color>Color"`
	Filters             xmlAnyList `xml:"filters"`
}

type xmlColor struct {
	RedMultiplier   string `xml:"redMultiplier,attr"`
	GreenMultiplier string `xml:"greenMultiplier,attr"`
	BlueMultiplier  string `xml:"blueMultiplier,attr"`
	AlphaMultiplier string `xml:"alphaMultiplier,attr"`
	RedOffset       string `xml:"redOffset,attr"`
	GreenOffset     string `xml:"greenOffset,attr"`
	BlueOffset      string `xml:"blueOffset,attr"`
	AlphaOffset     string `xml:"alphaOffset,attr"`
	Brightness      string `xml:"brightness,attr"`
	TintMultiplier  string `xml:"tintMultiplier,attr"`
	TintColor       string `xml:"tintColor,attr"`
}

type xmlShape struct {
	IsDrawingObject string           `xml:"isDrawingObject,attr"`
	Matrix          *xmlMatrix       `xml:"matrix>Matrix"`
	Fills           []xmlFillStyle   `xml:"fills>FillStyle"`
	Strokes         []xmlStrokeStyle `xml:"strokes>StrokeStyle"`
	Edges           []xmlEdge        `xml:"edges>Edge"`
}

type xmlFillStyle struct {
	Index  string         `xml:"index,attr"`
	Solid  *xmlSolidColor `xml:"SolidColor"`
	Linear *xmlGradient   `xml:"LinearGradient"`
	Radial *xmlGradient   `xml:"RadialGradient"`
	Bitmap *xmlBitmapFill `xml:"BitmapFill"`
}

type xmlSolidColor struct {
	Color string `xml:"color,attr"`
	Alpha string `xml:"alpha,attr"`
}

type xmlGradient struct {
	SpreadMethod        string             `xml:"spreadMethod,attr"`
	InterpolationMethod string             `xml:"interpolationMethod,attr"`
	FocalPointRatio     string             `xml:"focalPointRatio,attr"`
	Matrix              *xmlMatrix         `xml:"matrix>Matrix"`
	Entries             []xmlGradientEntry `xml:"GradientEntry"`
}

type xmlGradientEntry struct {
	Color string `xml:"color,attr"`
	Alpha string `xml:"alpha,attr"`
	Ratio string `xml:"ratio,attr"`
}

type xmlBitmapFill struct {
	BitmapPath      string     `xml:"bitmapPath,attr"`
	BitmapIsClipped string     `xml:"bitmapIsClipped,attr"`
	Matrix          *xmlMatrix `xml:"matrix>Matrix"`
}

type xmlStrokeStyle struct {
	Index  string    `xml:"index,attr"`
	Stroke xmlStroke `xml:",any"`
}

// xmlStroke covers SolidStroke and the dashed, dotted, ragged, stipple and
// hatched variants, which share these attributes.
type xmlStroke struct {
	XMLName    xml.Name
	Weight     string       `xml:"weight,attr"`
	Caps       string       `xml:"caps,attr"`
	Joints     string       `xml:"joints,attr"`
	MiterLimit string       `xml:"miterLimit,attr"`
	ScaleMode  string       `xml:"scaleMode,attr"`
	Fill       xmlFillStyle `xml:"fill"`
}

type xmlEdge struct {
	FillStyle0  string `xml:"fillStyle0,attr"`
	FillStyle1  string `xml:"fillStyle1,attr"`
	StrokeStyle string `xml:"strokeStyle,attr"`
	Edges       string `xml:"edges,attr"`
	Cubics      string `xml:"cubics,attr"`
}

type xmlGroup struct {
	Matrix  *xmlMatrix  `xml:"matrix>Matrix"`
	Members xmlElements `xml:"members"`
}

type xmlBitmapInstance struct {
	LibraryItemName string     `xml:"libraryItemName,attr"`
	Matrix          *xmlMatrix `xml:"matrix>Matrix"`
}

type xmlText struct {
	Name   string       `xml:"name,attr"`
	Width  string       `xml:"width,attr"`
	Height string       `xml:"height,attr"`
	Left   string       `xml:"left,attr"`
	Matrix *xmlMatrix   `xml:"matrix>Matrix"`
	Runs   []xmlTextRun `xml:"textRuns>DOMTextRun"`
}

type xmlTextRun struct {
	Characters string       `xml:"characters"`
	Attrs      xmlTextAttrs `xml:"textAttrs>DOMTextAttrs"`
}

type xmlTextAttrs struct {
	Face          string `xml:"face,attr"`
	Size          string `xml:"size,attr"`
	FillColor     string `xml:"fillColor,attr"`
	Alignment     string `xml:"alignment,attr"`
	Bold          string `xml:"bold,attr"`
	Italic        string `xml:"italic,attr"`
	LetterSpacing string `xml:"letterSpacing,attr"`
}

type xmlVideoInstance struct {
	LibraryItemName string     `xml:"libraryItemName,attr"`
	FrameRight      string     `xml:"frameRight,attr"`
	FrameBottom     string     `xml:"frameBottom,attr"`
	Matrix          *xmlMatrix `xml:"matrix>Matrix"`
}

type xmlMorphShape struct {
	Segments []xmlMorphSegment `xml:"morphSegments>MorphSegment"`
}

type xmlMorphSegment struct {
	StartPointA  string          `xml:"startPointA,attr"`
	StartPointB  string          `xml:"startPointB,attr"`
	FillIndex1   string          `xml:"fillIndex1,attr"`
	FillIndex2   string          `xml:"fillIndex2,attr"`
	StrokeIndex1 string          `xml:"strokeIndex1,attr"`
	StrokeIndex2 string          `xml:"strokeIndex2,attr"`
	Curves       []xmlMorphCurve `xml:"MorphCurves"`
}

type xmlMorphCurve struct {
	ControlPointA string `xml:"controlPointA,attr"`
	AnchorPointA  string `xml:"anchorPointA,attr"`
	ControlPointB string `xml:"controlPointB,attr"`
	AnchorPointB  string `xml:"anchorPointB,attr"`
	IsLine        string `xml:"isLine,attr"`
}

// xmlElement is one child of <elements> or <members>; exactly one field is
// set.
type xmlElement struct {
	Symbol *xmlSymbolInstance
	Shape  *xmlShape
	Group  *xmlGroup
	Bitmap *xmlBitmapInstance
	Text   *xmlText
	// TextKind is the element name for Text.
	TextKind string
	Video    *xmlVideoInstance
}

// xmlElements keeps heterogeneous display elements in document order, which
// is their stacking order.
type xmlElements struct {
	Items []xmlElement
}

func (e *xmlElements) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			item, err := decodeElement(d, t)
			if err != nil {
				return err
			}
			if item != nil {
				e.Items = append(e.Items, *item)
			}
		case xml.EndElement:
			return nil
		}
	}
}

func decodeElement(d *xml.Decoder, start xml.StartElement) (*xmlElement, error) {
	var item xmlElement
	var err error
	switch start.Name.Local {
	case "DOMSymbolInstance":
		item.Symbol = &xmlSymbolInstance{}
		err = d.DecodeElement(item.Symbol, &start)
	case "DOMShape", "DOMRectangleObject", "DOMOvalObject":
		item.Shape = &xmlShape{}
		err = d.DecodeElement(item.Shape, &start)
	case "DOMGroup":
		item.Group = &xmlGroup{}
		err = d.DecodeElement(item.Group, &start)
	case "DOMBitmapInstance":
		item.Bitmap = &xmlBitmapInstance{}
		err = d.DecodeElement(item.Bitmap, &start)
	case "DOMStaticText", "DOMDynamicText", "DOMInputText":
		item.Text = &xmlText{}
		item.TextKind = start.Name.Local
		err = d.DecodeElement(item.Text, &start)
	case "DOMVideoInstance":
		item.Video = &xmlVideoInstance{}
		err = d.DecodeElement(item.Video, &start)
	default:
		return nil, d.Skip()
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}
