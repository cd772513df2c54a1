package parser_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"image/color"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"

	"flareader/internal/archive"
	"flareader/internal/edge"
	"flareader/internal/fla"
	"flareader/internal/geom"
	"flareader/internal/mediacache"
	"flareader/internal/parser"
	"flareader/internal/services"
	ts "flareader/internal/testsupport"
	"flareader/internal/zipfix"
)

func parse(t *testing.T, data []byte) *fla.Document {
	t.Helper()
	doc, err := parser.New(parser.DefaultOptions(), nil).Parse(context.Background(), data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func singleScene(t *testing.T, layers ...string) []byte {
	t.Helper()
	return ts.NewArchive().
		AddString("DOMDocument.xml", ts.DocumentXML(`width="550" height="400"`, ts.TimelinesXML(ts.TimelineXML("Scene 1", layers...)))).
		Bytes(t)
}

func TestParseAppliesDocumentDefaults(t *testing.T) {
	data := ts.NewArchive().AddString("DOMDocument.xml", ts.DocumentXML("", ts.TimelinesXML())).Bytes(t)
	doc := parse(t, data)
	if doc.Width != 550 || doc.Height != 400 {
		t.Fatalf("size = %vx%v, want 550x400", doc.Width, doc.Height)
	}
	if doc.FrameRate != 24 || doc.BackgroundColor != "#FFFFFF" {
		t.Fatalf("frameRate %v background %q", doc.FrameRate, doc.BackgroundColor)
	}
}

func TestParseReadsDocumentAttributes(t *testing.T) {
	data := ts.NewArchive().
		AddString("DOMDocument.xml", ts.DocumentXML(`width="1280" height="720" frameRate="30" backgroundColor="#336699"`)).
		Bytes(t)
	doc := parse(t, data)
	if doc.Width != 1280 || doc.Height != 720 || doc.FrameRate != 30 || doc.BackgroundColor != "#336699" {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestParseMissingDocument(t *testing.T) {
	data := ts.NewArchive().AddString("LIBRARY/Symbol 1.xml", ts.SymbolXML("Symbol 1", "graphic")).Bytes(t)
	_, err := parser.New(parser.DefaultOptions(), nil).Parse(context.Background(), data)
	if !errors.Is(err, parser.ErrMissingDocument) {
		t.Fatalf("expected ErrMissingDocument, got %v", err)
	}
	if err.Error() != "Invalid FLA file: DOMDocument.xml not found" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestParseRejectsNonArchive(t *testing.T) {
	_, err := parser.New(parser.DefaultOptions(), nil).Parse(context.Background(), []byte("definitely not a zip file"))
	if !errors.Is(err, services.ErrInvalidArchive) {
		t.Fatalf("expected ErrInvalidArchive, got %v", err)
	}
}

// parseLogged parses data with a JSON logger and returns the log output.
func parseLogged(t *testing.T, data []byte) (*fla.Document, string) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	doc, err := parser.New(parser.DefaultOptions(), logger).Parse(context.Background(), data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc, buf.String()
}

func TestParseAcceptsTrailingGarbageWithoutRepair(t *testing.T) {
	clean := ts.NewArchive().
		AddString("DOMDocument.xml", ts.DocumentXML(`width="640" height="480"`)).
		Bytes(t)
	damaged := append(append([]byte(nil), clean...), 0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02, 0x03, 0x04)
	doc, logs := parseLogged(t, damaged)
	if doc.Width != 640 || doc.Height != 480 {
		t.Fatalf("size = %vx%v, want 640x480", doc.Width, doc.Height)
	}
	if strings.Contains(logs, "archive_repaired") {
		t.Fatalf("trailing bytes should load without repair:\n%s", logs)
	}
}

func TestParseRepairsCentralDirectorySize(t *testing.T) {
	clean := ts.NewArchive().
		AddString("DOMDocument.xml", ts.DocumentXML(`width="640" height="480"`)).
		Bytes(t)
	rec, err := zipfix.FindEOCD(clean)
	if err != nil {
		t.Fatalf("FindEOCD: %v", err)
	}
	damaged := append([]byte(nil), clean...)
	binary.LittleEndian.PutUint32(damaged[rec.Offset+12:], rec.CDSize+99)
	if err := archive.Validate(damaged); err == nil {
		t.Fatal("fixture should be rejected by the primary loader")
	}

	doc, logs := parseLogged(t, damaged)
	if doc.Width != 640 || doc.Height != 480 {
		t.Fatalf("size = %vx%v, want 640x480", doc.Width, doc.Height)
	}
	if !strings.Contains(logs, "archive_repaired") || !strings.Contains(logs, string(zipfix.StrategyCDSize)) {
		t.Fatalf("expected repair to be logged:\n%s", logs)
	}
}

func TestMalformedDocumentKeepsDefaults(t *testing.T) {
	data := ts.NewArchive().AddString("DOMDocument.xml", `<DOMDocument width="800"><timelines><DOMTim`).Bytes(t)
	doc := parse(t, data)
	if doc.Height != 400 {
		t.Fatalf("height = %v, want default", doc.Height)
	}
}

func TestDanglingSymbolReferenceIsKept(t *testing.T) {
	data := singleScene(t, ts.LayerXML(`name="Layer 1"`, ts.FrameXML(`index="0"`, ts.SymbolInstanceXML("Ghost", ""))))
	doc := parse(t, data)
	if _, ok := doc.Symbols["Ghost"]; ok {
		t.Fatal("unexpected symbol for missing library item")
	}
	els := doc.Timelines[0].Layers[0].Frames[0].Elements
	if len(els) != 1 {
		t.Fatalf("elements = %d, want 1", len(els))
	}
	inst, ok := els[0].(*fla.SymbolInstance)
	if !ok || inst.LibraryItemName != "Ghost" {
		t.Fatalf("unexpected element %#v", els[0])
	}
}

func TestSymbolsFromIncludesAndLibraryScan(t *testing.T) {
	layer := ts.LayerXML(`name="art"`, ts.FrameXML(`index="0"`))
	data := ts.NewArchive().
		AddString("DOMDocument.xml", ts.DocumentXML("", ts.IncludesXML("Folder/Ball.xml"), ts.TimelinesXML())).
		AddString("LIBRARY/Folder/Ball.xml", ts.SymbolXML("Folder/Ball", "graphic", layer)).
		AddString("LIBRARY/Star.xml", ts.SymbolXML("Star", "", layer)).
		AddString("LIBRARY/broken.xml", `<DOMSymbolItem name="broken"><timeline>`).
		Bytes(t)
	doc := parse(t, data)

	ball, ok := doc.Symbol(`Folder\Ball`)
	if !ok {
		t.Fatal("expected backslash lookup to find Folder/Ball")
	}
	if doc.Symbols["Folder/Ball"] != ball || doc.Symbols[`Folder\Ball`] != ball {
		t.Fatal("expected both separator spellings to share one symbol")
	}
	if ball.Type != fla.SymbolGraphic {
		t.Fatalf("type = %q", ball.Type)
	}
	star, ok := doc.Symbol("Star")
	if !ok || star.Type != fla.SymbolMovieClip {
		t.Fatalf("Star = %+v, %v", star, ok)
	}
	if _, ok := doc.Symbol("broken"); ok {
		t.Fatal("malformed symbol should be skipped")
	}
	if got := len(doc.SymbolList()); got != 2 {
		t.Fatalf("distinct symbols = %d, want 2", got)
	}
}

func TestGroupMatrixFlattening(t *testing.T) {
	shape := `<edges><Edge edges="!0 0|20 0"/></edges>`
	group := `<DOMGroup><matrix><Matrix tx="10" ty="20"/></matrix><members>` +
		`<DOMShape>` + shape + `</DOMShape>` +
		`<DOMShape><matrix><Matrix a="2" d="2" tx="5"/></matrix>` + shape + `</DOMShape>` +
		`<DOMGroup><matrix><Matrix a="2" d="2"/></matrix><members>` + ts.SymbolInstanceXML("x", "") + `</members></DOMGroup>` +
		`</members></DOMGroup>`
	data := singleScene(t, ts.LayerXML(`name="L"`, ts.FrameXML(`index="0"`, group, `<DOMShape>`+shape+`</DOMShape>`)))
	els := parse(t, data).Timelines[0].Layers[0].Frames[0].Elements

	want := []geom.Matrix{
		{A: 1, D: 1, TX: 10, TY: 20},
		{A: 2, D: 2, TX: 5},
		{A: 2, D: 2, TX: 10, TY: 20},
		geom.Identity(),
	}
	if len(els) != len(want) {
		t.Fatalf("elements = %d, want %d", len(els), len(want))
	}
	for i, w := range want {
		if got := els[i].Transform(); got != w {
			t.Errorf("element %d matrix = %+v, want %+v", i, got, w)
		}
	}
	if els[2].Kind() != fla.KindSymbolInstance {
		t.Fatalf("element 2 kind = %q", els[2].Kind())
	}
}

func TestShapeGeometryAndStyles(t *testing.T) {
	shape := `<DOMShape><fills><FillStyle index="1"><SolidColor color="#ff0000" alpha="0.5"/></FillStyle>` +
		`<FillStyle index="2"><LinearGradient><GradientEntry color="#000000" ratio="0"/><GradientEntry color="#FFFFFF" ratio="1"/></LinearGradient></FillStyle></fills>` +
		`<strokes><StrokeStyle index="1"><SolidStroke weight="3" caps="none"><fill><SolidColor color="#00FF00"/></fill></SolidStroke></StrokeStyle></strokes>` +
		`<edges><Edge fillStyle1="1" strokeStyle="1" edges="!0 0|100 0|100 100|0 100|0 0"/><Edge cubics="!0 0(;10,0 20,0 30,0q0 0Q10 0q30 0);"/><Edge edges=""/></edges></DOMShape>`
	data := singleScene(t, ts.LayerXML(`name="L"`, ts.FrameXML(`index="0"`, shape)))
	s, ok := parse(t, data).Timelines[0].Layers[0].Frames[0].Elements[0].(*fla.Shape)
	if !ok {
		t.Fatal("expected a shape")
	}
	if len(s.Fills) != 2 || s.Fills[0].Color != "#FF0000" || s.Fills[0].Alpha != 0.5 {
		t.Fatalf("unexpected fills %+v", s.Fills)
	}
	if s.Fills[1].Kind != fla.FillLinear || len(s.Fills[1].Gradient.Entries) != 2 {
		t.Fatalf("unexpected gradient fill %+v", s.Fills[1])
	}
	if len(s.Strokes) != 1 || s.Strokes[0].Weight != 3 || s.Strokes[0].Fill.Color != "#00FF00" {
		t.Fatalf("unexpected strokes %+v", s.Strokes)
	}
	if len(s.Edges) < 1 {
		t.Fatal("expected decoded edges")
	}
	first := s.Edges[0]
	if first.FillStyle1 != 1 || first.StrokeStyle != 1 || len(first.Commands) != 5 {
		t.Fatalf("unexpected first edge %+v", first)
	}
	if first.Commands[0].Kind != edge.MoveTo || first.Commands[2].Kind != edge.LineTo {
		t.Fatalf("unexpected command kinds %+v", first.Commands)
	}
	if p := first.Commands[2].Points[0]; p != (geom.Point{X: 5, Y: 5}) {
		t.Fatalf("third point = %+v, want (5,5)", p)
	}
	for _, e := range s.Edges {
		if len(e.Commands) == 0 {
			t.Fatal("empty edges should be dropped")
		}
	}
}

func TestReferenceLayerClassification(t *testing.T) {
	layers := []struct {
		attrs string
		ref   bool
	}{
		{`name="guide" layerType="guide"`, true},
		{`name="folder" layerType="folder"`, true},
		{`name="trace" transparent="true" alphaPercent="30"`, true},
		{`name="faint but opaque" transparent="false" alphaPercent="30"`, false},
		{`name="mostly visible" transparent="true" alphaPercent="80"`, false},
		{`name="Ramka" outline="true"`, true},
		{`name="ramka"`, false},
		{`name="my camera rig" outline="true"`, false},
		{`name="art"`, false},
	}
	var xml []string
	var want []int
	for i, l := range layers {
		xml = append(xml, ts.LayerXML(l.attrs, ts.FrameXML(`index="0"`)))
		if l.ref {
			want = append(want, i)
		}
	}
	tl := parse(t, singleScene(t, xml...)).Timelines[0]
	if !slices.Equal(tl.ReferenceLayers, want) {
		t.Fatalf("reference layers = %v, want %v", tl.ReferenceLayers, want)
	}
	for i, l := range layers {
		if tl.IsReferenceLayer(i) != l.ref {
			t.Errorf("IsReferenceLayer(%d) = %v", i, !l.ref)
		}
	}
}

func TestCameraLayerDetection(t *testing.T) {
	centered := ts.SymbolInstanceXML("Cam", `tx="280" ty="195"`)
	tests := []struct {
		name   string
		layer  string
		camera bool
	}{
		{"all signals", ts.LayerXML(`name="Camera" visible="false"`, ts.FrameXML(`index="0"`, centered)), true},
		{"guide alias", ts.LayerXML(`name="ramka" layerType="guide"`, ts.FrameXML(`index="0"`, centered)), true},
		{"substring viewport outlined", ts.LayerXML(`name="Main Viewport" outline="true"`, ts.FrameXML(`index="0"`, centered)), true},
		{"visible normal layer", ts.LayerXML(`name="Camera"`, ts.FrameXML(`index="0"`, centered)), false},
		{"name mismatch", ts.LayerXML(`name="frame" visible="false"`, ts.FrameXML(`index="0"`, centered)), false},
		{"off center", ts.LayerXML(`name="Camera" visible="false"`, ts.FrameXML(`index="0"`, ts.SymbolInstanceXML("Cam", `tx="100" ty="200"`))), false},
		{"two elements", ts.LayerXML(`name="Camera" visible="false"`, ts.FrameXML(`index="0"`, centered, centered)), false},
		{"shape element", ts.LayerXML(`name="Camera" visible="false"`, ts.FrameXML(`index="0"`, `<DOMShape/>`)), false},
		{"nothing on frame one", ts.LayerXML(`name="Camera" visible="false"`, ts.FrameXML(`index="3"`, centered)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			art := ts.LayerXML(`name="art"`, ts.FrameXML(`index="0"`))
			tl := parse(t, singleScene(t, art, tt.layer)).Timelines[0]
			if got := tl.CameraLayerIndex != nil; got != tt.camera {
				t.Fatalf("camera detected = %v, want %v", got, tt.camera)
			}
			if tt.camera {
				if l, ok := tl.CameraLayer(); !ok || l != tl.Layers[1] {
					t.Fatalf("CameraLayer = %v, %v", l, ok)
				}
			}
		})
	}
}

func TestCameraToleranceIsConfigurable(t *testing.T) {
	layer := ts.LayerXML(`name="Camera" visible="false"`, ts.FrameXML(`index="0"`, ts.SymbolInstanceXML("Cam", `tx="330" ty="200"`)))
	data := singleScene(t, layer)

	if tl := parse(t, data).Timelines[0]; tl.CameraLayerIndex != nil {
		t.Fatal("20% offset should miss the default tolerance")
	}
	opts := parser.DefaultOptions()
	opts.CameraCenterTolerance = 0.25
	doc, err := parser.New(opts, nil).Parse(context.Background(), data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Timelines[0].CameraLayerIndex == nil {
		t.Fatal("expected camera within widened tolerance")
	}
}

func TestMaskWiring(t *testing.T) {
	f := ts.FrameXML(`index="0"`)
	tl := parse(t, singleScene(t,
		ts.LayerXML(`name="mask" layerType="mask"`, f),
		ts.LayerXML(`name="masked" parentLayerIndex="0"`, f),
		ts.LayerXML(`name="orphan" parentLayerIndex="9"`, f),
		ts.LayerXML(`name="dir" layerType="folder"`, f),
		ts.LayerXML(`name="child" parentLayerIndex="3"`, f),
	)).Timelines[0]

	if l := tl.Layers[1]; l.Type != fla.LayerMasked || l.MaskLayerIndex == nil || *l.MaskLayerIndex != 0 {
		t.Fatalf("masked layer = %+v", l)
	}
	if l := tl.Layers[2]; l.ParentLayerIndex != nil || l.Type != fla.LayerNormal {
		t.Fatalf("orphan layer = %+v", l)
	}
	if l := tl.Layers[4]; l.Type != fla.LayerNormal || l.MaskLayerIndex != nil || l.ParentLayerIndex == nil || *l.ParentLayerIndex != 3 {
		t.Fatalf("folder child = %+v", l)
	}
	if tl.Layers[0].Type != fla.LayerMask {
		t.Fatalf("mask layer type = %q", tl.Layers[0].Type)
	}
}

func TestFrameDurationsAndTotals(t *testing.T) {
	tl := parse(t, singleScene(t,
		ts.LayerXML(`name="a"`,
			ts.FrameXML(`index="0"`),
			ts.FrameXML(`index="1" duration="0"`),
			ts.FrameXML(`index="2" duration="5" tweenType="motion" name="intro" labelType="name"`)),
		ts.LayerXML(`name="b"`, ts.FrameXML(`index="0" duration="3"`)),
	)).Timelines[0]

	frames := tl.Layers[0].Frames
	if frames[0].Duration != 1 || frames[1].Duration != 1 || frames[2].Duration != 5 {
		t.Fatalf("durations = %d %d %d", frames[0].Duration, frames[1].Duration, frames[2].Duration)
	}
	if frames[2].TweenType != fla.TweenMotion || frames[2].Label != "intro" || frames[2].LabelType != "name" {
		t.Fatalf("unexpected frame %+v", frames[2])
	}
	if tl.TotalFrames != 7 {
		t.Fatalf("totalFrames = %d, want 7", tl.TotalFrames)
	}
	if f, ok := tl.Layers[0].FrameAt(4); !ok || f != frames[2] {
		t.Fatal("FrameAt(4) should land in the third span")
	}
}

func TestNonFiniteMatrixFallsBack(t *testing.T) {
	data := singleScene(t, ts.LayerXML(`name="L"`, ts.FrameXML(`index="0"`, ts.SymbolInstanceXML("x", `a="NaN" d="Infinity" tx="bogus" ty="7"`))))
	m := parse(t, data).Timelines[0].Layers[0].Frames[0].Elements[0].Transform()
	if m != (geom.Matrix{A: 1, D: 1, TY: 7}) {
		t.Fatalf("matrix = %+v", m)
	}
}

func TestTextAndInstanceAttributes(t *testing.T) {
	text := `<DOMDynamicText name="score" width="120" height="20"><textRuns>` +
		`<DOMTextRun><characters>Hi </characters><textAttrs><DOMTextAttrs face="Arial" size="14" fillColor="#333333" bold="true"/></textAttrs></DOMTextRun>` +
		`<DOMTextRun><characters>there</characters></DOMTextRun></textRuns></DOMDynamicText>`
	inst := `<DOMSymbolInstance libraryItemName="x" symbolType="graphic" firstFrame="2" lastFrame="9" blendMode="multiply">` +
		`<transformationPoint><Point x="4" y="6"/></transformationPoint>` +
		`<color><Color alphaMultiplier="0.5" redOffset="10"/></color>` +
		`<filters><DropShadowFilter blurX="4" color="#000000" isEnabled="false"/><BlurFilter blurX="2" blurY="2"/></filters></DOMSymbolInstance>`
	els := parse(t, singleScene(t, ts.LayerXML(`name="L"`, ts.FrameXML(`index="0"`, text, inst)))).Timelines[0].Layers[0].Frames[0].Elements

	tx, ok := els[0].(*fla.TextInstance)
	if !ok || tx.TextKind != fla.TextDynamic || tx.Text() != "Hi there" || tx.Width != 120 {
		t.Fatalf("unexpected text %+v", els[0])
	}
	if !tx.Runs[0].Bold || tx.Runs[0].Size != 14 || tx.Runs[1].FillColor != "#000000" {
		t.Fatalf("unexpected runs %+v", tx.Runs)
	}

	si := els[1].(*fla.SymbolInstance)
	if si.SymbolType != fla.SymbolGraphic || si.Loop != "loop" || si.FirstFrame != 2 || si.LastFrame == nil || *si.LastFrame != 9 {
		t.Fatalf("unexpected instance %+v", si)
	}
	if si.TransformationPoint != (geom.Point{X: 4, Y: 6}) {
		t.Fatalf("transformation point = %+v", si.TransformationPoint)
	}
	if si.ColorTransform == nil || si.ColorTransform.AlphaMultiplier != 0.5 || si.ColorTransform.RedMultiplier != 1 || si.ColorTransform.RedOffset != 10 {
		t.Fatalf("color transform = %+v", si.ColorTransform)
	}
	if len(si.Filters) != 2 || si.Filters[0].Kind != "DropShadowFilter" || si.Filters[0].Enabled {
		t.Fatalf("filters = %+v", si.Filters)
	}
	if si.Filters[0].Params["blurX"] != 4 || si.Filters[0].Strings["color"] != "#000000" {
		t.Fatalf("filter attributes = %+v", si.Filters[0])
	}
}

func mediaArchive(t *testing.T) []byte {
	t.Helper()
	spec := ts.BitmapSpec{Width: 4, Height: 2, HasAlpha: true}
	good := ts.LosslessBitmap(t, spec, ts.ARGB(4, 2, 0xFF, 10, 20, 30))
	bad := append(ts.LosslessHeader(spec), 0xFF, 0x13, 0x8C, 0x42, 0xD9, 0x05)
	media := `<media>` +
		`<DOMBitmapItem name="good.png" bitmapDataHRef="M 1.dat" frameRight="80" frameBottom="40"/>` +
		`<DOMBitmapItem name="bad.png" bitmapDataHRef="M 2.dat"/>` +
		`<DOMBitmapItem name="gone.png" bitmapDataHRef="M 3.dat"/>` +
		`<DOMSoundItem name="beep.wav" soundDataHRef="S 1.dat" format="22kHz 16bit Mono" sampleCount="4"/>` +
		`<DOMVideoItem name="clip.flv" videoDataHRef="V 1.dat"/>` +
		`</media>`
	return ts.NewArchive().
		AddString("DOMDocument.xml", ts.DocumentXML("", media)).
		AddStored("bin/M 1.dat", good).
		AddStored("bin/M 2.dat", bad).
		AddStored("bin/S 1.dat", []byte{1, 0, 2, 0, 3, 0, 4, 0}).
		AddStored("bin/V 1.dat", []byte("not an flv stream")).
		Bytes(t)
}

func TestMediaDecodeSoftFailures(t *testing.T) {
	doc := parse(t, mediaArchive(t))

	good := doc.Bitmaps["good.png"]
	if good == nil || good.Image == nil {
		t.Fatal("expected decoded bitmap")
	}
	if good.Width != 4 || good.Height != 2 || good.Recovery == "" {
		t.Fatalf("unexpected bitmap item %+v", good)
	}
	if c := good.Image.NRGBAAt(3, 1); c != (color.NRGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Fatalf("pixel = %+v", c)
	}
	for _, name := range []string{"bad.png", "gone.png"} {
		item, ok := doc.Bitmaps[name]
		if !ok {
			t.Fatalf("%s should stay registered", name)
		}
		if item.Image != nil {
			t.Fatalf("%s should have no image", name)
		}
	}

	snd := doc.Sounds["beep.wav"]
	if snd == nil || snd.Audio == nil {
		t.Fatal("expected decoded sound")
	}
	if snd.Audio.SampleRate != 22050 || !slices.Equal(snd.Audio.Samples, []int16{1, 2, 3, 4}) {
		t.Fatalf("unexpected audio %+v", snd.Audio)
	}

	if v := doc.Videos["clip.flv"]; v == nil || v.Summary != nil {
		t.Fatalf("video should be registered without a summary: %+v", v)
	}
}

type countingCache struct {
	mu      sync.Mutex
	entries map[string]mediacache.Entry
	hits    int
	stores  int
}

func (c *countingCache) Lookup(_ context.Context, key string) (mediacache.Entry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return e, ok, nil
}

func (c *countingCache) Store(_ context.Context, key string, e mediacache.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
	c.stores++
	return nil
}

func TestMediaCacheServesRepeatParses(t *testing.T) {
	cache := &countingCache{entries: make(map[string]mediacache.Entry)}
	opts := parser.DefaultOptions()
	opts.Cache = cache
	opts.DecodeWorkers = 1
	p := parser.New(opts, nil)
	data := mediaArchive(t)

	first, err := p.Parse(context.Background(), data)
	if err != nil {
		t.Fatalf("first Parse: %v", err)
	}
	if cache.stores != 2 || cache.hits != 0 {
		t.Fatalf("after first parse stores=%d hits=%d", cache.stores, cache.hits)
	}
	second, err := p.Parse(context.Background(), data)
	if err != nil {
		t.Fatalf("second Parse: %v", err)
	}
	if cache.stores != 2 || cache.hits != 2 {
		t.Fatalf("after second parse stores=%d hits=%d", cache.stores, cache.hits)
	}
	a, b := first.Bitmaps["good.png"].Image, second.Bitmaps["good.png"].Image
	if b == nil || a.NRGBAAt(0, 0) != b.NRGBAAt(0, 0) {
		t.Fatal("cached bitmap differs from decoded bitmap")
	}
	if !slices.Equal(first.Sounds["beep.wav"].Audio.Samples, second.Sounds["beep.wav"].Audio.Samples) {
		t.Fatal("cached sound differs from decoded sound")
	}
}

func TestProgressMessages(t *testing.T) {
	var msgs []string
	opts := parser.DefaultOptions()
	opts.Progress = func(m string) { msgs = append(msgs, m) }
	data := ts.NewArchive().
		AddString("DOMDocument.xml", ts.DocumentXML("")).
		AddString("LIBRARY/A.xml", ts.SymbolXML("A", "graphic")).
		Bytes(t)
	if _, err := parser.New(opts, nil).Parse(context.Background(), data); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(msgs) < 3 || msgs[0] != "Extracting archive..." || msgs[1] != "Parsing document..." {
		t.Fatalf("messages = %q", msgs)
	}
	if !slices.ContainsFunc(msgs, func(m string) bool { return strings.HasPrefix(m, "Loading symbols... (1/1)") }) {
		t.Fatalf("missing symbol progress in %q", msgs)
	}
}

func TestParseFile(t *testing.T) {
	path := ts.NewArchive().
		AddString("DOMDocument.xml", ts.DocumentXML(`width="320"`)).
		WriteFile(t, "movie.fla")
	doc, err := parser.New(parser.DefaultOptions(), nil).ParseFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if doc.Width != 320 {
		t.Fatalf("width = %v", doc.Width)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := ts.NewConfig(t, ts.WithDecodeWorkers(7), ts.WithParserDebug(true))
	cfg.Parser.CameraAliases = []string{"  Kamera "}
	p := parser.New(parser.OptionsFromConfig(cfg), nil)
	got := p.Options()
	if got.DecodeWorkers != 7 || !got.Debug {
		t.Fatalf("unexpected options %+v", got)
	}
	if !slices.Equal(got.CameraAliases, []string{"kamera"}) {
		t.Fatalf("aliases = %q", got.CameraAliases)
	}
}

func TestParseHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := parser.New(parser.DefaultOptions(), nil).Parse(ctx, mediaArchive(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
