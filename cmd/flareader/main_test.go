package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"flareader/internal/testsupport"
	"flareader/internal/zipfix"
)

func sampleArchive(t *testing.T) *testsupport.Archive {
	t.Helper()
	spec := testsupport.BitmapSpec{Width: 4, Height: 2, HasAlpha: true}
	media := `<media>` +
		`<DOMBitmapItem name="art/Logo.png" bitmapDataHRef="M 1.dat"/>` +
		`<DOMSoundItem name="beep.wav" soundDataHRef="S 1.dat" format="22kHz 16bit Mono" sampleCount="4"/>` +
		`</media>`
	camera := testsupport.LayerXML(`name="Camera" visible="false"`,
		testsupport.FrameXML(`index="0"`, testsupport.SymbolInstanceXML("Cam", `tx="275" ty="200"`)))
	art := testsupport.LayerXML(`name="art"`,
		testsupport.FrameXML(`index="0" duration="12"`, testsupport.SymbolInstanceXML("Cam", "")))
	doc := testsupport.DocumentXML(`width="550" height="400" frameRate="24"`,
		media,
		testsupport.TimelinesXML(testsupport.TimelineXML("Scene 1", art, camera)))
	return testsupport.NewArchive().
		AddString("DOMDocument.xml", doc).
		AddString("LIBRARY/Cam.xml", testsupport.SymbolXML("Cam", "graphic")).
		AddStored("bin/M 1.dat", testsupport.LosslessBitmap(t, spec, testsupport.ARGB(4, 2, 0xFF, 1, 2, 3))).
		AddStored("bin/S 1.dat", []byte{1, 0, 2, 0, 3, 0, 4, 0})
}

func TestInspectPrintsSummary(t *testing.T) {
	env := setupCLITestEnv(t, false)
	path := sampleArchive(t).WriteFile(t, "movie.fla")

	out, _, err := runCLI(t, []string{"inspect", "--layers", path}, env.configPath)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	requireContains(t, out, "Stage:      550 x 400 @ 24 fps")
	requireContains(t, out, "Symbols:    1")
	requireContains(t, out, "Bitmaps:    1 (1 decoded)")
	requireContains(t, out, "Scene 1")
	requireContains(t, out, "Camera (#1)")
}

func TestInspectJSON(t *testing.T) {
	env := setupCLITestEnv(t, false)
	path := sampleArchive(t).WriteFile(t, "movie.fla")

	out, _, err := runCLI(t, []string{"inspect", "--json", path}, env.configPath)
	if err != nil {
		t.Fatalf("inspect --json: %v", err)
	}
	var report struct {
		Document struct {
			Width     float64 `json:"width"`
			Timelines []struct {
				TotalFrames      int  `json:"totalFrames"`
				CameraLayerIndex *int `json:"cameraLayerIndex"`
			} `json:"timelines"`
		} `json:"document"`
		Symbols []struct {
			Name string `json:"name"`
		} `json:"symbols"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if report.Document.Width != 550 || len(report.Document.Timelines) != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	tl := report.Document.Timelines[0]
	if tl.TotalFrames != 12 || tl.CameraLayerIndex == nil || *tl.CameraLayerIndex != 1 {
		t.Fatalf("unexpected timeline %+v", tl)
	}
	if len(report.Symbols) != 1 || report.Symbols[0].Name != "Cam" {
		t.Fatalf("unexpected symbols %+v", report.Symbols)
	}
}

func TestInspectMissingDocument(t *testing.T) {
	env := setupCLITestEnv(t, false)
	path := testsupport.NewArchive().AddString("LIBRARY/A.xml", "<DOMSymbolItem/>").WriteFile(t, "empty.fla")

	_, _, err := runCLI(t, []string{"inspect", path}, env.configPath)
	if err == nil {
		t.Fatal("expected error for archive without DOMDocument.xml")
	}
	requireContains(t, err.Error(), "DOMDocument.xml not found")
}

func TestEdgesCommandSkipsConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	out, _, err := runCLI(t, []string{"edges", "!0 0|20 0|20 20"}, filepath.Join(t.TempDir(), "missing", "config.toml"))
	if err != nil {
		t.Fatalf("edges: %v", err)
	}
	requireContains(t, out, "MoveTo")
	requireContains(t, out, "LineTo")
	requireContains(t, out, "(1, 1)")
	requireContains(t, out, "Canonical: ")
}

func TestRepairCommand(t *testing.T) {
	env := setupCLITestEnv(t, false)
	valid := sampleArchive(t).Bytes(t)

	intact := filepath.Join(env.baseDir, "intact.fla")
	if err := os.WriteFile(intact, valid, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	out, _, err := runCLI(t, []string{"repair", intact}, env.configPath)
	if err != nil {
		t.Fatalf("repair intact: %v", err)
	}
	requireContains(t, out, "nothing to repair")

	rec, err := zipfix.FindEOCD(valid)
	if err != nil {
		t.Fatalf("FindEOCD: %v", err)
	}
	damaged := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(damaged[rec.Offset+12:], rec.CDSize+99)
	broken := filepath.Join(env.baseDir, "broken.fla")
	if err := os.WriteFile(broken, damaged, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	out, _, err = runCLI(t, []string{"repair", broken}, env.configPath)
	if err != nil {
		t.Fatalf("repair damaged: %v", err)
	}
	requireContains(t, out, string(zipfix.StrategyCDSize))
	fixed, err := os.ReadFile(filepath.Join(env.baseDir, "broken.repaired.fla"))
	if err != nil {
		t.Fatalf("read repaired archive: %v", err)
	}
	if !bytes.Equal(fixed, valid) {
		t.Fatal("repaired archive differs from the original")
	}

	if _, _, err := runCLI(t, []string{"repair", broken}, env.configPath); err == nil {
		t.Fatal("expected refusal to overwrite an existing repaired archive")
	}

	// In place: the input is still mapped while its replacement is written.
	if _, _, err := runCLI(t, []string{"repair", broken, "-o", broken, "--overwrite"}, env.configPath); err != nil {
		t.Fatalf("repair in place: %v", err)
	}
	inPlace, err := os.ReadFile(broken)
	if err != nil {
		t.Fatalf("read repaired input: %v", err)
	}
	if !bytes.Equal(inPlace, valid) {
		t.Fatal("in-place repair differs from the original")
	}
}

func TestBitmapsExport(t *testing.T) {
	env := setupCLITestEnv(t, false)
	path := sampleArchive(t).WriteFile(t, "movie.fla")
	exportDir := filepath.Join(env.baseDir, "export")

	out, _, err := runCLI(t, []string{"bitmaps", "--export", exportDir, path}, env.configPath)
	if err != nil {
		t.Fatalf("bitmaps: %v", err)
	}
	requireContains(t, out, "art/Logo.png")
	requireContains(t, out, "Exported 1 of 1 bitmaps")

	f, err := os.Open(filepath.Join(exportDir, "Logo.png"))
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Fatalf("exported size %dx%d", b.Dx(), b.Dy())
	}
}

func TestSoundsExport(t *testing.T) {
	env := setupCLITestEnv(t, false)
	path := sampleArchive(t).WriteFile(t, "movie.fla")
	exportDir := filepath.Join(env.baseDir, "sounds")

	out, _, err := runCLI(t, []string{"sounds", "-e", exportDir, path}, env.configPath)
	if err != nil {
		t.Fatalf("sounds: %v", err)
	}
	requireContains(t, out, "22050")
	requireContains(t, out, "Exported 1 of 1 sounds")

	data, err := os.ReadFile(filepath.Join(exportDir, "beep.wav"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) {
		t.Fatalf("export is not a RIFF file: % x", data[:min(len(data), 12)])
	}
}

func TestCacheCommands(t *testing.T) {
	env := setupCLITestEnv(t, true)
	path := sampleArchive(t).WriteFile(t, "movie.fla")

	if _, _, err := runCLI(t, []string{"inspect", path}, env.configPath); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	out, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Entries: 2")
	requireContains(t, out, "bitmap")

	out, _, err = runCLI(t, []string{"cache", "prune", "--older-than", "1h"}, env.configPath)
	if err != nil {
		t.Fatalf("cache prune: %v", err)
	}
	requireContains(t, out, "No cache entries pruned")

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Removed 2 cache entries")
}

func TestCacheCommandsWhenDisabled(t *testing.T) {
	env := setupCLITestEnv(t, false)
	out, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Media cache is disabled")
}
