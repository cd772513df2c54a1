package mediacache_test

import (
	"context"
	"database/sql"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"flareader/internal/audio"
	"flareader/internal/mediacache"
	"flareader/internal/testsupport"
)

func openTestCache(t *testing.T, memory int) (*mediacache.Cache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "media.db")
	c, err := mediacache.OpenPath(context.Background(), path, memory, nil)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, path
}

func sampleImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(2, 1, color.NRGBA{B: 200, A: 128})
	return img
}

func TestKeyDependsOnKindAndContent(t *testing.T) {
	raw := []byte("payload")
	if mediacache.Key(mediacache.KindBitmap, raw) != mediacache.Key(mediacache.KindBitmap, []byte("payload")) {
		t.Fatal("expected identical payloads to share a key")
	}
	if mediacache.Key(mediacache.KindBitmap, raw) == mediacache.Key(mediacache.KindSound, raw) {
		t.Fatal("expected kind to separate keys")
	}
	if mediacache.Key(mediacache.KindBitmap, raw) == mediacache.Key(mediacache.KindBitmap, []byte("payloaD")) {
		t.Fatal("expected content to separate keys")
	}
}

func TestBitmapRoundTripThroughDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "media.db")
	c, err := mediacache.OpenPath(ctx, path, 0, nil)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	img := sampleImage()
	key := mediacache.Key(mediacache.KindBitmap, []byte("raw bitmap"))
	if err := c.Store(ctx, key, mediacache.BitmapEntry(img, "inflate")); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := mediacache.OpenPath(ctx, path, 0, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	entry, ok, err := reopened.Lookup(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Lookup = %v, %v", ok, err)
	}
	if entry.Detail != "inflate" {
		t.Fatalf("detail = %q", entry.Detail)
	}
	got, err := entry.Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if got.Bounds() != img.Bounds() {
		t.Fatalf("bounds = %v, want %v", got.Bounds(), img.Bounds())
	}
	if got.NRGBAAt(2, 1) != img.NRGBAAt(2, 1) || got.NRGBAAt(0, 0) != img.NRGBAAt(0, 0) {
		t.Fatal("pixels changed through the cache")
	}
}

func TestSoundRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := openTestCache(t, 8)
	pcm := &audio.PCM{SampleRate: 22050, Channels: 2, Samples: []int16{-32768, 32767, 0, -1}, Source: audio.SourceADPCM}
	key := mediacache.Key(mediacache.KindSound, []byte{1, 2, 3})
	if err := c.Store(ctx, key, mediacache.SoundEntry(pcm)); err != nil {
		t.Fatalf("Store: %v", err)
	}
	entry, ok, err := c.Lookup(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Lookup = %v, %v", ok, err)
	}
	got, err := entry.PCM()
	if err != nil {
		t.Fatalf("PCM: %v", err)
	}
	if got.SampleRate != 22050 || got.Channels != 2 || got.Source != audio.SourceADPCM {
		t.Fatalf("unexpected pcm header %+v", got)
	}
	for i, s := range pcm.Samples {
		if got.Samples[i] != s {
			t.Fatalf("sample %d = %d, want %d", i, got.Samples[i], s)
		}
	}
}

func TestLookupMiss(t *testing.T) {
	c, _ := openTestCache(t, 4)
	_, ok, err := c.Lookup(context.Background(), "bitmap:0:0000000000000000")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ok {
		t.Fatal("expected miss on empty cache")
	}
}

func TestStatsAndClear(t *testing.T) {
	ctx := context.Background()
	c, _ := openTestCache(t, 4)
	for i, raw := range [][]byte{[]byte("a"), []byte("b")} {
		key := mediacache.Key(mediacache.KindBitmap, raw)
		if err := c.Store(ctx, key, mediacache.BitmapEntry(sampleImage(), "image")); err != nil {
			t.Fatalf("Store %d: %v", i, err)
		}
	}
	snd := &audio.PCM{SampleRate: 44100, Channels: 1, Samples: []int16{1, 2, 3}, Source: audio.SourcePCM}
	if err := c.Store(ctx, mediacache.Key(mediacache.KindSound, []byte("c")), mediacache.SoundEntry(snd)); err != nil {
		t.Fatalf("Store sound: %v", err)
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 3 || stats.ByKind[mediacache.KindBitmap] != 2 || stats.ByKind[mediacache.KindSound] != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.RawBytes != 2*3*2*4+3*2 {
		t.Fatalf("raw bytes = %d", stats.RawBytes)
	}

	removed, err := c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed = %d, want 3", removed)
	}
	stats, err = c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats after clear: %v", err)
	}
	if stats.Entries != 0 || stats.MemoryLoaded != 0 {
		t.Fatalf("expected empty cache, got %+v", stats)
	}
}

func TestPruneRemovesStaleEntries(t *testing.T) {
	ctx := context.Background()
	c, _ := openTestCache(t, 0)
	key := mediacache.Key(mediacache.KindBitmap, []byte("old"))
	if err := c.Store(ctx, key, mediacache.BitmapEntry(sampleImage(), "image")); err != nil {
		t.Fatalf("Store: %v", err)
	}
	removed, err := c.Prune(ctx, time.Now().Add(-time.Hour))
	if err != nil || removed != 0 {
		t.Fatalf("Prune(past) = %d, %v", removed, err)
	}
	removed, err = c.Prune(ctx, time.Now().Add(time.Hour))
	if err != nil || removed != 1 {
		t.Fatalf("Prune(future) = %d, %v", removed, err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	ctx := context.Background()
	c, path := openTestCache(t, 0)
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	_, err = mediacache.OpenPath(ctx, path, 0, nil)
	if !errors.Is(err, mediacache.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestOpenFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCache())
	c, err := mediacache.Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()
	if c.Path() != cfg.CachePath() {
		t.Fatalf("path = %q, want %q", c.Path(), cfg.CachePath())
	}
}

func TestEntryShapeValidation(t *testing.T) {
	bad := mediacache.Entry{Kind: mediacache.KindBitmap, Width: 2, Height: 2, Payload: make([]byte, 3)}
	if _, err := bad.Image(); err == nil {
		t.Fatal("expected error for short bitmap payload")
	}
	odd := mediacache.Entry{Kind: mediacache.KindSound, Channels: 2, Payload: make([]byte, 6)}
	if _, err := odd.PCM(); err == nil {
		t.Fatal("expected error for partial stereo frame")
	}
}
