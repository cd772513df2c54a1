package testsupport

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/flate"
)

// BitmapSpec describes a lossless bitmap container to build.
type BitmapSpec struct {
	Width, Height int
	// Stride defaults to Width*4.
	Stride       int
	HasAlpha     bool
	Uncompressed bool
	SubFormat    byte
	// Level is the flate level; zero means flate.BestCompression.
	Level int
	// StoredBlocks emits uncompressed deflate blocks regardless of Level.
	StoredBlocks bool
	// Dict, when set, compresses against a preset dictionary.
	Dict []byte
}

// LosslessHeader returns the container header for spec.
func LosslessHeader(spec BitmapSpec) []byte {
	stride := spec.Stride
	if stride == 0 {
		stride = spec.Width * 4
	}
	size := 30
	if spec.SubFormat == 2 {
		size = 32
	}
	h := make([]byte, size)
	h[0], h[1] = 0x03, 0x05
	binary.LittleEndian.PutUint16(h[2:], uint16(stride))
	binary.LittleEndian.PutUint16(h[4:], uint16(spec.Width))
	binary.LittleEndian.PutUint16(h[6:], uint16(spec.Height))
	binary.LittleEndian.PutUint32(h[8:], uint32(spec.Width*20))
	binary.LittleEndian.PutUint32(h[12:], uint32(spec.Height*20))
	if spec.HasAlpha {
		h[24] = 1
	}
	if !spec.Uncompressed {
		h[25] = 1
	}
	h[26] = spec.SubFormat
	if spec.SubFormat == 0 {
		h[28], h[29] = 0x78, 0xDA
	}
	return h
}

// LosslessBitmap builds a full container around the ARGB pixel rows.
func LosslessBitmap(t testing.TB, spec BitmapSpec, argb []byte) []byte {
	t.Helper()

	out := LosslessHeader(spec)
	if spec.Uncompressed {
		return append(out, argb...)
	}
	level := spec.Level
	switch {
	case spec.StoredBlocks:
		level = flate.NoCompression
	case level == 0:
		level = flate.BestCompression
	}
	return append(out, Deflate(t, argb, level, spec.Dict)...)
}

// Deflate raw-deflates data at the given flate level.
func Deflate(t testing.TB, data []byte, level int, dict []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	var (
		w   *flate.Writer
		err error
	)
	if dict != nil {
		w, err = flate.NewWriterDict(&buf, level, dict)
	} else {
		w, err = flate.NewWriter(&buf, level)
	}
	if err != nil {
		t.Fatalf("flate writer: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("flate write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("flate close: %v", err)
	}
	return buf.Bytes()
}

// ARGB fills a width*height buffer with one premultiplied pixel value.
func ARGB(width, height int, a, r, g, b byte) []byte {
	out := make([]byte, width*height*4)
	for i := 0; i < len(out); i += 4 {
		out[i], out[i+1], out[i+2], out[i+3] = a, r, g, b
	}
	return out
}

// NoiseARGB returns deterministic pseudo-random opaque pixels.
func NoiseARGB(width, height int, seed uint32) []byte {
	out := make([]byte, width*height*4)
	state := seed | 1
	for i := 0; i < len(out); i += 4 {
		state = state*1664525 + 1013904223
		out[i] = 0xFF
		out[i+1] = byte(state >> 24)
		out[i+2] = byte(state >> 16)
		out[i+3] = byte(state >> 8)
	}
	return out
}
