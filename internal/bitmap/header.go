package bitmap

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	headerSizeFormat0 = 30
	headerSizeFormat2 = 32
)

// Marker is the two leading bytes of a lossless bitmap container.
var Marker = [2]byte{0x03, 0x05}

// ErrHeader reports a missing or inconsistent container header.
var ErrHeader = errors.New("invalid bitmap header")

// Header is the fixed-layout prefix of a lossless bitmap payload.
type Header struct {
	Stride        int
	Width         int
	Height        int
	HasAlpha      bool
	Compressed    bool
	SubFormat     byte
	Aux           byte
	PayloadOffset int
}

// IsLossless reports whether data starts with the lossless container marker.
func IsLossless(data []byte) bool {
	return len(data) >= 2 && data[0] == Marker[0] && data[1] == Marker[1]
}

// ParseHeader decodes the container header.
func ParseHeader(data []byte) (Header, error) {
	if !IsLossless(data) {
		return Header{}, fmt.Errorf("%w: missing 0x0503 marker", ErrHeader)
	}
	if len(data) < headerSizeFormat0 {
		return Header{}, fmt.Errorf("%w: %d bytes is shorter than the header", ErrHeader, len(data))
	}
	h := Header{
		Stride:     int(binary.LittleEndian.Uint16(data[2:])),
		Width:      int(binary.LittleEndian.Uint16(data[4:])),
		Height:     int(binary.LittleEndian.Uint16(data[6:])),
		HasAlpha:   data[24] != 0,
		Compressed: data[25] != 0,
		SubFormat:  data[26],
		Aux:        data[27],
	}
	switch h.SubFormat {
	case 0:
		h.PayloadOffset = headerSizeFormat0
	case 2:
		h.PayloadOffset = headerSizeFormat2
	default:
		return Header{}, fmt.Errorf("%w: unknown sub-format %d", ErrHeader, h.SubFormat)
	}
	if len(data) < h.PayloadOffset {
		return Header{}, fmt.Errorf("%w: %d bytes is shorter than the header", ErrHeader, len(data))
	}
	if h.Width == 0 || h.Height == 0 {
		return Header{}, fmt.Errorf("%w: zero dimension %dx%d", ErrHeader, h.Width, h.Height)
	}
	return h, nil
}

// RowBytes returns the stride used to slice decoded rows: the declared
// stride when it can hold a full ARGB row, otherwise width*4.
func (h Header) RowBytes() int {
	if h.Stride >= h.Width*4 {
		return h.Stride
	}
	return h.Width * 4
}

// ExpectedSize is the byte length of a complete pixel buffer.
func (h Header) ExpectedSize() int {
	return h.RowBytes() * h.Height
}
