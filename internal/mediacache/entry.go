package mediacache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"

	"github.com/cespare/xxhash/v2"

	"flareader/internal/audio"
)

// Kind separates bitmap and sound entries sharing one table.
type Kind string

const (
	KindBitmap Kind = "bitmap"
	KindSound  Kind = "sound"
)

// Entry is one decoded media payload. Bitmap entries carry Width, Height and
// tightly packed NRGBA pixels; sound entries carry SampleRate, Channels and
// little-endian int16 samples. Detail records the recovery tier or audio
// container the payload came from.
type Entry struct {
	Kind       Kind
	Width      int
	Height     int
	SampleRate int
	Channels   int
	Detail     string
	Payload    []byte
}

var errEntryShape = errors.New("cached entry does not match its declared shape")

// Key derives the cache key for a raw archive payload.
func Key(kind Kind, raw []byte) string {
	return fmt.Sprintf("%s:%d:%016x", kind, len(raw), xxhash.Sum64(raw))
}

// BitmapEntry captures img for caching.
func BitmapEntry(img *image.NRGBA, detail string) Entry {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, 0, w*h*4)
	for y := 0; y < h; y++ {
		start := img.PixOffset(b.Min.X, b.Min.Y+y)
		pix = append(pix, img.Pix[start:start+w*4]...)
	}
	return Entry{Kind: KindBitmap, Width: w, Height: h, Detail: detail, Payload: pix}
}

// Image rebuilds the cached bitmap.
func (e Entry) Image() (*image.NRGBA, error) {
	if e.Kind != KindBitmap || e.Width <= 0 || e.Height <= 0 || len(e.Payload) != e.Width*e.Height*4 {
		return nil, fmt.Errorf("%w: %s %dx%d with %d bytes", errEntryShape, e.Kind, e.Width, e.Height, len(e.Payload))
	}
	img := image.NewNRGBA(image.Rect(0, 0, e.Width, e.Height))
	copy(img.Pix, e.Payload)
	return img, nil
}

// SoundEntry captures p for caching.
func SoundEntry(p *audio.PCM) Entry {
	buf := make([]byte, len(p.Samples)*2)
	for i, s := range p.Samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return Entry{
		Kind:       KindSound,
		SampleRate: p.SampleRate,
		Channels:   p.Channels,
		Detail:     string(p.Source),
		Payload:    buf,
	}
}

// PCM rebuilds the cached sound.
func (e Entry) PCM() (*audio.PCM, error) {
	if e.Kind != KindSound || e.Channels <= 0 || len(e.Payload)%(2*e.Channels) != 0 {
		return nil, fmt.Errorf("%w: %s with %d channels and %d bytes", errEntryShape, e.Kind, e.Channels, len(e.Payload))
	}
	samples := make([]int16, len(e.Payload)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(e.Payload[i*2:]))
	}
	return &audio.PCM{
		SampleRate: e.SampleRate,
		Channels:   e.Channels,
		Samples:    samples,
		Source:     audio.Source(e.Detail),
	}, nil
}
