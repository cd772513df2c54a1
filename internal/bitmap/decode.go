package bitmap

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"flareader/internal/logging"
	"flareader/internal/services"
)

// Result is a decoded bitmap.
type Result struct {
	Image  *image.NRGBA
	Tier   Tier
	Format string
	// Header is set for lossless container payloads.
	Header *Header
	// Rows is the number of rows recovered; it is below the declared
	// height when trailing rows were lost.
	Rows int
}

// Decode converts a bitmap payload into pixels. It never panics on malformed
// input; any failure is returned as an error wrapping services.ErrCorrupt or
// services.ErrUnsupported.
func Decode(data []byte, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if IsLossless(data) {
		return decodeLossless(data, logger)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, services.Wrap(services.ErrUnsupported, "bitmap", "decode", "", err)
	}
	nrgba := ToNRGBA(img)
	return &Result{Image: nrgba, Tier: TierImage, Format: format, Rows: nrgba.Bounds().Dy()}, nil
}

func decodeLossless(data []byte, logger *slog.Logger) (*Result, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, services.Wrap(services.ErrCorrupt, "bitmap", "header", "", err)
	}
	payload := data[h.PayloadOffset:]

	var (
		pixels []byte
		tier   Tier
	)
	if h.Compressed {
		rec := Recover(payload, h.ExpectedSize(), logger)
		pixels, tier = rec.Data, rec.Tier
	} else {
		pixels, tier = payload, TierUncompressed
	}

	row := h.RowBytes()
	rows := min(h.Height, len(pixels)/row)
	if rows < 1 {
		return nil, services.Wrap(services.ErrCorrupt, "bitmap", "recover",
			fmt.Sprintf("no complete row recovered (%d of %d bytes)", len(pixels), h.ExpectedSize()), nil)
	}
	if rows < h.Height {
		logger.Debug("bitmap height adjusted to recovered rows",
			logging.Int("declared_height", h.Height),
			logging.Int("rows", rows),
			logging.String("tier", string(tier)))
	}
	return &Result{
		Image:  argbToNRGBA(pixels, h, rows),
		Tier:   tier,
		Format: "lossless",
		Header: &h,
		Rows:   rows,
	}, nil
}

// argbToNRGBA converts rows of (premultiplied when HasAlpha) ARGB pixels.
func argbToNRGBA(src []byte, h Header, rows int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, h.Width, rows))
	row := h.RowBytes()
	for y := 0; y < rows; y++ {
		in := src[y*row : y*row+h.Width*4]
		out := img.Pix[y*img.Stride : y*img.Stride+h.Width*4]
		for x := 0; x < h.Width; x++ {
			a, r, g, b := in[x*4], in[x*4+1], in[x*4+2], in[x*4+3]
			o := out[x*4 : x*4+4 : x*4+4]
			if !h.HasAlpha {
				o[0], o[1], o[2], o[3] = r, g, b, 0xFF
				continue
			}
			if a == 0 {
				o[0], o[1], o[2], o[3] = 0, 0, 0, 0
				continue
			}
			o[0], o[1], o[2], o[3] = unpremultiply(r, a), unpremultiply(g, a), unpremultiply(b, a), a
		}
	}
	return img
}

func unpremultiply(c, a byte) byte {
	v := (int(c)*255 + int(a)/2) / int(a)
	if v > 255 {
		return 255
	}
	return byte(v)
}

// ToNRGBA returns img as *image.NRGBA, converting when needed.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
