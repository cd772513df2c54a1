package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"

	"flareader/internal/adpcm"
	"flareader/internal/services"
)

// Source names the container a payload was decoded from.
type Source string

const (
	SourceWAV   Source = "wav"
	SourceMP3   Source = "mp3"
	SourcePCM   Source = "pcm"
	SourceADPCM Source = "adpcm"
)

// PCM is decoded interleaved 16-bit audio.
type PCM struct {
	SampleRate int     `json:"sampleRate"`
	Channels   int     `json:"channels"`
	Samples    []int16 `json:"-"`
	Source     Source  `json:"source"`
}

// Frames returns the per-channel sample count.
func (p *PCM) Frames() int {
	if p == nil || p.Channels <= 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// Duration returns the playback length.
func (p *PCM) Duration() time.Duration {
	if p == nil || p.SampleRate <= 0 {
		return 0
	}
	return time.Duration(p.Frames()) * time.Second / time.Duration(p.SampleRate)
}

var errEmpty = errors.New("empty sound payload")

// Decode sniffs the payload container and decodes it. sampleCount is the
// per-channel frame count the item declares, or zero when unknown.
func Decode(data []byte, format Format, sampleCount int) (*PCM, error) {
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrCorrupt, "audio", "decode", "", errEmpty)
	}
	if isWAV(data) {
		return decodeWAV(data)
	}
	// A frame-sync lookalike may still be an ADPCM stream, so a failed MP3
	// decode falls through.
	if isMP3(data) {
		if pcm, err := decodeMP3(data); err == nil {
			return pcm, nil
		}
	}
	if isRawPCM(data, format, sampleCount) {
		return decodeRaw(data, format), nil
	}
	if format.Channels == 0 {
		format.Channels = 1
	}
	res, err := adpcm.Decode(data, format.Channels, sampleCount)
	if err != nil {
		return nil, services.Wrap(services.ErrCorrupt, "audio", "adpcm", "", err)
	}
	if res.Frames == 0 {
		return nil, services.Wrap(services.ErrCorrupt, "audio", "adpcm", "no frames decoded", nil)
	}
	return &PCM{SampleRate: format.SampleRate, Channels: format.Channels, Samples: res.Samples, Source: SourceADPCM}, nil
}

func isWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

func isMP3(data []byte) bool {
	if len(data) >= 3 && string(data[0:3]) == "ID3" {
		return true
	}
	return len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0
}

func isRawPCM(data []byte, f Format, sampleCount int) bool {
	if sampleCount <= 0 || f.Channels <= 0 || f.BitsPerSample <= 0 {
		return false
	}
	return len(data) == sampleCount*f.Channels*(f.BitsPerSample/8)
}

func decodeRaw(data []byte, f Format) *PCM {
	return &PCM{
		SampleRate: f.SampleRate,
		Channels:   f.Channels,
		Samples:    toInt16(data, f.BitsPerSample),
		Source:     SourcePCM,
	}
}

// toInt16 widens 8-bit unsigned samples or reads 16-bit little-endian ones.
func toInt16(data []byte, bits int) []int16 {
	if bits == 8 {
		out := make([]int16, len(data))
		for i, b := range data {
			out[i] = int16(int(b)-128) << 8
		}
		return out
	}
	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out
}

func decodeMP3(data []byte) (*PCM, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, services.Wrap(services.ErrCorrupt, "audio", "mp3", "", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil && len(raw) == 0 {
		return nil, services.Wrap(services.ErrCorrupt, "audio", "mp3", "", err)
	}
	// go-mp3 always yields 16-bit little-endian stereo.
	raw = raw[:len(raw)&^3]
	if len(raw) == 0 {
		return nil, services.Wrap(services.ErrCorrupt, "audio", "mp3", "no frames decoded", nil)
	}
	return &PCM{SampleRate: dec.SampleRate(), Channels: 2, Samples: toInt16(raw, 16), Source: SourceMP3}, nil
}

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

func decodeWAV(data []byte) (*PCM, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, services.Wrap(services.ErrCorrupt, "audio", "wav", "", err)
	}
	if tag := dec.WavAudioFormat; tag != wavFormatPCM && tag != wavFormatExtensible {
		return nil, services.Wrap(services.ErrUnsupported, "audio", "wav", fmt.Sprintf("format tag %d", tag), nil)
	}
	channels, bits := int(dec.NumChans), int(dec.BitDepth)
	if channels < 1 {
		return nil, services.Wrap(services.ErrCorrupt, "audio", "wav", "zero channels", nil)
	}
	switch bits {
	case 8, 16, 24, 32:
	default:
		return nil, services.Wrap(services.ErrUnsupported, "audio", "wav", fmt.Sprintf("%d-bit samples", bits), nil)
	}

	buf, err := dec.FullPCMBuffer()
	if buf == nil || len(buf.Data) < channels {
		return nil, services.Wrap(services.ErrCorrupt, "audio", "wav", "no samples decoded", err)
	}
	// A truncated data chunk keeps the whole frames read before the cut.
	samples := make([]int16, len(buf.Data)-len(buf.Data)%channels)
	for i := range samples {
		samples[i] = narrow(buf.Data[i], bits)
	}
	return &PCM{SampleRate: int(dec.SampleRate), Channels: channels, Samples: samples, Source: SourceWAV}, nil
}

// narrow converts a decoded WAV sample to 16 bits. 8-bit WAV samples are
// unsigned; wider ones keep their top 16 bits.
func narrow(v, bits int) int16 {
	switch bits {
	case 8:
		return int16(v-128) << 8
	case 16:
		return int16(v)
	default:
		return int16(v >> (bits - 16))
	}
}

// WriteWAV encodes p as a 16-bit PCM RIFF/WAVE stream. The encoder seeks back
// to fill in chunk sizes, so w is usually a file.
func WriteWAV(w io.WriteSeeker, p *PCM) error {
	if p == nil || p.Channels <= 0 {
		return errors.New("write wav: no audio")
	}
	enc := wav.NewEncoder(w, p.SampleRate, 16, p.Channels, wavFormatPCM)
	data := make([]int, len(p.Samples))
	for i, s := range p.Samples {
		data[i] = int(s)
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: p.Channels, SampleRate: p.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}
