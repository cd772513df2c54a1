package flv

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	goflv "github.com/yutopp/go-flv"
	"github.com/yutopp/go-flv/tag"

	"flareader/internal/services"
)

// trailerSize is the PreviousTagSize field that follows every tag.
const trailerSize = 4

var errSignature = errors.New("missing FLV signature")

// Summary describes an FLV stream without decoding its frames.
type Summary struct {
	Version     uint8          `json:"version"`
	HasAudio    bool           `json:"hasAudio"`
	HasVideo    bool           `json:"hasVideo"`
	AudioTags   int            `json:"audioTags"`
	VideoTags   int            `json:"videoTags"`
	ScriptTags  int            `json:"scriptTags"`
	KeyFrames   int            `json:"keyFrames"`
	VideoCodec  string         `json:"videoCodec,omitempty"`
	AudioCodec  string         `json:"audioCodec,omitempty"`
	Width       float64        `json:"width,omitempty"`
	Height      float64        `json:"height,omitempty"`
	FrameRate   float64        `json:"frameRate,omitempty"`
	Duration    float64        `json:"duration"`
	LastTagTime uint32         `json:"lastTimestampMs"`
	Truncated   bool           `json:"truncated,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

var videoCodecs = map[byte]string{
	2: "sorenson_h263",
	3: "screen_video",
	4: "vp6",
	5: "vp6_alpha",
	6: "screen_video_v2",
	7: "avc",
}

var audioCodecs = map[byte]string{
	0:  "pcm",
	1:  "adpcm",
	2:  "mp3",
	3:  "pcm_le",
	4:  "nellymoser_16k",
	5:  "nellymoser_8k",
	6:  "nellymoser",
	7:  "g711_alaw",
	8:  "g711_mulaw",
	10: "aac",
	11: "speex",
	14: "mp3_8k",
}

// Parse walks the FLV tag stream. A stream cut off mid-tag returns the summary
// gathered so far with Truncated set; only a missing signature is an error.
func Parse(data []byte) (*Summary, error) {
	if len(data) < 3 || string(data[:3]) != "FLV" {
		return nil, services.Wrap(services.ErrUnsupported, "flv", "parse", "", errSignature)
	}
	src := bytes.NewReader(data)
	dec, err := goflv.NewDecoder(src)
	if err != nil {
		return nil, services.Wrap(services.ErrCorrupt, "flv", "header", "", err)
	}
	h := dec.Header()
	s := &Summary{
		Version:  h.Version,
		HasAudio: h.Flags&goflv.FlagsAudio != 0,
		HasVideo: h.Flags&goflv.FlagsVideo != 0,
	}

	// boundary is the offset just past the last fully read tag.
	boundary := len(data) - src.Len()
	for {
		var t tag.FlvTag
		if err := dec.Decode(&t); err != nil {
			// A clean end leaves at most the final PreviousTagSize unread.
			s.Truncated = !errors.Is(err, io.EOF) || len(data)-boundary > trailerSize
			break
		}
		s.observe(&t)
		t.Close()
		if t.Timestamp > s.LastTagTime {
			s.LastTagTime = t.Timestamp
		}
		boundary = len(data) - src.Len()
	}

	if s.Duration == 0 && s.LastTagTime > 0 {
		s.Duration = float64(s.LastTagTime) / 1000
	}
	return s, nil
}

func (s *Summary) observe(t *tag.FlvTag) {
	switch data := t.Data.(type) {
	case *tag.AudioData:
		s.AudioTags++
		if s.AudioCodec == "" {
			s.AudioCodec = codecName(audioCodecs, byte(data.SoundFormat))
		}
	case *tag.VideoData:
		s.VideoTags++
		if data.FrameType == tag.FrameTypeKeyFrame {
			s.KeyFrames++
		}
		if s.VideoCodec == "" {
			s.VideoCodec = codecName(videoCodecs, byte(data.CodecID))
		}
	case *tag.ScriptData:
		s.ScriptTags++
		if meta, ok := data.Objects["onMetaData"]; ok && len(meta) > 0 {
			s.readMetadata(meta)
		}
	}
}

func codecName(table map[byte]string, id byte) string {
	if name, ok := table[id]; ok {
		return name
	}
	return fmt.Sprintf("unknown_%d", id)
}

func (s *Summary) readMetadata(meta map[string]any) {
	s.Metadata = meta
	s.Width = number(meta["width"])
	s.Height = number(meta["height"])
	s.FrameRate = number(meta["framerate"])
	s.Duration = number(meta["duration"])
}

func number(v any) float64 {
	if f, ok := v.(float64); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return 0
}
