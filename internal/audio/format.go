package audio

import (
	"strconv"
	"strings"
)

// Format is the sample layout a sound item declares.
type Format struct {
	SampleRate    int
	BitsPerSample int
	Channels      int
}

// rateTable maps the editor's abbreviated rates to exact sample rates.
var rateTable = map[string]int{
	"5":  5512,
	"11": 11025,
	"22": 22050,
	"44": 44100,
	"48": 48000,
}

// ParseFormat reads strings such as "22kHz 16bit Stereo". Missing parts fall
// back to 44100 Hz, 16 bit, mono; ok reports whether any part was recognised.
func ParseFormat(attr string) (Format, bool) {
	f := Format{SampleRate: 44100, BitsPerSample: 16, Channels: 1}
	ok := false
	for _, field := range strings.Fields(strings.ToLower(attr)) {
		switch {
		case strings.HasSuffix(field, "khz"):
			num := strings.TrimSuffix(field, "khz")
			if rate, found := rateTable[num]; found {
				f.SampleRate, ok = rate, true
			} else if v, err := strconv.ParseFloat(num, 64); err == nil && v > 0 {
				f.SampleRate, ok = int(v*1000+0.5), true
			}
		case strings.HasSuffix(field, "bit"):
			if v, err := strconv.Atoi(strings.TrimSuffix(field, "bit")); err == nil && (v == 8 || v == 16) {
				f.BitsPerSample, ok = v, true
			}
		case field == "stereo":
			f.Channels, ok = 2, true
		case field == "mono":
			f.Channels, ok = 1, true
		}
	}
	return f, ok
}
