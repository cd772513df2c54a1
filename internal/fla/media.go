package fla

import (
	"image"

	"flareader/internal/audio"
	"flareader/internal/flv"
)

// BitmapItem is a bitmap in the media library.
type BitmapItem struct {
	Name           string  `json:"name"`
	ItemID         string  `json:"itemID,omitempty"`
	Href           string  `json:"href,omitempty"`
	DataHref       string  `json:"bitmapDataHRef,omitempty"`
	SourcePath     string  `json:"sourceExternalFilepath,omitempty"`
	AllowSmoothing bool    `json:"allowSmoothing"`
	Quality        int     `json:"quality,omitempty"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	// Image is nil when the payload is missing or undecodable.
	Image *image.NRGBA `json:"-"`
	// Recovery names the decode stage that produced Image.
	Recovery string `json:"recovery,omitempty"`
}

// SoundItem is a sound in the media library.
type SoundItem struct {
	Name        string `json:"name"`
	ItemID      string `json:"itemID,omitempty"`
	Href        string `json:"href,omitempty"`
	DataHref    string `json:"soundDataHRef,omitempty"`
	Format      string `json:"format,omitempty"`
	SampleCount int    `json:"sampleCount,omitempty"`
	// Audio is nil when the payload is missing or undecodable.
	Audio *audio.PCM `json:"audio,omitempty"`
}

// VideoItem is a video in the media library.
type VideoItem struct {
	Name      string  `json:"name"`
	ItemID    string  `json:"itemID,omitempty"`
	Href      string  `json:"href,omitempty"`
	DataHref  string  `json:"videoDataHRef,omitempty"`
	VideoType string  `json:"videoType,omitempty"`
	FPS       float64 `json:"fps,omitempty"`
	Width     float64 `json:"width,omitempty"`
	Height    float64 `json:"height,omitempty"`
	Length    float64 `json:"length,omitempty"`
	// Summary is nil when the payload is missing or not FLV.
	Summary *flv.Summary `json:"summary,omitempty"`
}
