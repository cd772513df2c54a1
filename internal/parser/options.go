package parser

import (
	"context"
	"strings"

	"flareader/internal/config"
	"flareader/internal/mediacache"
)

// MediaCache stores decoded media between parses. *mediacache.Cache
// satisfies it.
type MediaCache interface {
	Lookup(ctx context.Context, key string) (mediacache.Entry, bool, error)
	Store(ctx context.Context, key string, e mediacache.Entry) error
}

// Options tunes a Parser. Zero fields take the values of DefaultOptions.
type Options struct {
	// Debug lets debug-level records through the parser's logger.
	Debug bool
	// CameraCenterTolerance is the fraction of half the stage size a camera
	// symbol's pivot may sit from the stage center.
	CameraCenterTolerance float64
	// ReferenceAlphaThreshold is the opacity percentage below which a
	// transparent layer is reference-only.
	ReferenceAlphaThreshold float64
	CameraAliases           []string
	DecodeWorkers           int
	DefaultWidth            float64
	DefaultHeight           float64
	DefaultFrameRate        float64
	DefaultBackground       string
	// Cache serves and stores decoded media when set.
	Cache MediaCache
	// Progress receives human-readable status messages. The text is not a
	// stable interface.
	Progress func(message string)
}

// DefaultOptions returns the repository defaults.
func DefaultOptions() Options {
	cfg := config.Default()
	return OptionsFromConfig(&cfg)
}

// OptionsFromConfig copies the parser section of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	p := cfg.Parser
	return Options{
		Debug:                   p.Debug,
		CameraCenterTolerance:   p.CameraCenterTolerance,
		ReferenceAlphaThreshold: p.ReferenceAlphaThreshold,
		CameraAliases:           append([]string(nil), p.CameraAliases...),
		DecodeWorkers:           p.DecodeWorkers,
		DefaultWidth:            p.DefaultWidth,
		DefaultHeight:           p.DefaultHeight,
		DefaultFrameRate:        p.DefaultFrameRate,
		DefaultBackground:       p.DefaultBackground,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.CameraCenterTolerance <= 0 {
		o.CameraCenterTolerance = def.CameraCenterTolerance
	}
	if o.ReferenceAlphaThreshold <= 0 {
		o.ReferenceAlphaThreshold = def.ReferenceAlphaThreshold
	}
	if len(o.CameraAliases) == 0 {
		o.CameraAliases = def.CameraAliases
	}
	aliases := make([]string, 0, len(o.CameraAliases))
	for _, a := range o.CameraAliases {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			aliases = append(aliases, a)
		}
	}
	o.CameraAliases = aliases
	if o.DecodeWorkers < 1 {
		o.DecodeWorkers = def.DecodeWorkers
	}
	if o.DefaultWidth <= 0 {
		o.DefaultWidth = def.DefaultWidth
	}
	if o.DefaultHeight <= 0 {
		o.DefaultHeight = def.DefaultHeight
	}
	if o.DefaultFrameRate <= 0 {
		o.DefaultFrameRate = def.DefaultFrameRate
	}
	if strings.TrimSpace(o.DefaultBackground) == "" {
		o.DefaultBackground = def.DefaultBackground
	}
	return o
}
