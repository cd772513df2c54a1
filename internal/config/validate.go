package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateParser(); err != nil {
		return err
	}
	return c.validateCache()
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateParser() error {
	p := c.Parser
	if !(p.CameraCenterTolerance > 0 && p.CameraCenterTolerance <= 1) {
		return errors.New("parser.camera_center_tolerance must be in (0, 1]")
	}
	if !(p.ReferenceAlphaThreshold > 0 && p.ReferenceAlphaThreshold <= 100) {
		return errors.New("parser.reference_alpha_threshold must be in (0, 100]")
	}
	if len(p.CameraAliases) == 0 {
		return errors.New("parser.camera_aliases must contain at least one alias")
	}
	if p.DecodeWorkers < 1 {
		return errors.New("parser.decode_workers must be at least 1")
	}
	if !positiveFinite(p.DefaultWidth) || !positiveFinite(p.DefaultHeight) {
		return errors.New("parser.default_width and parser.default_height must be positive")
	}
	if !positiveFinite(p.DefaultFrameRate) {
		return errors.New("parser.default_frame_rate must be positive")
	}
	hex := strings.TrimPrefix(p.DefaultBackground, "#")
	if len(hex) != 6 {
		return fmt.Errorf("parser.default_background: %q is not a #RRGGBB color", p.DefaultBackground)
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return fmt.Errorf("parser.default_background: %q is not a #RRGGBB color", p.DefaultBackground)
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.MemoryEntries < 0 {
		return errors.New("cache.memory_entries must be zero or greater")
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Dir) == "" {
		return errors.New("cache.dir must be set when the cache is enabled")
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
