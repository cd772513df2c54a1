package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeLogging()
	c.normalizeParser()
	return c.normalizeCache()
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.File != "" {
		if expanded, err := expandPath(c.Logging.File); err == nil {
			c.Logging.File = expanded
		}
	}
}

func (c *Config) normalizeParser() {
	aliases := make([]string, 0, len(c.Parser.CameraAliases))
	seen := make(map[string]struct{}, len(c.Parser.CameraAliases))
	for _, alias := range c.Parser.CameraAliases {
		alias = strings.ToLower(strings.TrimSpace(alias))
		if alias == "" {
			continue
		}
		if _, ok := seen[alias]; ok {
			continue
		}
		seen[alias] = struct{}{}
		aliases = append(aliases, alias)
	}
	c.Parser.CameraAliases = aliases

	c.Parser.DefaultBackground = strings.TrimSpace(c.Parser.DefaultBackground)
	if c.Parser.DefaultBackground == "" {
		c.Parser.DefaultBackground = defaultBackground
	}
	if !strings.HasPrefix(c.Parser.DefaultBackground, "#") {
		c.Parser.DefaultBackground = "#" + c.Parser.DefaultBackground
	}
	c.Parser.DefaultBackground = strings.ToUpper(c.Parser.DefaultBackground)
}

func (c *Config) normalizeCache() error {
	if value, ok := os.LookupEnv("FLAREADER_CACHE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Cache.Dir = value
	}
	if strings.TrimSpace(c.Cache.Dir) == "" {
		c.Cache.Dir = defaultCacheDir()
	}
	var err error
	if c.Cache.Dir, err = expandPath(c.Cache.Dir); err != nil {
		return fmt.Errorf("cache.dir: %w", err)
	}
	return nil
}
