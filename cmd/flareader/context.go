package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"flareader/internal/config"
	"flareader/internal/logging"
	"flareader/internal/mediacache"
	"flareader/internal/parser"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.verboseFlag != nil && *c.verboseFlag {
			cfg.Parser.Debug = true
			cfg.Logging.Level = "debug"
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// session is a parser plus the media cache it holds open, if any.
type session struct {
	parser *parser.Parser
	cache  *mediacache.Cache
	logger *slog.Logger
}

func (s *session) Close() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Close()
}

// openSession builds a parser from the loaded config. A cache that fails to
// open is reported and skipped; parsing still proceeds.
func (c *commandContext) openSession(cmd *cobra.Command, useCache bool) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger()
	if err != nil {
		return nil, err
	}

	opts := parser.OptionsFromConfig(cfg)
	s := &session{logger: logger}
	if useCache && cfg.Cache.Enabled {
		cache, err := mediacache.Open(cmd.Context(), cfg, logger)
		if err != nil {
			logging.WarnWithContext(logger, "media cache unavailable; decoding without it", "cache_unavailable",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run `flareader cache clear` or check cache.dir permissions"),
				logging.String(logging.FieldImpact, "media is decoded from scratch"))
		} else {
			s.cache = cache
			opts.Cache = cache
		}
	}
	if stderr := cmd.ErrOrStderr(); isTerminal(stderr) {
		opts.Progress = func(msg string) {
			fmt.Fprintln(stderr, msg)
		}
	}
	s.parser = parser.New(opts, logger)
	return s, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
