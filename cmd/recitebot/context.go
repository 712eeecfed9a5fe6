package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"recitebot/internal/config"
	"recitebot/internal/library"
	"recitebot/internal/logging"
	"recitebot/internal/review"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	log        *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configFlagValue())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// logger writes to the log directory only so command output stays clean.
func (c *commandContext) logger() *slog.Logger {
	c.loggerOnce.Do(func() {
		c.log = logging.NewNop()
		cfg, err := c.ensureConfig()
		if err != nil {
			return
		}
		if logger, err := logging.NewFileOnly(cfg); err == nil {
			c.log = logging.NewComponentLogger(logger, "cli")
		}
	})
	return c.log
}

func (c *commandContext) openLibrary() (*library.Library, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	lib, err := library.Open(cfg.Paths.BooksDir, c.logger())
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}
	return lib, nil
}

func (c *commandContext) withReviews(fn func(*review.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := review.Open(cfg.ReviewDBPath(),
		review.WithDefaultStrategy(cfg.Review.DefaultStrategy),
		review.WithLogger(c.logger()),
	)
	if err != nil {
		return fmt.Errorf("open recite list: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
