package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mashup/internal/config"
	"mashup/internal/jobs"
	"mashup/internal/logging"
	"mashup/internal/workflow"
)

// commandContext is shared by every subcommand. Flags bind straight into
// it; the config is loaded at most once per invocation.
type commandContext struct {
	configPath string
	verbose    bool

	load   sync.Once
	cfg    *config.Config
	cfgErr error
}

// newRunner builds the pipeline; tests swap in fakes.
var newRunner = func(cfg *config.Config, logger *slog.Logger) jobs.Runner {
	return workflow.NewDefault(cfg, logger)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.load.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configPath))
		if err == nil {
			err = cfg.EnsureDirectories()
		}
		if err != nil {
			c.cfgErr = err
			return
		}
		c.cfg = cfg
	})
	return c.cfg, c.cfgErr
}

// cliLogger keeps stderr quiet (warnings only) so progress lines stay
// readable; --verbose restores the configured level.
func (c *commandContext) cliLogger(cfg *config.Config) (*slog.Logger, error) {
	opts := logging.Options{Level: "warn", Format: cfg.Logging.Format}
	if c.verbose {
		opts.Level = cfg.Logging.Level
	}
	return logging.New(opts)
}

const skipConfigAnnotation = "skipConfigLoad"

func shouldSkipConfig(cmd *cobra.Command) bool {
	for ; cmd != nil; cmd = cmd.Parent() {
		if cmd.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
