package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/nconklindev/xl2json/internal/config"
	"github.com/nconklindev/xl2json/internal/logging"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		if c.logFormatFlag != nil && strings.TrimSpace(*c.logFormatFlag) != "" {
			cfg.Logging.Format = strings.ToLower(strings.TrimSpace(*c.logFormatFlag))
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// logger builds a logger for one command run. console may be nil when the
// terminal is owned by the interactive UI; consoleLevel, when set, raises
// the console threshold without affecting the log file.
func (c *commandContext) logger(console io.Writer, consoleLevel string) (*slog.Logger, func() error, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	opts := logging.OptionsFromConfig(cfg, console)
	opts.ConsoleLevel = consoleLevel
	logger, closeFn, err := logging.New(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("init logging: %w", err)
	}
	return logger, closeFn, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
