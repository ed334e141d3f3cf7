package config

import (
	"errors"
	"fmt"

	"github.com/nconklindev/xl2json/internal/converter"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExport(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateExport() error {
	if !converter.IsUsedRange(c.Export.Range) {
		if _, err := converter.ParseRange(c.Export.Range); err != nil {
			return fmt.Errorf("export.range: %w", err)
		}
	}
	if c.Export.Workers < 1 {
		return errors.New("export.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
