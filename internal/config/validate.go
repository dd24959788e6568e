package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Server connection settings
// are checked separately by RequireServer because CLI flags may still supply
// them.
func (c *Config) Validate() error {
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateExport() error {
	if c.Export.WatchedThreshold < 0 || c.Export.WatchedThreshold > 100 {
		return fmt.Errorf("export.watched_threshold must be between 0 and 100, got %v", c.Export.WatchedThreshold)
	}
	switch c.Export.Mode {
	case ModeSeries, ModeMovies, ModeBoth:
	default:
		return fmt.Errorf("export.mode must be one of series, movies, both; got %q", c.Export.Mode)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return errors.New("logging.format must be console or json")
	}
	return nil
}
