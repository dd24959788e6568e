package config

import (
	"os"
	"strings"
)

// normalize trims string values, expands paths, and applies environment
// fallbacks before validation runs.
func (c *Config) normalize() error {
	c.Tautulli.URL = strings.TrimRight(strings.TrimSpace(c.Tautulli.URL), "/")
	c.Tautulli.APIKey = strings.TrimSpace(c.Tautulli.APIKey)
	if c.Tautulli.APIKey == "" {
		c.Tautulli.APIKey = strings.TrimSpace(os.Getenv("TAUTULLI_API_KEY"))
	}
	if c.Tautulli.TimeoutSeconds <= 0 {
		c.Tautulli.TimeoutSeconds = defaultTimeoutSeconds
	}

	c.Export.Mode = strings.ToLower(strings.TrimSpace(c.Export.Mode))
	if c.Export.Mode == "" {
		c.Export.Mode = defaultExportMode
	}
	if strings.TrimSpace(c.Export.OutputDir) == "" {
		c.Export.OutputDir = "."
	}
	outputDir, err := expandPath(c.Export.OutputDir)
	if err != nil {
		return err
	}
	c.Export.OutputDir = outputDir

	if strings.TrimSpace(c.SeriesCache.Path) == "" {
		c.SeriesCache.Path = defaultSeriesCachePath()
	}
	cachePath, err := expandPath(c.SeriesCache.Path)
	if err != nil {
		return err
	}
	c.SeriesCache.Path = cachePath
	if c.SeriesCache.TTLHours <= 0 {
		c.SeriesCache.TTLHours = defaultCacheTTLHours
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	return nil
}
