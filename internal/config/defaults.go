package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultTimeoutSeconds   = 30
	defaultWatchedThreshold = 85.0
	defaultExportMode       = ModeBoth
	defaultCacheTTLHours    = 24 * 7
	defaultLogLevel         = "info"
	defaultLogFormat        = "console"
)

// Export modes accepted by [export] mode and the --export flag.
const (
	ModeSeries = "series"
	ModeMovies = "movies"
	ModeBoth   = "both"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Tautulli: Tautulli{
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Export: Export{
			WatchedThreshold: defaultWatchedThreshold,
			Mode:             defaultExportMode,
			OutputDir:        ".",
		},
		SeriesCache: SeriesCache{
			Path:     defaultSeriesCachePath(),
			TTLHours: defaultCacheTTLHours,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

func defaultSeriesCachePath() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "tautx", "series_cache.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/tautx/series_cache.db"
	}
	return filepath.Join(home, ".cache", "tautx", "series_cache.db")
}
