package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Tautulli contains connection settings for the Tautulli server.
type Tautulli struct {
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Export contains defaults for the export operation. All of these can be
// overridden per run via CLI flags.
type Export struct {
	// WatchedThreshold is the completion percent at or above which a play
	// marks its episode or movie as watched. Applied uniformly to both
	// export types.
	WatchedThreshold float64 `toml:"watched_threshold"`
	// Mode selects what to export: series, movies, or both.
	Mode string `toml:"mode"`
	// OutputDir receives report files when explicit paths are not given.
	OutputDir string `toml:"output_dir"`
}

// SeriesCache contains configuration for the available-episode-count cache.
type SeriesCache struct {
	Enabled  bool   `toml:"enabled"` // Default: false
	Path     string `toml:"path"`    // Default: ~/.cache/tautx/series_cache.db
	TTLHours int    `toml:"ttl_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for tautx.
//
// Configuration sections by subsystem:
//   - Tautulli: server URL, API key, request timeout
//   - Export: watched threshold, export mode, output directory
//   - SeriesCache: local cache of per-series available episode counts
//   - Logging: log level and format
type Config struct {
	Tautulli    Tautulli    `toml:"tautulli"`
	Export      Export      `toml:"export"`
	SeriesCache SeriesCache `toml:"series_cache"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tautx/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A missing file is not
// an error; defaults apply and exists reports false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tautx.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// RequireServer reports a configuration error when the Tautulli connection
// settings are incomplete. Called by commands that talk to the server, after
// CLI flag overrides have been applied.
func (c *Config) RequireServer() error {
	if strings.TrimSpace(c.Tautulli.URL) == "" {
		return errors.New("tautulli.url is required (set it in the config file or pass --url)")
	}
	if strings.TrimSpace(c.Tautulli.APIKey) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/tautx/config.toml"
		}
		return fmt.Errorf("tautulli.api_key is required. Set TAUTULLI_API_KEY, pass --apikey, or edit %s (create with 'tautx config init')", defaultPath)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
