package testsupport

import (
	"path/filepath"
	"testing"

	"tautx/internal/config"
)

// NewConfig returns defaults pointed at temp directories, wired to the given
// fake server URL and API key.
func NewConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Tautulli.URL = serverURL
	cfg.Tautulli.APIKey = APIKey
	cfg.Export.OutputDir = t.TempDir()
	cfg.SeriesCache.Path = filepath.Join(t.TempDir(), "series_cache.db")
	return &cfg
}
