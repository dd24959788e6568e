package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tautx/internal/testsupport"
)

type cliTestEnv struct {
	server     *testsupport.TautulliServer
	configPath string
	outputDir  string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	t.Setenv("TAUTULLI_API_KEY", "")

	server := testsupport.NewTautulliServer(t)
	base := t.TempDir()
	outputDir := filepath.Join(base, "reports")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		t.Fatalf("create output dir: %v", err)
	}

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[tautulli]
url = %q
api_key = %q

[export]
output_dir = %q

[series_cache]
enabled = false
`, server.URL(), testsupport.APIKey, outputDir)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{server: server, configPath: configPath, outputDir: outputDir}
}

func runCLI(t *testing.T, configPath string, args []string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got %q", needle, haystack)
	}
}

func registerExportHandlers(env *cliTestEnv) {
	env.server.HandleData("get_users", []map[string]any{
		{"user_id": 9, "username": "alice", "friendly_name": "Alice", "is_active": 1},
	})
	env.server.Handle("get_history", func(query url.Values) (any, error) {
		if query.Get("start") != "0" {
			return map[string]any{"data": []map[string]any{}}, nil
		}
		if query.Get("media_type") == "movie" {
			return map[string]any{"data": []map[string]any{
				{"media_type": "movie", "rating_key": 77, "title": "Heat", "year": 1995, "percent_complete": 97, "date": 1714007200},
			}}, nil
		}
		return map[string]any{"data": []map[string]any{
			{"media_type": "episode", "rating_key": 501, "grandparent_rating_key": 42, "grandparent_title": "The Expanse", "percent_complete": 95, "date": 1714000000},
		}}, nil
	})
	env.server.HandleData("get_metadata", map[string]any{
		"rating_key": 42, "media_type": "show", "leaf_count": 8,
	})
}

func TestCLIExportWritesDefaultReports(t *testing.T) {
	env := setupCLITestEnv(t)
	registerExportHandlers(env)

	out, _, err := runCLI(t, env.configPath, []string{"export", "--user", "alice"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	requireContains(t, out, "Wrote 1 series to")
	requireContains(t, out, "Wrote 1 movies to")

	seriesPath := filepath.Join(env.outputDir, "watched_series_alice.csv")
	moviesPath := filepath.Join(env.outputDir, "watched_movies_alice.csv")
	for _, path := range []string{seriesPath, moviesPath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected report at %s: %v", path, err)
		}
	}
}

func TestCLIExportJSONAndExplicitPaths(t *testing.T) {
	env := setupCLITestEnv(t)
	registerExportHandlers(env)

	dir := t.TempDir()
	seriesPath := filepath.Join(dir, "s.csv")
	moviesPath := filepath.Join(dir, "m.csv")
	jsonPath := filepath.Join(dir, "combined.json")

	out, _, err := runCLI(t, env.configPath, []string{
		"export", "--user", "alice",
		"--out-series", seriesPath,
		"--out-movies", moviesPath,
		"--json", jsonPath,
		"--watched-threshold", "90",
	})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	requireContains(t, out, "combined.json")

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read json report: %v", err)
	}
	var doc struct {
		User             string  `json:"user"`
		WatchedThreshold float64 `json:"watched_threshold"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode json report: %v", err)
	}
	if doc.User != "alice" || doc.WatchedThreshold != 90 {
		t.Fatalf("unexpected document metadata: %+v", doc)
	}
}

func TestCLIExportSeriesOnlyMode(t *testing.T) {
	env := setupCLITestEnv(t)
	registerExportHandlers(env)

	out, _, err := runCLI(t, env.configPath, []string{"export", "--user", "alice", "--export", "series"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	requireContains(t, out, "Wrote 1 series to")
	if strings.Contains(out, "movies") {
		t.Fatalf("series-only export mentioned movies: %q", out)
	}
	if _, err := os.Stat(filepath.Join(env.outputDir, "watched_movies_alice.csv")); err == nil {
		t.Fatal("movie report should not exist in series-only mode")
	}
}

func TestCLIExportRejectsBadFlags(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, env.configPath, []string{"export", "--user", "alice", "--export", "albums"}); err == nil {
		t.Fatal("expected error for unknown export mode")
	}
	if _, _, err := runCLI(t, env.configPath, []string{"export", "--user", "alice", "--watched-threshold", "150"}); err == nil {
		t.Fatal("expected error for out-of-range threshold")
	}
	if _, _, err := runCLI(t, env.configPath, []string{"export"}); err == nil {
		t.Fatal("expected error when --user is missing")
	}
}

func TestCLIExportFailsWithoutServerSettings(t *testing.T) {
	t.Setenv("TAUTULLI_API_KEY", "")
	missing := filepath.Join(t.TempDir(), "nope.toml")
	_, _, err := runCLI(t, missing, []string{"export", "--user", "alice"})
	if err == nil {
		t.Fatal("expected error without url/apikey")
	}
	if !strings.Contains(err.Error(), "tautulli.url") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCLIUsersJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	env.server.HandleData("get_users", []map[string]any{
		{"user_id": 9, "username": "alice", "friendly_name": "Alice", "is_active": 1},
		{"user_id": 10, "username": "bob", "friendly_name": "Bob", "is_active": 0},
	})

	out, _, err := runCLI(t, env.configPath, []string{"users", "--json"})
	if err != nil {
		t.Fatalf("users --json: %v", err)
	}
	var users []struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal([]byte(out), &users); err != nil {
		t.Fatalf("decode users JSON: %v\noutput: %q", err, out)
	}
	if len(users) != 2 || users[0].Username != "alice" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestCLIPing(t *testing.T) {
	env := setupCLITestEnv(t)
	env.server.HandleData("arnold", "I need your clothes, your boots and your motorcycle.")

	out, _, err := runCLI(t, env.configPath, []string{"ping"})
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	requireContains(t, out, "is reachable")

	if _, _, err := runCLI(t, env.configPath, []string{"ping", "--apikey", "wrong"}); err == nil {
		t.Fatal("expected ping failure with bad apikey")
	}
}

func TestCLIConfigInitAndShow(t *testing.T) {
	t.Setenv("TAUTULLI_API_KEY", "")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, "", []string{"config", "init", "--path", target})
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, "", []string{"config", "init", "--path", target}); err == nil {
		t.Fatal("expected error when config already exists")
	}

	env := setupCLITestEnv(t)
	out, _, err = runCLI(t, env.configPath, []string{"config", "show"})
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[tautulli]")
	requireContains(t, out, "<redacted>")
	if strings.Contains(out, testsupport.APIKey) {
		t.Fatalf("config show leaked the API key: %q", out)
	}
}
