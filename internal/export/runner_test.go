package export_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tautx/internal/config"
	"tautx/internal/export"
	"tautx/internal/seriescache"
	"tautx/internal/tautulli"
	"tautx/internal/testsupport"
)

func newRunnerFixture(t *testing.T) (*testsupport.TautulliServer, *tautulli.Client) {
	t.Helper()
	server := testsupport.NewTautulliServer(t)
	client := tautulli.New(server.URL(), testsupport.APIKey, 5*time.Second)
	return server, client
}

func registerUser(server *testsupport.TautulliServer) {
	server.HandleData("get_users", []map[string]any{
		{"user_id": 9, "username": "alice", "friendly_name": "Alice"},
	})
}

func episodeRow(ratingKey, showKey int, show string, percent float64, date int64) map[string]any {
	return map[string]any{
		"media_type":             "episode",
		"rating_key":             ratingKey,
		"grandparent_rating_key": showKey,
		"grandparent_title":      show,
		"percent_complete":       percent,
		"date":                   date,
	}
}

func movieRow(ratingKey int, title string, year int, percent float64, date int64) map[string]any {
	return map[string]any{
		"media_type":       "movie",
		"rating_key":       ratingKey,
		"title":            title,
		"year":             year,
		"percent_complete": percent,
		"date":             date,
	}
}

func historyHandler(episodes, movies []map[string]any) func(url.Values) (any, error) {
	return func(query url.Values) (any, error) {
		rows := episodes
		if query.Get("media_type") == "movie" {
			rows = movies
		}
		if query.Get("start") != "0" {
			rows = nil
		}
		return map[string]any{"data": rows}, nil
	}
}

func TestRunExportsBothTypes(t *testing.T) {
	t.Parallel()

	server, client := newRunnerFixture(t)
	registerUser(server)
	server.Handle("get_history", historyHandler(
		[]map[string]any{
			episodeRow(501, 42, "The Expanse", 95, 1714000000),
			episodeRow(502, 42, "The Expanse", 40, 1714003600),
		},
		[]map[string]any{
			movieRow(77, "Heat", 1995, 97, 1714007200),
		},
	))
	server.HandleData("get_metadata", map[string]any{
		"rating_key": 42, "media_type": "show", "leaf_count": 8,
	})

	cfg := testsupport.NewConfig(t, server.URL())
	req := export.Request{
		User:             "alice",
		Mode:             config.ModeBoth,
		WatchedThreshold: cfg.Export.WatchedThreshold,
		SeriesOut:        export.SeriesOutputPath(cfg.Export.OutputDir, "alice"),
		MoviesOut:        export.MoviesOutputPath(cfg.Export.OutputDir, "alice"),
		JSONOut:          export.JSONOutputPath(cfg.Export.OutputDir, "alice"),
	}
	result, err := export.NewRunner(client, nil, nil).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Failed() {
		t.Fatalf("unexpected failure: series=%v movies=%v", result.SeriesErr, result.MoviesErr)
	}
	if result.UserID != 9 {
		t.Fatalf("unexpected user ID %d", result.UserID)
	}

	if len(result.Series) != 1 {
		t.Fatalf("expected one series row, got %d", len(result.Series))
	}
	series := result.Series[0]
	if series.EpisodesWatched != 1 || series.EpisodesPartial != 1 || series.AvailableEpisodes != 8 {
		t.Fatalf("unexpected series row: %+v", series)
	}
	if series.PercentWatched != 12.5 {
		t.Fatalf("expected 12.5 percent watched, got %v", series.PercentWatched)
	}

	if len(result.Movies) != 1 || !result.Movies[0].Watched {
		t.Fatalf("unexpected movie rows: %+v", result.Movies)
	}

	for _, path := range []string{req.SeriesOut, req.MoviesOut, req.JSONOut} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected report at %s: %v", path, err)
		}
	}
}

func TestRunOneTypeFailureDoesNotAbortOther(t *testing.T) {
	t.Parallel()

	server, client := newRunnerFixture(t)
	registerUser(server)
	server.Handle("get_history", func(query url.Values) (any, error) {
		if query.Get("media_type") == "movie" {
			return nil, errors.New("database is locked")
		}
		if query.Get("start") != "0" {
			return map[string]any{"data": []map[string]any{}}, nil
		}
		return map[string]any{"data": []map[string]any{
			episodeRow(501, 42, "The Expanse", 95, 1714000000),
		}}, nil
	})
	server.HandleData("get_metadata", map[string]any{
		"rating_key": 42, "media_type": "show", "leaf_count": 8,
	})

	dir := t.TempDir()
	req := export.Request{
		User:             "alice",
		Mode:             config.ModeBoth,
		WatchedThreshold: 85,
		SeriesOut:        filepath.Join(dir, "series.csv"),
		MoviesOut:        filepath.Join(dir, "movies.csv"),
	}
	result, err := export.NewRunner(client, nil, nil).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.SeriesErr != nil {
		t.Fatalf("series export should succeed: %v", result.SeriesErr)
	}
	if result.MoviesErr == nil {
		t.Fatal("expected movie export failure")
	}
	if !result.Failed() {
		t.Fatal("expected Failed to report the movie error")
	}
	if _, err := os.Stat(req.SeriesOut); err != nil {
		t.Fatalf("series report should exist: %v", err)
	}
	if _, err := os.Stat(req.MoviesOut); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("movie report should not exist, stat err: %v", err)
	}
}

func TestRunUnknownUserIsFatal(t *testing.T) {
	t.Parallel()

	server, client := newRunnerFixture(t)
	registerUser(server)
	server.HandleData("get_user_names", []map[string]any{})

	_, err := export.NewRunner(client, nil, nil).Run(context.Background(), export.Request{
		User: "nobody",
		Mode: config.ModeSeries,
	})
	if !errors.Is(err, tautulli.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRunUsesCachedEpisodeCounts(t *testing.T) {
	t.Parallel()

	server, client := newRunnerFixture(t)
	registerUser(server)
	server.Handle("get_history", historyHandler(
		[]map[string]any{episodeRow(501, 42, "The Expanse", 95, 1714000000)},
		nil,
	))
	server.HandleData("get_metadata", map[string]any{
		"rating_key": 42, "media_type": "show", "leaf_count": 8,
	})

	cache, err := seriescache.Open(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	runner := export.NewRunner(client, cache, nil)
	dir := t.TempDir()
	for run := 0; run < 2; run++ {
		req := export.Request{
			User:             "alice",
			Mode:             config.ModeSeries,
			WatchedThreshold: 85,
			SeriesOut:        filepath.Join(dir, fmt.Sprintf("series_%d.csv", run)),
		}
		result, err := runner.Run(context.Background(), req)
		if err != nil || result.Failed() {
			t.Fatalf("run %d: err=%v seriesErr=%v", run, err, result.SeriesErr)
		}
		if result.Series[0].AvailableEpisodes != 8 {
			t.Fatalf("run %d: expected 8 available episodes, got %d", run, result.Series[0].AvailableEpisodes)
		}
	}

	if got := len(server.Requests("get_metadata")); got != 1 {
		t.Fatalf("expected a single metadata lookup across runs, got %d", got)
	}
}

func TestRunRejectsUnknownMode(t *testing.T) {
	t.Parallel()

	_, client := newRunnerFixture(t)
	_, err := export.NewRunner(client, nil, nil).Run(context.Background(), export.Request{
		User: "alice",
		Mode: "albums",
	})
	if err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
