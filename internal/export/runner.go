package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tautx/internal/config"
	"tautx/internal/logging"
	"tautx/internal/progress"
	"tautx/internal/report"
	"tautx/internal/seriescache"
	"tautx/internal/tautulli"
)

// TautulliClient is the server surface the runner depends on. Satisfied by
// *tautulli.Client; tests substitute fakes.
type TautulliClient interface {
	ResolveUserID(ctx context.Context, name string) (int64, error)
	History(ctx context.Context, userID int64, mediaType string) ([]tautulli.HistoryRecord, error)
	AvailableEpisodeCount(ctx context.Context, showRatingKey string) (int, error)
}

// Request describes one exporter run. All fields are resolved by the caller;
// the runner applies no config defaults of its own.
type Request struct {
	User             string
	Mode             string
	WatchedThreshold float64

	// Output paths. SeriesOut and MoviesOut are consulted per the mode;
	// JSONOut is optional and empty disables the combined JSON document.
	SeriesOut string
	MoviesOut string
	JSONOut   string
}

// Result summarizes a finished run. Per-type errors are recorded here rather
// than aborting the run; Failed reports whether any export type failed.
type Result struct {
	RunID  string
	UserID int64

	Series     []report.SeriesRow
	Movies     []report.MovieRow
	SeriesPath string
	MoviesPath string
	JSONPath   string

	SeriesStats progress.Stats
	MovieStats  progress.Stats
	SeriesErr   error
	MoviesErr   error
}

// Failed reports whether any requested export type failed.
func (r *Result) Failed() bool {
	return r.SeriesErr != nil || r.MoviesErr != nil
}

// Runner executes exporter runs against one Tautulli server.
type Runner struct {
	client TautulliClient
	cache  *seriescache.Cache
	logger *slog.Logger
}

// NewRunner constructs a runner. cache may be nil to disable episode-count
// caching; logger may be nil for silent operation.
func NewRunner(client TautulliClient, cache *seriescache.Cache, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{client: client, cache: cache, logger: logger}
}

// Run performs one export. User resolution failures and an unknown mode are
// fatal; a failed export type is recorded on the result and the other type
// still runs.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	wantSeries := req.Mode == config.ModeSeries || req.Mode == config.ModeBoth
	wantMovies := req.Mode == config.ModeMovies || req.Mode == config.ModeBoth
	if !wantSeries && !wantMovies {
		return nil, fmt.Errorf("unknown export mode %q", req.Mode)
	}

	result := &Result{RunID: uuid.NewString()}
	logger := r.logger.With(
		logging.String(logging.FieldComponent, "export"),
		logging.String(logging.FieldRunID, result.RunID),
	)

	started := time.Now()
	userID, err := r.client.ResolveUserID(ctx, req.User)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	result.UserID = userID
	logger.Info("resolved user",
		logging.String("user", req.User),
		logging.Int64("user_id", userID),
		logging.Duration("elapsed", time.Since(started)))

	if wantSeries {
		result.Series, result.SeriesStats, result.SeriesErr = r.exportSeries(ctx, logger, userID, req)
		if result.SeriesErr != nil {
			logger.Error("series export failed", logging.Error(result.SeriesErr))
		} else {
			result.SeriesPath = req.SeriesOut
		}
	}
	if wantMovies {
		result.Movies, result.MovieStats, result.MoviesErr = r.exportMovies(ctx, logger, userID, req)
		if result.MoviesErr != nil {
			logger.Error("movie export failed", logging.Error(result.MoviesErr))
		} else {
			result.MoviesPath = req.MoviesOut
		}
	}

	if req.JSONOut != "" {
		doc := report.NewDocument(req.User, req.WatchedThreshold, result.Series, result.Movies)
		if err := report.WriteJSON(req.JSONOut, doc); err != nil {
			return result, fmt.Errorf("write json report: %w", err)
		}
		result.JSONPath = req.JSONOut
	}

	logger.Info("export finished",
		logging.Int("series", len(result.Series)),
		logging.Int("movies", len(result.Movies)),
		logging.Bool("failed", result.Failed()),
		logging.Duration("elapsed", time.Since(started)))
	return result, nil
}

func (r *Runner) exportSeries(ctx context.Context, logger *slog.Logger, userID int64, req Request) ([]report.SeriesRow, progress.Stats, error) {
	started := time.Now()
	records, err := r.client.History(ctx, userID, tautulli.MediaTypeEpisode)
	if err != nil {
		return nil, progress.Stats{}, fmt.Errorf("fetch episode history: %w", err)
	}
	logger.Info("fetched episode history",
		logging.Int("records", len(records)),
		logging.Duration("elapsed", time.Since(started)))

	events := eventsFromHistory(records)
	available := r.availableCounts(ctx, logger, seriesIDs(events))

	series, stats := progress.ComputeSeriesProgress(events, available, req.WatchedThreshold)
	logStats(logger, "series", stats)

	rows := report.SeriesRows(series)
	if err := report.WriteSeriesCSV(req.SeriesOut, rows); err != nil {
		return nil, stats, err
	}
	logger.Info("wrote series report",
		logging.String("path", req.SeriesOut),
		logging.Int("rows", len(rows)))
	return rows, stats, nil
}

func (r *Runner) exportMovies(ctx context.Context, logger *slog.Logger, userID int64, req Request) ([]report.MovieRow, progress.Stats, error) {
	started := time.Now()
	records, err := r.client.History(ctx, userID, tautulli.MediaTypeMovie)
	if err != nil {
		return nil, progress.Stats{}, fmt.Errorf("fetch movie history: %w", err)
	}
	logger.Info("fetched movie history",
		logging.Int("records", len(records)),
		logging.Duration("elapsed", time.Since(started)))

	movies, stats := progress.ComputeMovieProgress(eventsFromHistory(records), req.WatchedThreshold)
	logStats(logger, "movies", stats)

	rows := report.MovieRows(movies)
	if err := report.WriteMoviesCSV(req.MoviesOut, rows); err != nil {
		return nil, stats, err
	}
	logger.Info("wrote movie report",
		logging.String("path", req.MoviesOut),
		logging.Int("rows", len(rows)))
	return rows, stats, nil
}

// availableCounts resolves the library episode count for each played series,
// consulting the cache before the server. A series whose lookup fails is left
// out of the map; the aggregator then reports it as missing metadata.
func (r *Runner) availableCounts(ctx context.Context, logger *slog.Logger, ids []string) map[string]int {
	counts := make(map[string]int, len(ids))
	for _, id := range ids {
		if r.cache != nil {
			if count, ok, err := r.cache.Get(ctx, id); err == nil && ok {
				counts[id] = count
				continue
			} else if err != nil {
				logger.Warn("series cache read failed", logging.String("series_id", id), logging.Error(err))
			}
		}

		count, err := r.client.AvailableEpisodeCount(ctx, id)
		if err != nil {
			logger.Warn("episode count lookup failed", logging.String("series_id", id), logging.Error(err))
			continue
		}
		counts[id] = count

		if r.cache != nil {
			if err := r.cache.Put(ctx, id, count); err != nil {
				logger.Warn("series cache write failed", logging.String("series_id", id), logging.Error(err))
			}
		}
	}
	return counts
}

// seriesIDs collects unique series IDs in first-seen order.
func seriesIDs(events []progress.PlayEvent) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, event := range events {
		if event.EntityID == "" {
			continue
		}
		if _, ok := seen[event.EntityID]; ok {
			continue
		}
		seen[event.EntityID] = struct{}{}
		ids = append(ids, event.EntityID)
	}
	return ids
}

func logStats(logger *slog.Logger, kind string, stats progress.Stats) {
	if stats.InvalidEvents > 0 {
		logger.Warn("skipped events with no derivable percent",
			logging.String("kind", kind),
			logging.Int("skipped", stats.InvalidEvents),
			logging.Int("seen", stats.EventsSeen))
	}
	for _, id := range stats.MissingSeries {
		logger.Warn("no library metadata for series", logging.String("series_id", id))
	}
}
