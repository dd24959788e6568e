package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tautx/internal/config"
	"tautx/internal/export"
	"tautx/internal/logging"
	"tautx/internal/seriescache"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		urlFlag       string
		apiKeyFlag    string
		userFlag      string
		modeFlag      string
		thresholdFlag float64
		outSeriesFlag string
		outMoviesFlag string
		jsonFlag      string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export one user's watch history into completion reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			applyServerFlags(cfg, urlFlag, apiKeyFlag)
			if cmd.Flags().Changed("export") {
				cfg.Export.Mode = strings.ToLower(strings.TrimSpace(modeFlag))
			}
			if cmd.Flags().Changed("watched-threshold") {
				cfg.Export.WatchedThreshold = thresholdFlag
			}
			if err := validateExportOverrides(cfg); err != nil {
				return err
			}
			if err := cfg.RequireServer(); err != nil {
				return err
			}

			user := strings.TrimSpace(userFlag)
			if user == "" {
				return errors.New("--user is required")
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			req := export.Request{
				User:             user,
				Mode:             cfg.Export.Mode,
				WatchedThreshold: cfg.Export.WatchedThreshold,
				SeriesOut:        outSeriesFlag,
				MoviesOut:        outMoviesFlag,
				JSONOut:          jsonFlag,
			}
			if req.SeriesOut == "" {
				req.SeriesOut = export.SeriesOutputPath(cfg.Export.OutputDir, user)
			}
			if req.MoviesOut == "" {
				req.MoviesOut = export.MoviesOutputPath(cfg.Export.OutputDir, user)
			}

			cache := openSeriesCache(cfg, logger)
			if cache != nil {
				defer cache.Close()
			}

			result, err := export.NewRunner(ctx.newClient(cfg), cache, logger).Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.SeriesPath != "" {
				fmt.Fprintf(out, "Wrote %d series to %s\n", len(result.Series), result.SeriesPath)
			}
			if result.MoviesPath != "" {
				fmt.Fprintf(out, "Wrote %d movies to %s\n", len(result.Movies), result.MoviesPath)
			}
			if result.JSONPath != "" {
				fmt.Fprintf(out, "Wrote combined report to %s\n", result.JSONPath)
			}

			if result.Failed() {
				return errors.Join(result.SeriesErr, result.MoviesErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&urlFlag, "url", "", "Tautulli base URL (overrides config)")
	cmd.Flags().StringVar(&apiKeyFlag, "apikey", "", "Tautulli API key (overrides config)")
	cmd.Flags().StringVarP(&userFlag, "user", "u", "", "Username or friendly name to export")
	cmd.Flags().StringVar(&modeFlag, "export", "", "What to export: series, movies, or both")
	cmd.Flags().Float64Var(&thresholdFlag, "watched-threshold", 85, "Completion percent that counts as watched (0-100)")
	cmd.Flags().StringVar(&outSeriesFlag, "out-series", "", "Series report path")
	cmd.Flags().StringVar(&outMoviesFlag, "out-movies", "", "Movie report path")
	cmd.Flags().StringVar(&jsonFlag, "json", "", "Combined JSON report path")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func applyServerFlags(cfg *config.Config, url, apiKey string) {
	if trimmed := strings.TrimSpace(url); trimmed != "" {
		cfg.Tautulli.URL = strings.TrimRight(trimmed, "/")
	}
	if trimmed := strings.TrimSpace(apiKey); trimmed != "" {
		cfg.Tautulli.APIKey = trimmed
	}
}

// validateExportOverrides re-checks the export section after flag overrides;
// config.Load validated only the file values.
func validateExportOverrides(cfg *config.Config) error {
	if cfg.Export.WatchedThreshold < 0 || cfg.Export.WatchedThreshold > 100 {
		return fmt.Errorf("watched threshold must be between 0 and 100, got %v", cfg.Export.WatchedThreshold)
	}
	switch cfg.Export.Mode {
	case config.ModeSeries, config.ModeMovies, config.ModeBoth:
		return nil
	default:
		return fmt.Errorf("unknown export mode %q (expected series, movies, or both)", cfg.Export.Mode)
	}
}

// openSeriesCache opens the configured episode-count cache. Cache problems
// never block an export; they degrade to direct server lookups.
func openSeriesCache(cfg *config.Config, logger *slog.Logger) *seriescache.Cache {
	if !cfg.SeriesCache.Enabled {
		return nil
	}
	ttl := time.Duration(cfg.SeriesCache.TTLHours) * time.Hour
	cache, err := seriescache.Open(cfg.SeriesCache.Path, ttl)
	if err != nil {
		logger.Warn("series cache unavailable, continuing without it",
			logging.String("path", cfg.SeriesCache.Path),
			logging.Error(err))
		return nil
	}
	return cache
}
