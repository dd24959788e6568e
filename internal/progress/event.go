package progress

import (
	"errors"
	"time"
)

// ErrInvalidEvent marks a play event whose completion percent cannot be
// resolved: no direct percent and no usable offset/duration pair.
var ErrInvalidEvent = errors.New("play event has no derivable completion percent")

// PlayEvent is one normalized play of a movie or a series episode. Raw
// Tautulli history rows are converted to this fixed shape at the ingestion
// boundary; the aggregator never sees the dynamic API payloads.
type PlayEvent struct {
	// EntityID identifies the series (for episode plays) or the movie.
	EntityID string
	// EpisodeID identifies the episode within the series. Empty for movies.
	EpisodeID string

	// CompletionPercent is Tautulli's own 0-100 figure when reported.
	CompletionPercent *float64
	// ViewOffsetMs/DurationMs allow deriving the percent when Tautulli did
	// not report one. DurationMs must be positive to be usable.
	ViewOffsetMs *int64
	DurationMs   *int64

	// Display metadata carried through to reports.
	Title    string
	Year     int
	PlayedAt time.Time
}

// Stats reports what the aggregator had to skip or default. The caller owns
// logging these; one bad event never aborts a run.
type Stats struct {
	// EventsSeen counts every event handed to the aggregator.
	EventsSeen int
	// InvalidEvents counts events skipped because of ErrInvalidEvent.
	InvalidEvents int
	// MissingSeries lists series IDs (in first-seen order) that had plays but
	// no available-episode entry in the supplied metadata.
	MissingSeries []string
}

// EffectivePercent resolves the 0-100 completion value for a single play.
// A directly reported percent wins unchanged; otherwise the value is
// 100 * offset / duration clamped to [0, 100]. Returns ErrInvalidEvent when
// neither source is usable.
func EffectivePercent(event PlayEvent) (float64, error) {
	if event.CompletionPercent != nil {
		return *event.CompletionPercent, nil
	}
	if event.ViewOffsetMs == nil || event.DurationMs == nil || *event.DurationMs <= 0 {
		return 0, ErrInvalidEvent
	}
	percent := 100 * float64(*event.ViewOffsetMs) / float64(*event.DurationMs)
	if percent < 0 {
		return 0, nil
	}
	if percent > 100 {
		return 100, nil
	}
	return percent, nil
}

func round2(value float64) float64 {
	if value < 0 {
		return -round2(-value)
	}
	scaled := value*100 + 0.5
	return float64(int64(scaled)) / 100
}
