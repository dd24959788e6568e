package progress

import "time"

// MovieProgress is the per-movie snapshot produced by ComputeMovieProgress.
type MovieProgress struct {
	MovieID string
	Title   string
	Year    int

	Plays int
	// MaxPercent is the best effective percent across all plays; Watched
	// compares it against the threshold. AvgPercent averages the plays and
	// LastPercent is the most recent play in event order.
	MaxPercent  float64
	AvgPercent  float64
	LastPercent float64
	Watched     bool

	FirstWatched time.Time
	LastWatched  time.Time
}

type movieAccumulator struct {
	title      string
	year       int
	plays      int
	maxPercent float64
	sum        float64
	last       float64
	firstAt    time.Time
	lastAt     time.Time
}

// ComputeMovieProgress folds movie play events into per-movie watch
// statistics. A threshold of 0 marks every played movie watched; a threshold
// above 100 marks none.
func ComputeMovieProgress(events []PlayEvent, threshold float64) (map[string]MovieProgress, Stats) {
	stats := Stats{}
	accums := make(map[string]*movieAccumulator)

	for _, event := range events {
		stats.EventsSeen++
		percent, err := EffectivePercent(event)
		if err != nil {
			stats.InvalidEvents++
			continue
		}

		accum, ok := accums[event.EntityID]
		if !ok {
			accum = &movieAccumulator{title: event.Title, year: event.Year}
			accums[event.EntityID] = accum
		}
		accum.plays++
		accum.sum += percent
		accum.last = percent
		if percent > accum.maxPercent {
			accum.maxPercent = percent
		}
		if !event.PlayedAt.IsZero() {
			if accum.firstAt.IsZero() || event.PlayedAt.Before(accum.firstAt) {
				accum.firstAt = event.PlayedAt
			}
			if accum.lastAt.IsZero() || event.PlayedAt.After(accum.lastAt) {
				accum.lastAt = event.PlayedAt
			}
		}
	}

	result := make(map[string]MovieProgress, len(accums))
	for movieID, accum := range accums {
		result[movieID] = MovieProgress{
			MovieID:      movieID,
			Title:        accum.title,
			Year:         accum.year,
			Plays:        accum.plays,
			MaxPercent:   round2(accum.maxPercent),
			AvgPercent:   round2(accum.sum / float64(accum.plays)),
			LastPercent:  round2(accum.last),
			Watched:      accum.maxPercent >= threshold,
			FirstWatched: accum.firstAt,
			LastWatched:  accum.lastAt,
		}
	}
	return result, stats
}
