package progress

import "time"

// SeriesProgress is the per-series snapshot produced by
// ComputeSeriesProgress. Values are final; callers must not mutate the maps.
type SeriesProgress struct {
	SeriesID string
	Title    string

	// WatchedEpisodeIDs holds episodes whose best play reached the threshold.
	WatchedEpisodeIDs map[string]struct{}
	// PartialEpisodeIDs holds episodes that were played but never reached the
	// threshold. Disjoint from WatchedEpisodeIDs.
	PartialEpisodeIDs map[string]struct{}

	// AvailableEpisodes comes from library metadata, not from play history. A
	// series with unplayed episodes therefore stays below 100%.
	AvailableEpisodes int
	// PercentWatched is 100 * watched / available, 0 when nothing is
	// available, rounded to two decimals.
	PercentWatched float64

	// AvgPlayPercent averages the effective percent over all valid plays.
	AvgPlayPercent float64
	Plays          int

	FirstWatched time.Time
	LastWatched  time.Time
}

type seriesAccumulator struct {
	title       string
	bestPercent map[string]float64
	percentSum  float64
	plays       int
	first       time.Time
	last        time.Time
}

// ComputeSeriesProgress folds episode play events into per-series watch
// statistics. availableBySeries supplies the total episode count per series
// from library metadata; series absent from it are reported with zero
// available episodes and listed in Stats.MissingSeries.
func ComputeSeriesProgress(events []PlayEvent, availableBySeries map[string]int, threshold float64) (map[string]SeriesProgress, Stats) {
	stats := Stats{}
	accums := make(map[string]*seriesAccumulator)
	order := make([]string, 0)

	for _, event := range events {
		stats.EventsSeen++
		percent, err := EffectivePercent(event)
		if err != nil {
			stats.InvalidEvents++
			continue
		}

		accum, ok := accums[event.EntityID]
		if !ok {
			accum = &seriesAccumulator{
				title:       event.Title,
				bestPercent: make(map[string]float64),
			}
			accums[event.EntityID] = accum
			order = append(order, event.EntityID)
		}
		if accum.title == "" {
			accum.title = event.Title
		}

		accum.percentSum += percent
		accum.plays++
		if event.EpisodeID != "" {
			if best, seen := accum.bestPercent[event.EpisodeID]; !seen || percent > best {
				accum.bestPercent[event.EpisodeID] = percent
			}
		}
		accum.observeTime(event.PlayedAt)
	}

	result := make(map[string]SeriesProgress, len(accums))
	for _, seriesID := range order {
		accum := accums[seriesID]
		available, known := availableBySeries[seriesID]
		if !known {
			stats.MissingSeries = append(stats.MissingSeries, seriesID)
		}
		result[seriesID] = accum.finalize(seriesID, available, threshold)
	}
	return result, stats
}

func (a *seriesAccumulator) observeTime(at time.Time) {
	if at.IsZero() {
		return
	}
	if a.first.IsZero() || at.Before(a.first) {
		a.first = at
	}
	if a.last.IsZero() || at.After(a.last) {
		a.last = at
	}
}

func (a *seriesAccumulator) finalize(seriesID string, available int, threshold float64) SeriesProgress {
	watched := make(map[string]struct{})
	partial := make(map[string]struct{})
	for episodeID, best := range a.bestPercent {
		if best >= threshold {
			watched[episodeID] = struct{}{}
		} else {
			partial[episodeID] = struct{}{}
		}
	}

	percentWatched := 0.0
	if available > 0 {
		percentWatched = round2(100 * float64(len(watched)) / float64(available))
	}
	avg := 0.0
	if a.plays > 0 {
		avg = round2(a.percentSum / float64(a.plays))
	}

	return SeriesProgress{
		SeriesID:          seriesID,
		Title:             a.title,
		WatchedEpisodeIDs: watched,
		PartialEpisodeIDs: partial,
		AvailableEpisodes: available,
		PercentWatched:    percentWatched,
		AvgPlayPercent:    avg,
		Plays:             a.plays,
		FirstWatched:      a.first,
		LastWatched:       a.last,
	}
}
