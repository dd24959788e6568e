package export

import (
	"strconv"
	"time"

	"tautx/internal/progress"
	"tautx/internal/tautulli"
)

// Unit repair thresholds for view_offset/duration pairs. Tautulli reports
// view_offset in milliseconds and duration in seconds, but both have shipped
// in either unit depending on version. An offset more than five times the
// duration means the offset is in the finer unit; a duration above 100000
// cannot plausibly be seconds (~28 hours) and is milliseconds.
const (
	offsetUnitRatio    = 5
	durationUnitBounds = 100000
)

// eventsFromHistory converts raw history rows into normalized play events.
// Episode rows group under the show rating key; movie rows stand alone.
func eventsFromHistory(records []tautulli.HistoryRecord) []progress.PlayEvent {
	events := make([]progress.PlayEvent, 0, len(records))
	for _, record := range records {
		switch record.MediaType {
		case tautulli.MediaTypeEpisode:
			events = append(events, episodeEvent(record))
		case tautulli.MediaTypeMovie:
			events = append(events, movieEvent(record))
		}
	}
	return events
}

func episodeEvent(record tautulli.HistoryRecord) progress.PlayEvent {
	event := baseEvent(record)
	event.EntityID = formatKey(record.GrandparentRatingKey)
	event.EpisodeID = formatKey(record.RatingKey)
	event.Title = record.GrandparentTitle
	if event.Title == "" {
		event.Title = record.FullTitle
	}
	return event
}

func movieEvent(record tautulli.HistoryRecord) progress.PlayEvent {
	event := baseEvent(record)
	event.EntityID = formatKey(record.RatingKey)
	event.Title = record.Title
	if event.Title == "" {
		event.Title = record.FullTitle
	}
	event.Year = int(record.Year)
	return event
}

func baseEvent(record tautulli.HistoryRecord) progress.PlayEvent {
	event := progress.PlayEvent{PlayedAt: playedAt(record)}
	if record.PercentComplete != nil {
		percent := float64(*record.PercentComplete)
		event.CompletionPercent = &percent
	}
	if record.ViewOffset != nil && record.Duration != nil {
		offsetMs, durationMs := normalizeUnits(int64(*record.ViewOffset), int64(*record.Duration))
		event.ViewOffsetMs = &offsetMs
		event.DurationMs = &durationMs
	}
	return event
}

// normalizeUnits repairs mixed-unit offset/duration pairs and returns both in
// milliseconds.
func normalizeUnits(offset, duration int64) (offsetMs, durationMs int64) {
	if duration > 0 && offset > duration*offsetUnitRatio {
		offset /= 1000
	}
	if duration > durationUnitBounds {
		duration /= 1000
	}
	return offset * 1000, duration * 1000
}

// playedAt picks the most meaningful timestamp a history row offers: the
// history date, then the stop time, then the start time.
func playedAt(record tautulli.HistoryRecord) time.Time {
	for _, seconds := range []int64{int64(record.Date), int64(record.Stopped), int64(record.Started)} {
		if seconds > 0 {
			return time.Unix(seconds, 0).UTC()
		}
	}
	return time.Time{}
}

func formatKey(key tautulli.FlexInt) string {
	return strconv.FormatInt(int64(key), 10)
}
