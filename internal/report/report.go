package report

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"tautx/internal/progress"
)

const timestampLayout = "2006-01-02 15:04:05"

// SeriesRow is one series in a report, flattened for CSV and JSON output.
type SeriesRow struct {
	ShowID            string  `json:"show_id"`
	ShowTitle         string  `json:"show_title"`
	EpisodesWatched   int     `json:"unique_episodes_watched"`
	EpisodesPartial   int     `json:"episodes_partial"`
	AvailableEpisodes int     `json:"available_episodes"`
	PercentWatched    float64 `json:"percent_watched_show"`
	AvgPlayPercent    float64 `json:"avg_episode_percent"`
	FirstWatched      string  `json:"first_watched"`
	LastWatched       string  `json:"last_watched"`
}

// MovieRow is one movie in a report.
type MovieRow struct {
	MovieID      string  `json:"movie_id"`
	MovieTitle   string  `json:"movie_title"`
	Year         int     `json:"year,omitempty"`
	Plays        int     `json:"plays"`
	MaxPercent   float64 `json:"max_percent"`
	AvgPercent   float64 `json:"avg_percent"`
	LastPercent  float64 `json:"last_percent"`
	Watched      bool    `json:"watched"`
	FirstWatched string  `json:"first_watched"`
	LastWatched  string  `json:"last_watched"`
}

// Document is the combined JSON export.
type Document struct {
	User             string      `json:"user"`
	WatchedThreshold float64     `json:"watched_threshold"`
	GeneratedAt      string      `json:"generated_at"`
	Series           []SeriesRow `json:"series"`
	Movies           []MovieRow  `json:"movies"`
}

// SeriesRows flattens aggregator output into title-ordered report rows.
func SeriesRows(series map[string]progress.SeriesProgress) []SeriesRow {
	rows := make([]SeriesRow, 0, len(series))
	for _, sp := range series {
		rows = append(rows, SeriesRow{
			ShowID:            sp.SeriesID,
			ShowTitle:         sp.Title,
			EpisodesWatched:   len(sp.WatchedEpisodeIDs),
			EpisodesPartial:   len(sp.PartialEpisodeIDs),
			AvailableEpisodes: sp.AvailableEpisodes,
			PercentWatched:    sp.PercentWatched,
			AvgPlayPercent:    sp.AvgPlayPercent,
			FirstWatched:      formatTimestamp(sp.FirstWatched),
			LastWatched:       formatTimestamp(sp.LastWatched),
		})
	}

	collator := newCollator()
	sort.Slice(rows, func(i, j int) bool {
		if cmp := collator.CompareString(rows[i].ShowTitle, rows[j].ShowTitle); cmp != 0 {
			return cmp < 0
		}
		return rows[i].ShowID < rows[j].ShowID
	})
	return rows
}

// MovieRows flattens aggregator output into title-ordered report rows.
func MovieRows(movies map[string]progress.MovieProgress) []MovieRow {
	rows := make([]MovieRow, 0, len(movies))
	for _, mp := range movies {
		rows = append(rows, MovieRow{
			MovieID:      mp.MovieID,
			MovieTitle:   mp.Title,
			Year:         mp.Year,
			Plays:        mp.Plays,
			MaxPercent:   mp.MaxPercent,
			AvgPercent:   mp.AvgPercent,
			LastPercent:  mp.LastPercent,
			Watched:      mp.Watched,
			FirstWatched: formatTimestamp(mp.FirstWatched),
			LastWatched:  formatTimestamp(mp.LastWatched),
		})
	}

	collator := newCollator()
	sort.Slice(rows, func(i, j int) bool {
		if cmp := collator.CompareString(rows[i].MovieTitle, rows[j].MovieTitle); cmp != 0 {
			return cmp < 0
		}
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].MovieID < rows[j].MovieID
	})
	return rows
}

func newCollator() *collate.Collator {
	return collate.New(language.Und, collate.IgnoreCase)
}

func formatTimestamp(at time.Time) string {
	if at.IsZero() {
		return ""
	}
	return at.UTC().Format(timestampLayout)
}
