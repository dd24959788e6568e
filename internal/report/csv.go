package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

var seriesColumns = []string{
	"show_id",
	"show_title",
	"unique_episodes_watched",
	"episodes_partial",
	"available_episodes",
	"percent_watched_show",
	"avg_episode_percent",
	"first_watched",
	"last_watched",
}

var movieColumns = []string{
	"movie_id",
	"movie_title",
	"year",
	"plays",
	"max_percent",
	"avg_percent",
	"last_percent",
	"watched",
	"first_watched",
	"last_watched",
}

// WriteSeriesCSV writes the series report to path.
func WriteSeriesCSV(path string, rows []SeriesRow) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.ShowID,
			row.ShowTitle,
			strconv.Itoa(row.EpisodesWatched),
			strconv.Itoa(row.EpisodesPartial),
			strconv.Itoa(row.AvailableEpisodes),
			formatPercent(row.PercentWatched),
			formatPercent(row.AvgPlayPercent),
			row.FirstWatched,
			row.LastWatched,
		})
	}
	return writeCSV(path, seriesColumns, records)
}

// WriteMoviesCSV writes the movie report to path.
func WriteMoviesCSV(path string, rows []MovieRow) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		year := ""
		if row.Year != 0 {
			year = strconv.Itoa(row.Year)
		}
		records = append(records, []string{
			row.MovieID,
			row.MovieTitle,
			year,
			strconv.Itoa(row.Plays),
			formatPercent(row.MaxPercent),
			formatPercent(row.AvgPercent),
			formatPercent(row.LastPercent),
			strconv.FormatBool(row.Watched),
			row.FirstWatched,
			row.LastWatched,
		})
	}
	return writeCSV(path, movieColumns, records)
}

func writeCSV(path string, header []string, records [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		_ = file.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			_ = file.Close()
			return fmt.Errorf("write record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = file.Close()
		return fmt.Errorf("flush report %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close report %s: %w", path, err)
	}
	return nil
}

func formatPercent(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}
