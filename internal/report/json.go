package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// NewDocument assembles the combined JSON export for a finished run.
func NewDocument(user string, threshold float64, series []SeriesRow, movies []MovieRow) Document {
	if series == nil {
		series = []SeriesRow{}
	}
	if movies == nil {
		movies = []MovieRow{}
	}
	return Document{
		User:             user,
		WatchedThreshold: threshold,
		GeneratedAt:      time.Now().UTC().Format(timestampLayout),
		Series:           series,
		Movies:           movies,
	}
}

// WriteJSON writes the document to path as indented JSON.
func WriteJSON(path string, doc Document) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		_ = file.Close()
		return fmt.Errorf("encode report %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close report %s: %w", path, err)
	}
	return nil
}
