package export

import (
	"path/filepath"
	"strings"
)

// SeriesOutputPath returns the default series report location for a user.
func SeriesOutputPath(dir, user string) string {
	return filepath.Join(dir, "watched_series_"+sanitizeUser(user)+".csv")
}

// MoviesOutputPath returns the default movie report location for a user.
func MoviesOutputPath(dir, user string) string {
	return filepath.Join(dir, "watched_movies_"+sanitizeUser(user)+".csv")
}

// JSONOutputPath returns the default combined JSON report location for a user.
func JSONOutputPath(dir, user string) string {
	return filepath.Join(dir, "watched_report_"+sanitizeUser(user)+".json")
}

// sanitizeUser makes a user name safe to embed in a filename.
func sanitizeUser(user string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(user)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}
