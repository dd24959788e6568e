// Package seriescache caches per-series available-episode counts between
// export runs.
//
// Counting a series' available episodes costs at least one Tautulli API call
// (and a season walk when leaf counts are missing), so large libraries pay a
// noticeable per-run tax. The cache stores seriesID -> count in a local
// SQLite database with a TTL; entries past the TTL are treated as absent and
// pruned opportunistically. A file lock serializes concurrent exports that
// share a cache path.
//
// The cache is disabled by default and enabled via config:
//
//	[series_cache]
//	enabled = true
//	path = "~/.cache/tautx/series_cache.db"
//	ttl_hours = 168
package seriescache
