// Package export orchestrates a full exporter run: resolve the Tautulli
// user, pull playback history, normalize it into play events, aggregate
// watch progress, and write the report files.
//
// Each run carries a UUID correlation identifier in its log lines. The two
// export types are independent: a series failure does not abort the movie
// export, and vice versa.
package export
