// Package tautulli is a minimal client for the Tautulli v2 HTTP API.
//
// Every call is a GET against {base}/api/v2 with apikey and cmd query
// parameters; responses share the {"response": {"result", "message", "data"}}
// wrapper and result != "success" is surfaced as an error. HTTP 429 responses
// are retried with exponential backoff honouring Retry-After.
//
// The client covers exactly what the exporter needs: user resolution,
// paginated playback history, and available-episode counting via metadata
// leaf counts with a season-walk fallback. Tautulli's loosely typed JSON
// (numbers as strings, nullable percents) is normalized into fixed-shape
// structs at this boundary.
package tautulli
