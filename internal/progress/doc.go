// Package progress aggregates normalized play events into per-series and
// per-movie completion statistics.
//
// The aggregation functions are pure: they consume a fully materialized event
// slice plus library metadata and return immutable snapshots keyed by entity
// ID, along with counters for events that had to be skipped. They never log
// and never touch the network, so callers own error reporting and can invoke
// them repeatedly with disjoint inputs.
//
// An episode or movie counts as watched when the maximum effective completion
// percent across all of its plays reaches the configured threshold. Rewatches
// therefore never double count, and a single near-complete play is enough.
package progress
