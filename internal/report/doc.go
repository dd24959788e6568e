// Package report renders aggregated watch progress into CSV files and a
// combined JSON document.
//
// Ordering is a presentation concern owned here: rows are sorted by title
// using Unicode collation, with entity IDs as the tie-break. The aggregator's
// map output stays unordered.
package report
