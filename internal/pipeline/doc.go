// Package pipeline runs schedule generation over all configured sources.
//
// Each source is loaded, filtered to club rows and normalized; the rows of all
// sources are then merged and sorted by kickoff. A Report per source records
// what happened to it, so a run can be audited without reading the logs.
//
// A source marked required aborts the run when it cannot be loaded. Any other
// source is skipped with a warning.
package pipeline
