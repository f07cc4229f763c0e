// Package schedule provides the match row type and the date, time, result and ordering
// helpers shared by every stage of the schedule pipeline.
//
// Rows are materialized once per input table, normalized in place, and sorted by their
// parsed kickoff timestamp. Rows whose date cannot be parsed keep a zero Start and are
// ordered after all dated rows.
package schedule
