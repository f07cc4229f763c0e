// Package storage persists generated schedules.
//
// The JSON snapshot of the last run is kept so that the next run can report
// moved kickoffs, new fixtures and results. A run can also be exported to a
// SQLite database holding the schedule rows and the per-source reports.
// The default snapshot location is ~/.local/share/spielplan/.
package storage
