package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pfrederiksen/spielplan/internal/pipeline"
)

var schemaSQL = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		generated TEXT NOT NULL,
		row_count INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		position INTEGER NOT NULL,
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		weekday TEXT,
		week TEXT,
		home TEXT NOT NULL,
		away TEXT NOT NULL,
		referee TEXT,
		host TEXT,
		venue TEXT,
		round TEXT,
		team_code TEXT NOT NULL,
		result TEXT,
		source TEXT NOT NULL,
		start TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		source TEXT NOT NULL,
		format TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT,
		encoding TEXT,
		loaded INTEGER NOT NULL,
		malformed INTEGER NOT NULL,
		kept INTEGER NOT NULL,
		other INTEGER NOT NULL,
		lenient INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_team ON matches(run_id, team_code)`,
}

// ExportSQLite appends a run to the SQLite database at path, creating the
// schema on first use. Returns the id of the new run.
func ExportSQLite(path string, result *pipeline.Result) (int64, error) {
	path, err := expandHome(path)
	if err != nil {
		return 0, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() // nolint:errcheck

	for _, stmt := range schemaSQL {
		if _, err := db.Exec(stmt); err != nil {
			return 0, fmt.Errorf("creating schema: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	res, err := tx.Exec(`INSERT INTO runs (generated, row_count) VALUES (?, ?)`,
		result.Generated.UTC().Format(time.RFC3339), len(result.Rows))
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	for i, row := range result.Rows {
		var start any
		if row.HasStart() {
			start = row.Start.Format(time.RFC3339)
		}
		_, err := tx.Exec(`INSERT INTO matches
			(run_id, position, date, time, weekday, week, home, away, referee, host, venue, round, team_code, result, source, start)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, i, row.Date, row.Time, row.Weekday, row.Week, row.Home, row.Away, row.Referee,
			row.Host, row.Venue, row.Round, row.TeamCode, row.Result, row.Source, start)
		if err != nil {
			return 0, fmt.Errorf("inserting match %d: %w", i, err)
		}
	}

	for _, rep := range result.Reports {
		_, err := tx.Exec(`INSERT INTO reports
			(run_id, source, format, status, reason, encoding, loaded, malformed, kept, other, lenient, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, rep.Source, rep.Format, rep.Status, rep.Reason, rep.Encoding,
			rep.Loaded, rep.Malformed, rep.Kept, rep.Other, rep.Lenient, rep.Duration.Milliseconds())
		if err != nil {
			return 0, fmt.Errorf("inserting report %s: %w", rep.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}
