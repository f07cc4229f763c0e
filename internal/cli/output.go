package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/spielplan/internal/config"
	"github.com/pfrederiksen/spielplan/internal/pipeline"
	"github.com/pfrederiksen/spielplan/internal/schedule"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatCSV  OutputFormat = "csv"
)

// csvHeader is the column layout of the club's spielplan.csv
var csvHeader = []string{
	"Datum", "Uhrzeit", "Tag", "Heim", "Gast", "SR", "Gastgeber", "Ergebnis", "Ort", "Spielrunde", "Team",
}

// OutputResult contains data to be output
type OutputResult struct {
	GeneratedAt time.Time         `json:"generated_at"`
	RowCount    int               `json:"row_count"`
	Rows        []*schedule.Row   `json:"rows"`
	Teams       []config.Team     `json:"teams"`
	Reports     []pipeline.Report `json:"reports,omitempty"`
	Changes     []schedule.Change `json:"changes,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatCSV:
		return writeCSV(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	if result.Rows == nil {
		result.Rows = []*schedule.Row{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeCSV outputs the schedule as semicolon separated UTF-8 with a byte
// order mark, so spreadsheet tools pick the right encoding.
func writeCSV(w io.Writer, result *OutputResult) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range result.Rows {
		record := []string{
			row.Date, row.Time, row.Weekday, row.Home, row.Away, row.Referee,
			row.Host, row.Result, row.Venue, row.Round, row.TeamCode,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.RowCount == 0 {
		fmt.Fprintln(w, "No matches found.")
	}

	for _, row := range result.Rows {
		fmt.Fprintf(w, "%-10s %-2s %-12s %-10s %s - %s", row.Date, row.Weekday, row.Time, row.TeamCode, row.Home, row.Away)
		if row.Result != "" {
			fmt.Fprintf(w, "  %s", row.Result)
		}
		fmt.Fprintln(w)
		if verbose {
			if row.Venue != "" {
				fmt.Fprintf(w, "           Venue: %s\n", row.Venue)
			}
			if row.Referee != "" {
				fmt.Fprintf(w, "           Referee: %s\n", row.Referee)
			}
			if row.Round != "" {
				fmt.Fprintf(w, "           Round: %s\n", row.Round)
			}
		}
	}
	if result.RowCount > 0 {
		fmt.Fprintf(w, "\nTotal: %d matches\n", result.RowCount)
	}

	if len(result.Changes) > 0 {
		fmt.Fprintf(w, "\nChanges since last run (%d):\n", len(result.Changes))
		for _, c := range result.Changes {
			fmt.Fprintf(w, "  %s\n", c)
		}
	}

	if verbose && len(result.Reports) > 0 {
		fmt.Fprintln(w, "\nSources:")
		for _, r := range result.Reports {
			if r.Status == pipeline.StatusSkipped {
				fmt.Fprintf(w, "  %-12s skipped: %s\n", r.Source, r.Reason)
				continue
			}
			fmt.Fprintf(w, "  %-12s %d loaded, %d kept, %d malformed", r.Source, r.Loaded, r.Kept, r.Malformed)
			if r.Other > 0 {
				fmt.Fprintf(w, ", %d away games", r.Other)
			}
			if r.Encoding != "" {
				fmt.Fprintf(w, " (%s)", r.Encoding)
			}
			if r.Lenient {
				fmt.Fprint(w, ", broken quoting")
			}
			fmt.Fprintln(w)
		}
	}

	return nil
}
