package loader

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/spielplan/internal/schedule"
)

// Canonical field names used as keys of a Columns map.
const (
	FieldDate     = "date"
	FieldTime     = "time"
	FieldDateTime = "datetime"
	FieldHome     = "home"
	FieldAway     = "away"
	FieldReferee  = "referee"
	FieldHost     = "host"
	FieldVenue    = "venue"
	FieldRound    = "round"
	FieldResult   = "result"
	FieldSets     = "sets"
)

// Columns maps a canonical field name to the source headers that may hold it,
// in order of preference.
type Columns map[string][]string

// DefaultColumns returns the header names used by the league exports.
func DefaultColumns() Columns {
	cols := Columns{
		FieldDate:     {"Datum", "Spieltag"},
		FieldTime:     {"Uhrzeit", "Uhrzeit Beginn", "Beginn"},
		FieldDateTime: {"Datum und Uhrzeit"},
		FieldHome:     {"Mannschaft 1", "Heim"},
		FieldAway:     {"Mannschaft 2", "Gast"},
		FieldReferee:  {"Schiedsgericht", "SR"},
		FieldHost:     {"Gastgeber"},
		FieldVenue:    {"Austragungsort", "Ort"},
		FieldRound:    {"Spielrunde"},
		FieldResult:   {"Ergebnis"},
		FieldSets:     {"Satzpunkte"},
	}
	for i := 1; i <= schedule.MaxSets; i++ {
		cols[setField(i, "home")] = []string{fmt.Sprintf("Satz %d - Ballpunkte 1", i)}
		cols[setField(i, "away")] = []string{fmt.Sprintf("Satz %d - Ballpunkte 2", i)}
	}
	return cols
}

// Merge returns a copy of c with the entries of override replacing its own.
func (c Columns) Merge(override map[string][]string) Columns {
	out := make(Columns, len(c)+len(override))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range override {
		if len(v) > 0 {
			out[strings.ToLower(k)] = v
		}
	}
	return out
}

// resolve returns the header present in headers for each field.
// Header comparison ignores case.
func (c Columns) resolve(headers []string) map[string]string {
	present := make(map[string]string, len(headers))
	for _, h := range headers {
		if h != "" {
			present[strings.ToLower(h)] = h
		}
	}

	found := make(map[string]string, len(c))
	for field, aliases := range c {
		for _, alias := range aliases {
			if h, ok := present[strings.ToLower(strings.TrimSpace(alias))]; ok {
				found[field] = h
				break
			}
		}
	}
	return found
}

// Rows maps every line of t onto a schedule row. A combined date and time
// column is split on its first comma when the separate columns are absent or
// empty. Fails with ErrMissingColumns when date, time, home or away cannot be
// located.
func (c Columns) Rows(t *Table) ([]*schedule.Row, error) {
	found := c.resolve(t.Headers)

	var missing []string
	_, hasDateTime := found[FieldDateTime]
	for _, field := range []string{FieldDate, FieldTime, FieldHome, FieldAway} {
		if _, ok := found[field]; ok {
			continue
		}
		if hasDateTime && (field == FieldDate || field == FieldTime) {
			continue
		}
		missing = append(missing, field)
	}
	if len(missing) > 0 {
		return nil, &SourceError{
			Source: t.Name,
			Err:    fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", ")),
		}
	}

	get := func(line map[string]string, field string) string {
		if h, ok := found[field]; ok {
			return line[h]
		}
		return ""
	}

	rows := make([]*schedule.Row, 0, len(t.Rows))
	for _, line := range t.Rows {
		row := &schedule.Row{
			Date:    get(line, FieldDate),
			Time:    get(line, FieldTime),
			Home:    get(line, FieldHome),
			Away:    get(line, FieldAway),
			Referee: get(line, FieldReferee),
			Host:    get(line, FieldHost),
			Venue:   get(line, FieldVenue),
			Round:   get(line, FieldRound),
			Result:  get(line, FieldResult),
		}

		if row.Date == "" {
			row.Date, row.Time = splitDateTime(get(line, FieldDateTime), row.Time)
		}

		// A present score column decides the result, blank or not.
		if _, ok := found[FieldSets]; ok {
			row.Result = get(line, FieldSets)
			for i := 1; i <= schedule.MaxSets; i++ {
				row.Sets = append(row.Sets, schedule.SetScore{
					Home: get(line, setField(i, "home")),
					Away: get(line, setField(i, "away")),
				})
			}
		}

		rows = append(rows, row)
	}
	return rows, nil
}

// splitDateTime splits "20.09.2025, 15:00:00" into date and time. fallback is
// kept as time when the value has no time part.
func splitDateTime(value, fallback string) (string, string) {
	date, clock, ok := strings.Cut(value, ",")
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if !ok || clock == "" {
		return date, fallback
	}
	if fallback != "" {
		return date, fallback
	}
	return date, clock
}

func setField(n int, side string) string {
	return fmt.Sprintf("set%d_%s", n, side)
}
