// Package filter selects the schedule rows that involve the club.
//
// A row is kept when any keyword occurs in its home team, away team, referee
// or host, compared case-insensitively as a substring. Venue and round are not
// checked: a match at the club's hall between two other teams is not a club
// match.
//
// Example usage:
//
//	f := filter.New("USC Münster", "USC Muenster")
//	kept := f.Apply(rows)
package filter

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/spielplan/internal/schedule"
)

// Filter represents club keyword criteria
type Filter struct {
	Keywords []string `json:"keywords,omitempty"`
}

// New creates a filter for the given keywords. Blank keywords are dropped.
func New(keywords ...string) *Filter {
	f := &Filter{Keywords: []string{}}
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		f.Keywords = append(f.Keywords, kw)
	}
	return f
}

// IsEmpty reports whether the filter has no keywords.
// An empty filter matches every row.
func (f *Filter) IsEmpty() bool {
	return len(f.Keywords) == 0
}

// Matches reports whether any keyword occurs in one of the row's participant
// fields.
func (f *Filter) Matches(row *schedule.Row) bool {
	if f.IsEmpty() {
		return true
	}
	for _, field := range row.MatchFields() {
		if field == "" {
			continue
		}
		fieldLower := strings.ToLower(field)
		for _, kw := range f.Keywords {
			if strings.Contains(fieldLower, strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}

// Apply returns the rows that match, in their original order.
// If the filter is empty, returns the original list unchanged.
func (f *Filter) Apply(rows []*schedule.Row) []*schedule.Row {
	if f.IsEmpty() {
		return rows
	}

	filtered := make([]*schedule.Row, 0, len(rows))
	for _, row := range rows {
		if f.Matches(row) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// String returns a human-readable description of the filter.
// Format: "Keywords: USC Münster, USC Muenster"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}
	return fmt.Sprintf("Keywords: %s", strings.Join(f.Keywords, ", "))
}
