package normalize

import (
	"strings"
	"time"

	"github.com/pfrederiksen/spielplan/internal/config"
	"github.com/pfrederiksen/spielplan/internal/schedule"
)

// Normalizer completes filtered rows
type Normalizer struct {
	Canon    *Canonicalizer
	Time     schedule.TimeOptions
	Location *time.Location
}

// New creates a normalizer from the club configuration.
func New(cfg *config.Config) (*Normalizer, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &Normalizer{
		Canon: NewCanonicalizer(cfg.Club, cfg.Teams),
		Time: schedule.TimeOptions{
			OpenMarker:     cfg.Time.OpenMarker,
			MidnightIsOpen: cfg.Time.MidnightIsOpen,
		},
		Location: loc,
	}, nil
}

// Normalize completes every row in place, assigning team codes with assign.
func (n *Normalizer) Normalize(rows []*schedule.Row, assign Assigner) {
	for _, row := range rows {
		n.normalizeRow(row, assign)
	}
}

func (n *Normalizer) normalizeRow(row *schedule.Row, assign Assigner) {
	// The code is assigned from the original names, numerals are gone afterwards
	row.TeamCode = assign.Assign(row)

	for _, field := range row.TextFields() {
		*field = n.Canon.Canonicalize(*field, row.TeamCode)
	}

	date := schedule.ParseDate(row.Date)
	if !date.IsZero() {
		row.Date = schedule.FormatDate(date)
		row.Weekday = schedule.Weekday(date)
		row.Week = schedule.WeekLabel(date)
	}
	row.Start = schedule.Timestamp(date, row.Time, n.Time, n.Location)
	row.Time = schedule.NormalizeTime(row.Time, n.Time)

	if row.Sets != nil {
		row.Result = schedule.BuildResult(row.Result, row.Sets)
		row.Sets = nil
	} else {
		row.Result = strings.TrimSpace(row.Result)
	}
}
