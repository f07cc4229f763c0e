package schedule

import "time"

// Row represents one match of a league schedule
type Row struct {
	Date     string    `json:"date"`
	Time     string    `json:"time"`
	Weekday  string    `json:"weekday,omitempty"`
	Week     string    `json:"week,omitempty"`
	Home     string    `json:"home"`
	Away     string    `json:"away"`
	Referee  string    `json:"referee,omitempty"`
	Host     string    `json:"host,omitempty"`
	Venue    string    `json:"venue,omitempty"`
	Round    string    `json:"round,omitempty"`
	TeamCode string    `json:"team_code"`
	Result   string    `json:"result,omitempty"`
	Source   string    `json:"source"`
	Start    time.Time `json:"start,omitempty"` // Zero when the date could not be parsed

	// Sets holds raw set points until the result is built.
	Sets []SetScore `json:"-"`
}

// HasStart reports whether the row carries a valid timestamp.
func (r *Row) HasStart() bool {
	return !r.Start.IsZero()
}

// MatchFields returns the fields checked for club participation.
func (r *Row) MatchFields() []string {
	return []string{r.Home, r.Away, r.Referee, r.Host}
}

// TextFields returns pointers to every free-text field that takes part in name
// canonicalization.
func (r *Row) TextFields() []*string {
	return []*string{&r.Home, &r.Away, &r.Referee, &r.Host, &r.Venue, &r.Round}
}
