package schedule

import (
	"fmt"
	"sort"
	"strings"
)

// Change types
const (
	ChangeNew     = "new"
	ChangeDate    = "date"
	ChangeTime    = "time"
	ChangeVenue   = "venue"
	ChangeResult  = "result"
	ChangeRemoved = "removed"
)

// Snapshot is the schedule of a previous run keyed by fixture
type Snapshot struct {
	Rows      map[string]*Row `json:"rows"`
	UpdatedAt string          `json:"updated_at"` // RFC3339 timestamp
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{Rows: make(map[string]*Row)}
}

// CreateSnapshot keys rows by fixture.
func CreateSnapshot(rows []*Row, updatedAt string) *Snapshot {
	snap := NewSnapshot()
	snap.UpdatedAt = updatedAt
	for key, row := range keyRows(rows) {
		snap.Rows[key] = row
	}
	return snap
}

// Change is one difference between two runs
type Change struct {
	Key      string `json:"key"`
	Type     string `json:"type"`
	TeamCode string `json:"team_code"`
	Match    string `json:"match"`
	OldValue string `json:"old_value,omitempty"`
	NewValue string `json:"new_value,omitempty"`
}

func (c Change) String() string {
	switch c.Type {
	case ChangeNew, ChangeRemoved:
		return fmt.Sprintf("[%s] %s %s", c.TeamCode, c.Type, c.Match)
	default:
		return fmt.Sprintf("[%s] %s %s: %s -> %s", c.TeamCode, c.Match, c.Type, c.OldValue, c.NewValue)
	}
}

// FixtureKey identifies a match independent of its date, time and venue.
func FixtureKey(r *Row) string {
	return strings.Join([]string{r.Source, r.TeamCode, r.Home, r.Away, r.Round}, "|")
}

// keyRows keys rows by fixture. A fixture played more than once gets an
// occurrence suffix in row order.
func keyRows(rows []*Row) map[string]*Row {
	keyed := make(map[string]*Row, len(rows))
	seen := make(map[string]int)
	for _, r := range rows {
		key := FixtureKey(r)
		seen[key]++
		if n := seen[key]; n > 1 {
			key = fmt.Sprintf("%s#%d", key, n)
		}
		keyed[key] = r
	}
	return keyed
}

// Diff compares the current rows against a previous snapshot. Changes are
// sorted by team code, then fixture.
func Diff(previous *Snapshot, current []*Row) []Change {
	if previous == nil {
		previous = NewSnapshot()
	}

	var changes []Change
	currentKeyed := keyRows(current)
	for key, cur := range currentKeyed {
		prev, exists := previous.Rows[key]
		if !exists {
			changes = append(changes, newChange(key, ChangeNew, cur, "", ""))
			continue
		}
		if prev.Date != cur.Date {
			changes = append(changes, newChange(key, ChangeDate, cur, prev.Date, cur.Date))
		}
		if prev.Time != cur.Time {
			changes = append(changes, newChange(key, ChangeTime, cur, prev.Time, cur.Time))
		}
		if prev.Venue != cur.Venue {
			changes = append(changes, newChange(key, ChangeVenue, cur, prev.Venue, cur.Venue))
		}
		if prev.Result != cur.Result {
			changes = append(changes, newChange(key, ChangeResult, cur, prev.Result, cur.Result))
		}
	}
	for key, prev := range previous.Rows {
		if _, exists := currentKeyed[key]; !exists {
			changes = append(changes, newChange(key, ChangeRemoved, prev, "", ""))
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		if changes[i].TeamCode != changes[j].TeamCode {
			return changes[i].TeamCode < changes[j].TeamCode
		}
		if changes[i].Key != changes[j].Key {
			return changes[i].Key < changes[j].Key
		}
		return changes[i].Type < changes[j].Type
	})
	return changes
}

func newChange(key, kind string, r *Row, oldValue, newValue string) Change {
	return Change{
		Key:      key,
		Type:     kind,
		TeamCode: r.TeamCode,
		Match:    fmt.Sprintf("%s - %s", r.Home, r.Away),
		OldValue: oldValue,
		NewValue: newValue,
	}
}
