package schedule

import "sort"

// Sort orders rows by start timestamp and then display time, ascending.
// Rows without a valid timestamp keep their relative order and go last.
func Sort(rows []*Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return less(rows[i], rows[j])
	})
}

// less reports whether row a should come before row b
func less(a, b *Row) bool {
	// If only one date is valid, put the valid one first
	if a.HasStart() != b.HasStart() {
		return a.HasStart()
	}
	if !a.HasStart() {
		return false
	}
	if !a.Start.Equal(b.Start) {
		return a.Start.Before(b.Start)
	}
	return a.Time < b.Time
}

// DropUndated returns the rows that carry a valid timestamp.
func DropUndated(rows []*Row) []*Row {
	dated := make([]*Row, 0, len(rows))
	for _, r := range rows {
		if r.HasStart() {
			dated = append(dated, r)
		}
	}
	return dated
}
