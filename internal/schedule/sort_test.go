package schedule

import (
	"testing"
	"time"
)

func row(date, clock string) *Row {
	d := ParseDate(date)
	return &Row{
		Date:  date,
		Time:  NormalizeTime(clock, DefaultTimeOptions()),
		Start: Timestamp(d, clock, DefaultTimeOptions(), time.UTC),
		Home:  date + " " + clock,
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		name      string
		rows      []*Row
		wantOrder []string // Expected order of Home values
	}{
		{
			name:      "Empty slice",
			rows:      []*Row{},
			wantOrder: []string{},
		},
		{
			name: "Reverse order",
			rows: []*Row{
				row("01.03.2026", "15:00"),
				row("01.02.2026", "15:00"),
				row("01.01.2026", "15:00"),
			},
			wantOrder: []string{"01.01.2026 15:00", "01.02.2026 15:00", "01.03.2026 15:00"},
		},
		{
			name: "Same day by clock",
			rows: []*Row{
				row("20.09.2025", "19:30"),
				row("20.09.2025", "15:00:00"),
			},
			wantOrder: []string{"20.09.2025 15:00:00", "20.09.2025 19:30"},
		},
		{
			name: "Open time sorts as start of day",
			rows: []*Row{
				row("20.09.2025", "00:00"),
				row("20.09.2025", "00:30"),
			},
			wantOrder: []string{"20.09.2025 00:00", "20.09.2025 00:30"},
		},
		{
			name: "Unparseable dates at end",
			rows: []*Row{
				row("not a date", "15:00"),
				row("01.03.2026", "15:00"),
				row("", "15:00"),
				row("01.01.2026", "15:00"),
			},
			wantOrder: []string{"01.01.2026 15:00", "01.03.2026 15:00", "not a date 15:00", " 15:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Sort(tt.rows)

			if len(tt.rows) != len(tt.wantOrder) {
				t.Fatalf("Sort() len = %d, want %d", len(tt.rows), len(tt.wantOrder))
			}
			for i, r := range tt.rows {
				if r.Home != tt.wantOrder[i] {
					t.Errorf("Sort()[%d] = %q, want %q", i, r.Home, tt.wantOrder[i])
				}
			}
		})
	}
}

func TestSort_Monotonic(t *testing.T) {
	rows := []*Row{
		row("05.10.2025", "18:00"),
		row("bad", ""),
		row("20.09.2025", "15:00"),
		row("27.09.2025", "00:00"),
		row("20.09.2025", "11:00"),
		row("", ""),
	}
	Sort(rows)

	seenUndated := false
	for i, r := range rows {
		if !r.HasStart() {
			seenUndated = true
			continue
		}
		if seenUndated {
			t.Fatalf("dated row %d (%s) appears after an undated row", i, r.Date)
		}
		if i > 0 && rows[i-1].HasStart() && r.Start.Before(rows[i-1].Start) {
			t.Errorf("row %d (%v) sorted before earlier row %d (%v)", i, r.Start, i-1, rows[i-1].Start)
		}
	}
}

func TestDropUndated(t *testing.T) {
	rows := []*Row{row("20.09.2025", "15:00"), row("bad", ""), row("21.09.2025", "")}
	got := DropUndated(rows)
	if len(got) != 2 {
		t.Fatalf("DropUndated() len = %d, want 2", len(got))
	}
	for _, r := range got {
		if !r.HasStart() {
			t.Errorf("DropUndated() kept undated row %q", r.Date)
		}
	}
}
