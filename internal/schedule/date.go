package schedule

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the day.month.year layout used by all league exports.
const DateLayout = "02.01.2006"

// DefaultOpenMarker is displayed when no kickoff time has been fixed yet.
const DefaultOpenMarker = "undetermined"

var weekdayAbbrev = map[time.Weekday]string{
	time.Monday:    "Mo",
	time.Tuesday:   "Di",
	time.Wednesday: "Mi",
	time.Thursday:  "Do",
	time.Friday:    "Fr",
	time.Saturday:  "Sa",
	time.Sunday:    "So",
}

// ParseDate parses a DD.MM.YYYY date.
// Returns time.Time{} (zero value) if parsing fails.
// Supports formats: "20.09.2025", "2.9.2025"
func ParseDate(dateText string) time.Time {
	dateText = strings.TrimSpace(dateText)
	if dateText == "" {
		return time.Time{}
	}

	// Try zero padded "20.09.2025" first so formatting round-trips
	t, err := time.Parse(DateLayout, dateText)
	if err == nil {
		return t
	}

	// Try "2.9.2025"
	t, err = time.Parse("2.1.2006", dateText)
	if err == nil {
		return t
	}

	return time.Time{}
}

// FormatDate renders t as DD.MM.YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Weekday returns the two-letter abbreviation for the day of t,
// or "" for the zero time.
func Weekday(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return weekdayAbbrev[t.Weekday()]
}

// WeekLabel returns the Monday to Sunday range containing t,
// e.g. "Mo 15.09.2025 – So 21.09.2025". Returns "" for the zero time.
func WeekLabel(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	offset := (int(t.Weekday()) + 6) % 7
	start := t.AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 6)
	return fmt.Sprintf("Mo %s – So %s", FormatDate(start), FormatDate(end))
}

// TimeOptions controls how raw clock values are displayed
type TimeOptions struct {
	// OpenMarker replaces times that have not been fixed yet.
	OpenMarker string
	// MidnightIsOpen treats 00:00 and 00:00:00 as "no time fixed" instead of a
	// genuine midnight kickoff.
	MidnightIsOpen bool
}

// DefaultTimeOptions returns the options used by the club's exports.
func DefaultTimeOptions() TimeOptions {
	return TimeOptions{OpenMarker: DefaultOpenMarker, MidnightIsOpen: true}
}

// ParseClock parses "HH:MM:SS" or "HH:MM", ignoring a trailing " Uhr".
// ok is false when the value matches neither layout.
func ParseClock(raw string) (hour, minute int, ok bool) {
	raw = cleanClock(raw)
	for _, layout := range []string{"15:04:05", "15:04"} {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.Hour(), t.Minute(), true
		}
	}
	return 0, 0, false
}

// IsMidnight reports whether raw is one of the "no time fixed" sentinels.
func IsMidnight(raw string) bool {
	raw = cleanClock(raw)
	return raw == "00:00:00" || raw == "00:00"
}

// NormalizeTime converts a raw clock value to its HH:MM display form.
// The midnight sentinel becomes opts.OpenMarker when opts.MidnightIsOpen is set;
// unparseable values are returned unchanged.
func NormalizeTime(raw string, opts TimeOptions) string {
	if opts.MidnightIsOpen && IsMidnight(raw) {
		return opts.OpenMarker
	}
	hour, minute, ok := ParseClock(raw)
	if !ok {
		return raw
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// Timestamp combines a parsed date with a raw clock value in loc.
// The clock is ignored when it cannot be parsed or is the open sentinel.
// Returns time.Time{} when date is zero.
func Timestamp(date time.Time, rawTime string, opts TimeOptions, loc *time.Location) time.Time {
	if date.IsZero() {
		return time.Time{}
	}
	if loc == nil {
		loc = time.UTC
	}
	hour, minute := 0, 0
	if !(opts.MidnightIsOpen && IsMidnight(rawTime)) {
		if h, m, ok := ParseClock(rawTime); ok {
			hour, minute = h, m
		}
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc)
}

func cleanClock(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, "Uhr")
	return strings.TrimSpace(raw)
}
