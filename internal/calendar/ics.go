package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/pfrederiksen/spielplan/internal/schedule"
)

// DefaultSeparators split a SUMMARY into home and away team.
var DefaultSeparators = []string{" - ", " vs "}

const (
	layoutDate      = "20060102"
	layoutDateTime  = "20060102T150405"
	layoutDateMin   = "20060102T1504"
	layoutDateTimeZ = "20060102T150405Z"
)

// Options controls how events map onto schedule rows
type Options struct {
	Separators []string
	// HomeTeam keeps only events whose home side ends with this name.
	HomeTeam string
	// OpenPhrase in a DESCRIPTION marks the kickoff as not fixed.
	OpenPhrase string
	// OpenMarker is the time shown for events without a fixed kickoff.
	OpenMarker string
	Round      string
	Host       string
	// Location is used for floating times and unknown TZIDs, UTC when nil.
	Location *time.Location
}

// Feed holds the rows read from one calendar
type Feed struct {
	Rows    []*schedule.Row
	Skipped int // Events without a usable SUMMARY or DTSTART
	Other   int // Events dropped because they are not home games
}

var textUnescaper = strings.NewReplacer(`\,`, ",", `\;`, ";", `\n`, "\n", `\N`, "\n", `\\`, `\`)

// Parse reads all VEVENTs from r.
func Parse(r io.Reader, opts Options) (*Feed, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}

	if len(opts.Separators) == 0 {
		opts.Separators = DefaultSeparators
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	feed := &Feed{}
	for _, ev := range cal.Events() {
		summary := propertyText(ev, ics.ComponentPropertySummary)
		home, away, ok := splitSummary(summary, opts.Separators)
		if !ok {
			feed.Skipped++
			continue
		}
		if opts.HomeTeam != "" {
			if !strings.HasSuffix(home, opts.HomeTeam) {
				feed.Other++
				continue
			}
			home = opts.HomeTeam
		}

		prop := ev.GetProperty(ics.ComponentPropertyDtStart)
		if prop == nil {
			feed.Skipped++
			continue
		}
		start, dateOnly, err := parseStart(prop, opts.Location)
		if err != nil {
			feed.Skipped++
			continue
		}

		open := dateOnly
		if opts.OpenPhrase != "" && strings.Contains(propertyText(ev, ics.ComponentPropertyDescription), opts.OpenPhrase) {
			open = true
		}

		row := &schedule.Row{
			Date:  schedule.FormatDate(start),
			Time:  start.Format("15:04:05"),
			Home:  home,
			Away:  away,
			Venue: propertyText(ev, ics.ComponentPropertyLocation),
			Round: opts.Round,
			Host:  opts.Host,
			Start: start,
		}
		if open {
			row.Time = opts.OpenMarker
		}
		feed.Rows = append(feed.Rows, row)
	}

	return feed, nil
}

// splitSummary splits "Home - Away | note" on the first separator found.
func splitSummary(summary string, separators []string) (string, string, bool) {
	for _, sep := range separators {
		home, away, ok := strings.Cut(summary, sep)
		if !ok {
			continue
		}
		away, _, _ = strings.Cut(away, " | ")
		home = strings.TrimSpace(home)
		away = strings.TrimSpace(away)
		if home == "" || away == "" {
			continue
		}
		return home, away, true
	}
	return "", "", false
}

// parseStart reads a DTSTART value and returns it in loc. dateOnly is set for
// VALUE=DATE starts.
func parseStart(prop *ics.IANAProperty, loc *time.Location) (time.Time, bool, error) {
	value := strings.TrimSpace(prop.Value)

	if strings.EqualFold(param(prop, ics.ParameterValue), "DATE") || len(value) == len(layoutDate) {
		t, err := time.ParseInLocation(layoutDate, value, loc)
		return t, true, err
	}

	if strings.HasSuffix(value, "Z") {
		t, err := time.Parse(layoutDateTimeZ, value)
		if err != nil {
			return time.Time{}, false, err
		}
		return t.In(loc), false, nil
	}

	zone := loc
	if tzid := param(prop, ics.ParameterTzid); tzid != "" {
		if tz, err := time.LoadLocation(tzid); err == nil {
			zone = tz
		}
	}
	for _, layout := range []string{layoutDateTime, layoutDateMin} {
		if t, err := time.ParseInLocation(layout, value, zone); err == nil {
			return t.In(loc), false, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unrecognized DTSTART %q", value)
}

func param(prop *ics.IANAProperty, name ics.Parameter) string {
	values := prop.ICalParameters[string(name)]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func propertyText(ev *ics.VEvent, name ics.ComponentProperty) string {
	prop := ev.GetProperty(name)
	if prop == nil {
		return ""
	}
	return strings.TrimSpace(textUnescaper.Replace(prop.Value))
}
