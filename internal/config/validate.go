package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validate checks that the configuration can drive a generation run.
//
// Besides structural checks it enforces the conditions that keep name
// canonicalization idempotent: no team code may contain a long-form club name,
// and no age-group code may contain the alias it replaces.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Club.Keywords) == 0 {
		errs = append(errs, errors.New("club.keywords must not be empty"))
	}
	for i, kw := range c.Club.Keywords {
		if strings.TrimSpace(kw) == "" {
			errs = append(errs, fmt.Errorf("club.keywords[%d] must not be blank", i))
		}
	}
	if c.Club.CodePrefix == "" {
		errs = append(errs, errors.New("club.code_prefix must not be empty"))
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		errs = append(errs, fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if len(c.Sources) == 0 {
		errs = append(errs, errors.New("at least one source is required"))
	}

	seen := make(map[string]bool)
	for i, src := range c.Sources {
		if src.ID == "" {
			errs = append(errs, fmt.Errorf("sources[%d]: id must not be empty", i))
		} else if seen[src.ID] {
			errs = append(errs, fmt.Errorf("sources[%d]: duplicate id %q", i, src.ID))
		}
		seen[src.ID] = true

		if (src.Path == "") == (src.URL == "") {
			errs = append(errs, fmt.Errorf("source %q: exactly one of path or url is required", src.ID))
		}
		if src.Format != FormatCSV && src.Format != FormatICS {
			errs = append(errs, fmt.Errorf("source %q: unknown format %q", src.ID, src.Format))
		}
		if err := src.Rule.validate(src.TeamCode); err != nil {
			errs = append(errs, fmt.Errorf("source %q: %w", src.ID, err))
		}
	}

	for _, code := range c.codes() {
		if name, ok := c.containsName(code); ok {
			errs = append(errs, fmt.Errorf("team code %q contains club name %q", code, name))
		}
	}
	for _, t := range c.Teams {
		if t.Code == "" {
			errs = append(errs, errors.New("teams: code must not be empty"))
		}
		if t.Alias != "" && strings.Contains(t.Code, t.Alias) {
			errs = append(errs, fmt.Errorf("team %q contains its alias %q", t.Code, t.Alias))
		}
	}

	return errors.Join(errs...)
}

func (r Rule) validate(teamCode string) error {
	switch r.Kind {
	case RuleFixed:
		if teamCode == "" {
			return errors.New("fixed rule requires team_code")
		}
	case RuleNumeral:
		if len(r.Numerals) == 0 {
			return errors.New("numeral rule requires numerals")
		}
		for _, n := range r.Numerals {
			if n.Numeral == "" || n.Code == "" {
				return errors.New("numeral entries require numeral and code")
			}
		}
		if r.Combined == "" && teamCode == "" {
			return errors.New("numeral rule requires combined or team_code")
		}
	case RuleAgeGroup:
		if r.Prefix == "" && teamCode == "" {
			return errors.New("agegroup rule requires prefix or team_code")
		}
	default:
		return fmt.Errorf("unknown rule kind %q", r.Kind)
	}
	return nil
}

// codes lists every team code the configuration can produce or mention
func (c *Config) codes() []string {
	codes := make([]string, 0, len(c.Teams)+len(c.Sources)+8)
	for n := 1; n <= 8; n++ {
		codes = append(codes, fmt.Sprintf("%s%d", c.Club.CodePrefix, n))
	}
	for _, t := range c.Teams {
		codes = append(codes, t.Code)
	}
	for _, src := range c.Sources {
		codes = append(codes, src.TeamCode, src.Rule.Combined, src.Rule.Prefix)
		for _, n := range src.Rule.Numerals {
			codes = append(codes, n.Code)
		}
	}
	return codes
}

// containsName reports the first club name found in code, ignoring case
func (c *Config) containsName(code string) (string, bool) {
	lower := strings.ToLower(code)
	for _, name := range c.Club.Names {
		if name != "" && strings.Contains(lower, strings.ToLower(name)) {
			return name, true
		}
	}
	return "", false
}
