package normalize

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pfrederiksen/spielplan/internal/config"
	"github.com/pfrederiksen/spielplan/internal/schedule"
)

// Assigner picks the club team code for a row of one source table
type Assigner interface {
	Assign(row *schedule.Row) string
}

// Fixed assigns the same code to every row
type Fixed struct {
	Code string
}

// Assign returns the fixed code.
func (f Fixed) Assign(*schedule.Row) string {
	return f.Code
}

// Numeral tells teams apart by the roman numeral following a club name.
// A club derby names two numerals and gets both codes.
type Numeral struct {
	Names    []string
	Numerals []config.NumeralCode
	// Combined is assigned when no numeral is found.
	Combined string
}

// Assign returns the codes of all numerals found after a club name in the
// row's participant fields, sorted and joined with "/", or Combined.
func (n Numeral) Assign(row *schedule.Row) string {
	text := strings.Join(row.MatchFields(), " | ")
	var codes []string
	for _, nc := range n.Numerals {
		for _, name := range n.Names {
			if containsWord(text, name+" "+nc.Numeral) {
				if !slices.Contains(codes, nc.Code) {
					codes = append(codes, nc.Code)
				}
				break
			}
		}
	}
	if len(codes) == 0 {
		return n.Combined
	}
	sort.Strings(codes)
	return strings.Join(codes, "/")
}

// AgeGroup derives the code from the trailing characters of the round label,
// e.g. "NRW-Liga wU18" with prefix "USC-" gives "USC-U18".
type AgeGroup struct {
	Prefix    string
	Suffix    string
	SuffixLen int
	// Default is used when the round label is too short.
	Default string
}

// Assign returns the age-group code or Default.
func (a AgeGroup) Assign(row *schedule.Row) string {
	round := strings.TrimSpace(row.Round)
	if a.SuffixLen <= 0 || utf8.RuneCountInString(round) < a.SuffixLen {
		return a.Default
	}
	runes := []rune(round)
	group := strings.ToUpper(string(runes[len(runes)-a.SuffixLen:]))
	if strings.IndexFunc(group, unicode.IsSpace) >= 0 {
		return a.Default
	}
	return a.Prefix + group + a.Suffix
}

// NewAssigner builds the assigner for a source's rule.
func NewAssigner(src config.Source, club config.Club) (Assigner, error) {
	switch src.Rule.Kind {
	case config.RuleFixed, "":
		return Fixed{Code: src.TeamCode}, nil
	case config.RuleNumeral:
		combined := src.Rule.Combined
		if combined == "" {
			combined = src.TeamCode
		}
		return Numeral{Names: club.Names, Numerals: src.Rule.Numerals, Combined: combined}, nil
	case config.RuleAgeGroup:
		return AgeGroup{
			Prefix:    src.Rule.Prefix,
			Suffix:    src.Rule.Suffix,
			SuffixLen: src.Rule.SuffixLen,
			Default:   src.TeamCode,
		}, nil
	default:
		return nil, fmt.Errorf("source %s: unknown rule kind %q", src.ID, src.Rule.Kind)
	}
}
