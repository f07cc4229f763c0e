package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pfrederiksen/spielplan/internal/config"
)

// suffixes are the roman team numerals, longest first.
var suffixes = []struct {
	numeral string
	n       int
}{
	{"VIII", 8}, {"VII", 7}, {"VI", 6}, {"V", 5}, {"IV", 4}, {"III", 3}, {"II", 2},
}

type replacement struct {
	from string
	to   string
}

// Canonicalizer replaces long-form club names with team codes
type Canonicalizer struct {
	global  []replacement
	aliases map[string]replacement // keyed by team code
	stray   *regexp.Regexp
}

// NewCanonicalizer builds the replacement tables for a club.
// Every name gets its numbered variants, then the bare name maps to the first
// team. Teams with an alias get a secondary substitution of alias to code.
func NewCanonicalizer(club config.Club, teams []config.Team) *Canonicalizer {
	c := &Canonicalizer{aliases: make(map[string]replacement)}

	for _, name := range club.Names {
		if name == "" {
			continue
		}
		for _, s := range suffixes {
			c.global = append(c.global, replacement{
				from: name + " " + s.numeral,
				to:   fmt.Sprintf("%s%d", club.CodePrefix, s.n),
			})
		}
		c.global = append(c.global, replacement{from: name, to: club.CodePrefix + "1"})
	}

	for _, t := range teams {
		if t.Alias != "" && t.Code != "" {
			c.aliases[t.Code] = replacement{from: t.Alias, to: t.Code}
		}
	}

	c.stray = regexp.MustCompile(`\b(` + regexp.QuoteMeta(club.CodePrefix) +
		`-U\d+(?:-\d+)?)(?: (?:VIII|VII|VI|IV|V|III|II|I))+\b`)
	return c
}

// Canonicalize rewrites s for a row belonging to teamCode.
// Applying it to its own output returns the output unchanged.
func (c *Canonicalizer) Canonicalize(s, teamCode string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	for _, r := range c.global {
		s = replaceWord(s, r.from, r.to)
	}
	if r, ok := c.aliases[teamCode]; ok {
		s = replaceWord(s, r.from, r.to)
	}
	return c.stray.ReplaceAllString(s, "$1")
}
