package schedule

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxSets is the number of set score columns a volleyball export carries.
const MaxSets = 5

// SetScore holds the raw points of one set
type SetScore struct {
	Home string
	Away string
}

// BuildResult renders a scoreline such as "2:1 (25:20, 22:25, 25:18)".
// Returns "" when overall is blank. Set pairs with a blank side are left out
// and the parenthesized part is omitted when no set remains.
func BuildResult(overall string, sets []SetScore) string {
	overall = strings.TrimSpace(overall)
	if overall == "" {
		return ""
	}

	parts := make([]string, 0, len(sets))
	for _, set := range sets {
		home := strings.TrimSpace(set.Home)
		away := strings.TrimSpace(set.Away)
		if home == "" || away == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%s", scorePoint(home), scorePoint(away)))
	}

	if len(parts) == 0 {
		return overall
	}
	return fmt.Sprintf("%s (%s)", overall, strings.Join(parts, ", "))
}

// scorePoint coerces "25" or "25.0" to "25" and returns anything else as is
func scorePoint(s string) string {
	if n, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return strconv.Itoa(int(f))
	}
	return s
}
