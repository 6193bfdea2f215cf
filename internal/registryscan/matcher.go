package registryscan

import (
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Candidate is one Registry entry under consideration for attribution to
// a package id/name pair, used by MatchInstallLocation (spec.md §4.2's
// confidence-scored matching).
type Candidate struct {
	Entry    Entry
	Location string
}

// Match is a scored candidate result.
type Match struct {
	Candidate Candidate
	Score     int
}

const minAcceptScore = 70

// versionOnlyID matches ids that are pure version strings (e.g.
// "4.7.1"), rejected outright per spec.md §4.2.
var versionOnlyID = regexp.MustCompile(`^\d+(\.\d+)*$`)

// MatchInstallLocation scores each candidate against a package id/name
// pair and returns the best match, or false if nothing clears the
// minimum acceptance threshold.
func MatchInstallLocation(packageID, name string, candidates []Candidate) (Match, bool) {
	if versionOnlyID.MatchString(strings.TrimSpace(packageID)) {
		return Match{}, false
	}

	normID := normalize(packageID)
	normName := normalize(name)

	best := Match{}
	found := false
	for _, c := range candidates {
		score := scoreCandidate(normID, normName, c)
		if score >= minAcceptScore && (!found || score > best.Score) {
			best = Match{Candidate: c, Score: score}
			found = true
		}
	}
	return best, found
}

func scoreCandidate(normID, normName string, c Candidate) int {
	subKey := normalize(c.Entry.SubKey)
	displayName := normalize(c.Entry.DisplayName)

	score := 0
	switch {
	case subKey != "" && subKey == normID:
		score = 150
	case displayName != "" && displayName == normName:
		score = 145
	case subKey != "" && bestNormalizedBand(subKey, normID, normName) > 0:
		score = bestNormalizedBand(subKey, normID, normName)
	case displayName != "" && bestNormalizedBand(displayName, normID, normName) > 0:
		score = bestNormalizedBand(displayName, normID, normName)
	case containsToken(displayName, normID), containsToken(displayName, normName), containsToken(normID, displayName):
		score = 95
	default:
		return 0
	}

	if score > 0 && c.Location != "" && strings.Contains(strings.ToLower(c.Location), strings.ToLower(shortestNonEmpty(normID, normName))) {
		score += 8
	}
	return score
}

// bestNormalizedBand scores a near-but-not-exact match in the 115-135
// band spec.md §4.2 reserves for "normalized match", using edit-distance
// rank rather than hand-rolled Levenshtein.
func bestNormalizedBand(candidate, normID, normName string) int {
	best := 0
	for _, target := range []string{normID, normName} {
		if target == "" {
			continue
		}
		rank := fuzzy.RankMatchNormalizedFold(target, candidate)
		if rank < 0 {
			continue
		}
		// rank is an edit-distance-like measure; a small rank against a
		// reasonably long string is a strong normalized match.
		score := 135 - rank*4
		if score < 115 {
			score = 115
		}
		if score > best {
			best = score
		}
	}
	return best
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func containsToken(haystack, needle string) bool {
	if haystack == "" || needle == "" {
		return false
	}
	return strings.Contains(haystack, needle) || strings.Contains(needle, haystack)
}

func shortestNonEmpty(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if len(a) < len(b) {
		return a
	}
	return b
}
