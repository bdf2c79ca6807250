// Package suggest picks the known name a misspelled identifier most likely meant.
package suggest

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Closest returns the candidate closest to target, or "" when nothing is
// close enough to be worth suggesting. Subsequence matches ("cout" in
// "count") are preferred; otherwise the candidate with the smallest edit
// distance wins. Ties go to the alphabetically first name.
func Closest(target string, candidates []string) string {
	if target == "" || len(candidates) == 0 {
		return ""
	}

	names := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if c == target || seen[c] {
			continue
		}
		seen[c] = true
		names = append(names, c)
	}
	sort.Strings(names)

	limit := maxDistance(target)

	ranks := fuzzy.RankFindFold(target, names)
	sort.Stable(ranks)
	if len(ranks) > 0 && ranks[0].Distance <= limit {
		return ranks[0].Target
	}

	best, bestDist := "", limit+1
	for _, name := range names {
		if d := fuzzy.LevenshteinDistance(target, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// Hint formats a suggestion for a diagnostic, or returns "" if there is none.
func Hint(target string, candidates []string) string {
	if best := Closest(target, candidates); best != "" {
		return "did you mean '" + best + "'?"
	}
	return ""
}

func maxDistance(target string) int {
	if n := len([]rune(target)) / 3; n > 2 {
		return n
	}
	return 2
}
