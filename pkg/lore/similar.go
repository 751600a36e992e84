package lore

import (
	"sort"
	"strings"
)

const (
	substringScore = 0.9
	minScore       = 0.3
	// MaxSuggestions is how many suggestions a failed lookup returns.
	MaxSuggestions = 3
)

// Ratio returns the Ratcliff/Obershelp similarity of a and b in [0, 1]:
// twice the number of matching characters over the total length.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingRunes(ra, rb)) / float64(total)
}

func matchingRunes(a, b []rune) int {
	i, j, k := longestMatch(a, b)
	if k == 0 {
		return 0
	}
	return k + matchingRunes(a[:i], b[:j]) + matchingRunes(a[i+k:], b[j+k:])
}

// longestMatch finds the longest common substring, preferring the earliest
// start in a and then in b.
func longestMatch(a, b []rune) (int, int, int) {
	bestI, bestJ, bestK := 0, 0, 0
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := range a {
		for j := range b {
			if a[i] == b[j] {
				cur[j+1] = prev[j] + 1
				k := cur[j+1]
				if k > bestK {
					bestI, bestJ, bestK = i-k+1, j-k+1, k
				}
			} else {
				cur[j+1] = 0
			}
		}
		prev, cur = cur, prev
	}
	return bestI, bestJ, bestK
}

// Score rates how well candidate matches query. Substring containment in
// either direction scores 0.9; anything else uses Ratio.
func Score(query, candidate string) float64 {
	q, c := strings.ToLower(query), strings.ToLower(candidate)
	if strings.Contains(c, q) || strings.Contains(q, c) {
		return substringScore
	}
	return Ratio(q, c)
}

// FindSimilar returns up to limit candidates most similar to query, best
// first, dropping any that score 0.3 or less. Ties keep candidate order.
func FindSimilar(query string, candidates []string, limit int) []string {
	type scored struct {
		candidate string
		score     float64
	}
	seen := make(map[string]bool, len(candidates))
	var all []scored
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		all = append(all, scored{candidate: c, score: Score(query, c)})
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].score > all[j].score
	})

	out := []string{}
	for i, s := range all {
		if i >= limit {
			break
		}
		if s.score > minScore {
			out = append(out, s.candidate)
		}
	}
	return out
}
