package dictionary

import (
	"sort"
	"strings"
)

// MaxSuggestions is the ranked suggestion list cap.
const MaxSuggestions = 5

// Levenshtein returns the edit distance between a and b, computed over
// runes with two rolling rows.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(
				prev[j]+1,      // deletion
				cur[j-1]+1,     // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

// RankSuggestions orders raw candidates by ascending edit distance from
// the query, comparing lowercased forms. Ties keep first-seen order,
// duplicates by surface form are dropped, and the result is truncated to
// max (MaxSuggestions when max is zero or negative). An empty result is a
// legitimate "no suggestions available" outcome.
func RankSuggestions(query string, candidates []string, max int) []string {
	if max <= 0 {
		max = MaxSuggestions
	}
	if len(candidates) == 0 {
		return nil
	}

	lowerQuery := strings.ToLower(query)

	type ranked struct {
		word string
		dist int
	}
	seen := make(map[string]struct{}, len(candidates))
	items := make([]ranked, 0, len(candidates))
	for _, cand := range candidates {
		if cand == "" {
			continue
		}
		if _, dup := seen[cand]; dup {
			continue
		}
		seen[cand] = struct{}{}
		items = append(items, ranked{
			word: cand,
			dist: Levenshtein(lowerQuery, strings.ToLower(cand)),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].dist < items[j].dist
	})

	if len(items) > max {
		items = items[:max]
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.word
	}
	return out
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
