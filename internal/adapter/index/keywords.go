package index

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[a-z]{3,}`)

// stopwords is intentionally small: the lexical strategy only needs to keep
// filler words from dominating short queries.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "day": {}, "get": {}, "has": {},
	"him": {}, "his": {}, "how": {}, "man": {}, "new": {}, "now": {},
	"old": {}, "see": {}, "two": {}, "way": {}, "who": {}, "boy": {},
	"did": {}, "its": {}, "let": {}, "put": {}, "say": {}, "she": {},
	"too": {}, "use": {},
}

// extractKeywords lowercases the text and returns its alphabetic tokens of
// length >= 3 with stopwords removed. Duplicates are kept: similarity is
// computed over multisets.
func extractKeywords(text string) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := stopwords[w]; stop {
			continue
		}
		keywords = append(keywords, w)
	}
	return keywords
}

// jaccard computes the multiset Jaccard index of two keyword lists:
// |intersection| / |union| with duplicate occurrences counted.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	countA := make(map[string]int, len(a))
	for _, w := range a {
		countA[w]++
	}
	countB := make(map[string]int, len(b))
	for _, w := range b {
		countB[w]++
	}

	intersection := 0
	union := 0
	for w, ca := range countA {
		cb := countB[w]
		if cb < ca {
			intersection += cb
			union += ca
		} else {
			intersection += ca
			union += cb
		}
	}
	for w, cb := range countB {
		if _, seen := countA[w]; !seen {
			union += cb
		}
	}

	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
