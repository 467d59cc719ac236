package services

import (
	"sort"
	"strings"
	"unicode"

	"census-backend/internal/adapters/persistence/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Relevance follows the text-index scoring model: each distinct query term
// found in a field adds weight * (0.5 * freq / fieldTokens + 0.5).
const (
	fullnameWeight       = 1.0
	identityNumberWeight = 1.0
	thresholdPerWord     = 0.3
	maxThresholdWords    = 3
)

// lower case-folds s. Casers keep state, so each call gets its own.
func lower(s string) string {
	return cases.Fold().String(s)
}

// fold lowercases and strips diacritics so "Nguyễn" and "nguyen" compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.NewReplacer("đ", "d", "Đ", "d").Replace(out)
	return lower(out)
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// tokenize returns the folded words of s.
func tokenize(s string) []string {
	return splitWords(fold(s))
}

// prefilterTerms are the LIKE terms handed to the store: folded words plus
// their original lowercase spelling, for stores that compare accents strictly.
func prefilterTerms(keyword string) []string {
	seen := map[string]bool{}
	var out []string
	for _, w := range splitWords(keyword) {
		for _, t := range []string{lower(w), fold(w)} {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

func fieldScore(terms []string, field string, weight float64) float64 {
	tokens := tokenize(field)
	if len(tokens) == 0 {
		return 0
	}
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	score := 0.0
	for _, term := range terms {
		if n := freq[term]; n > 0 {
			score += weight * (0.5*float64(n)/float64(len(tokens)) + 0.5)
		}
	}
	return score
}

type scoredCandidate struct {
	identityNumber string
	score          float64
}

// rankCandidates scores candidates against keyword, drops those below the
// word-count threshold and returns identity numbers best first.
func rankCandidates(keyword string, candidates []models.SearchCandidate) []string {
	words := tokenize(keyword)
	terms := make([]string, 0, len(words))
	seen := map[string]bool{}
	for _, w := range words {
		if !seen[w] {
			seen[w] = true
			terms = append(terms, w)
		}
	}

	wordCount := len(words)
	if wordCount > maxThresholdWords {
		wordCount = maxThresholdWords
	}
	threshold := thresholdPerWord * float64(wordCount)

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		score := fieldScore(terms, c.Fullname, fullnameWeight) +
			fieldScore(terms, c.IdentityNumber, identityNumberWeight)
		if score < threshold || score == 0 {
			continue
		}
		scored = append(scored, scoredCandidate{identityNumber: c.IdentityNumber, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].identityNumber < scored[j].identityNumber
	})

	out := make([]string, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.identityNumber)
	}
	return out
}
