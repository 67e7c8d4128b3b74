package alias

import (
	"strings"

	"github.com/agext/levenshtein"
	"github.com/pmezard/go-difflib/difflib"
)

// Similarity scores two normalized strings in [0, 1]; 1 means identical.
// Callers pass the candidate as a and the user text as b.
type Similarity interface {
	Ratio(a, b string) float64
}

// SimilarityFunc adapts a plain function to Similarity.
type SimilarityFunc func(a, b string) float64

// Ratio calls f(a, b).
func (f SimilarityFunc) Ratio(a, b string) float64 {
	return f(a, b)
}

// NewSimilarity returns the named algorithm: "ratcliff" (default) or
// "levenshtein".
func NewSimilarity(name string) Similarity {
	if name == "levenshtein" {
		return Levenshtein{}
	}
	return RatcliffObershelp{}
}

// Levenshtein scores by normalized edit distance.
type Levenshtein struct{}

// Ratio returns 1 - distance/max(len(a), len(b)), counted in runes.
func (Levenshtein) Ratio(a, b string) float64 {
	return levenshtein.Similarity(a, b, nil)
}

// RatcliffObershelp is the gestalt pattern matching ratio 2*M/T, where M is
// the number of characters in matching blocks and T the combined length.
// Scores match Python's difflib, including its autojunk heuristic on b when
// b has 200 or more runes.
type RatcliffObershelp struct{}

// Ratio computes the ratio over runes. Two empty strings score 1.
func (RatcliffObershelp) Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}
