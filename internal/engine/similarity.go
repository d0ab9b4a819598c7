package engine

import (
	"strings"

	"github.com/radup/fin-good/internal/model"
)

// Similarity thresholds. These calibrations are product behavior: changing
// any of them changes which transactions a correction propagates to, so
// they stay exactly as set.
const (
	// leadingWordWindow is how many leading description words each side
	// contributes to the leading-word comparison.
	leadingWordWindow = 3
	// leadingWordOverlapMin is the minimum shared leading words for a match.
	leadingWordOverlapMin = 2
	// keyTermMinLength is the length a word must exceed to count as a key term.
	keyTermMinLength = 3
	// keyTermOverlapMin is the minimum shared key terms for a match.
	keyTermOverlapMin = 1
)

// IsSimilar reports whether two transactions look alike for category
// propagation. It ORs three signals, short-circuiting on the first hit:
// case-insensitive vendor equality, overlap of the leading description
// words, and overlap of longer "key term" words.
func IsSimilar(candidate, reference *model.Transaction) bool {
	if candidate.Vendor != "" && reference.Vendor != "" &&
		strings.EqualFold(candidate.Vendor, reference.Vendor) {
		return true
	}

	candidateWords := strings.Fields(strings.ToLower(candidate.Description))
	referenceWords := strings.Fields(strings.ToLower(reference.Description))

	if overlap(leadingWords(candidateWords), leadingWords(referenceWords)) >= leadingWordOverlapMin {
		return true
	}

	return overlap(keyTerms(candidateWords), keyTerms(referenceWords)) >= keyTermOverlapMin
}

// leadingWords returns the set of the first leadingWordWindow words.
func leadingWords(words []string) map[string]struct{} {
	n := len(words)
	if n > leadingWordWindow {
		n = leadingWordWindow
	}

	set := make(map[string]struct{}, n)
	for _, w := range words[:n] {
		set[w] = struct{}{}
	}
	return set
}

// keyTerms returns the set of words longer than keyTermMinLength.
func keyTerms(words []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range words {
		if len(w) > keyTermMinLength {
			set[w] = struct{}{}
		}
	}
	return set
}

// overlap counts the elements present in both sets.
func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}

	count := 0
	for w := range a {
		if _, ok := b[w]; ok {
			count++
		}
	}
	return count
}
