package cli

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// suggestMaxDistance caps how far a category name may be from the input
// before the suggestion is considered noise.
const suggestMaxDistance = 3

// SuggestCategory returns the known category name closest to the input,
// for "did you mean" hints when a correction names an unseen category.
// Reports false when nothing is close enough to be useful.
func SuggestCategory(input string, known []string) (string, bool) {
	best := ""
	bestDist := suggestMaxDistance + 1

	for _, candidate := range known {
		dist := levenshtein.ComputeDistance(
			strings.ToLower(input),
			strings.ToLower(candidate))
		if dist < bestDist {
			best = candidate
			bestDist = dist
		}
	}

	if best == "" || bestDist == 0 {
		return "", false
	}
	return best, true
}
