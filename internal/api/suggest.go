package api

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// suggest returns the known id closest to a mistyped one, if any is close enough.
func suggest(id string, known []string) (string, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	if len(id) < 3 {
		return "", false
	}

	best, bestDist := "", -1
	for _, cand := range known {
		dist := levenshtein.ComputeDistance(id, strings.ToLower(cand))
		if dist > levenshteinLimit(len(cand)) {
			continue
		}
		if bestDist == -1 || dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	return best, bestDist != -1
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
