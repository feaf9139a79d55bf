package routes

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// minSuggestionSimilarity is the Levenshtein similarity a known path needs
// before it is offered as a replacement.
const minSuggestionSimilarity = 0.6

// Paths lists every distinct full path some route renders, sorted.
// Dynamic and splat segments are kept in their route form.
func Paths(tree *Tree) []string {
	if tree == nil {
		return nil
	}
	seen := make(map[string]struct{})
	tree.Walk(func(r *Route, fullPath string, _ int) bool {
		if r.Kind != KindPathless {
			seen[fullPath] = struct{}{}
		}
		return true
	})
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Suggest returns the known route path closest to an unmatched path.
func Suggest(tree *Tree, path string) (string, bool) {
	best, bestScore := "", float32(0)
	for _, candidate := range Paths(tree) {
		if candidate == path || strings.Contains(candidate, "*") {
			continue
		}
		score, err := edlib.StringsSimilarity(path, candidate, edlib.Levenshtein)
		if err != nil {
			continue
		}
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	if bestScore < minSuggestionSimilarity {
		return "", false
	}
	return best, true
}
