package errz

import (
	"sort"
	"strings"
)

// MaxSuggestions is the maximum number of suggestions attached to an error.
const MaxSuggestions = 3

// Suggestion is a known name close to one that failed to resolve.
type Suggestion struct {
	Value    string
	Distance int
}

// SuggestSimilar returns up to MaxSuggestions candidates within a small edit
// distance of name, closest first. Short names tolerate fewer edits.
func SuggestSimilar(name string, candidates []string) []Suggestion {
	if name == "" || len(candidates) == 0 {
		return nil
	}
	threshold := 3
	switch {
	case len(name) <= 3:
		threshold = 1
	case len(name) <= 5:
		threshold = 2
	}
	lowered := strings.ToLower(name)
	seen := map[string]bool{}
	var out []Suggestion
	for _, candidate := range candidates {
		if candidate == "" || seen[candidate] || strings.ToLower(candidate) == lowered {
			continue
		}
		seen[candidate] = true
		if d := editDistance(lowered, strings.ToLower(candidate)); d <= threshold {
			out = append(out, Suggestion{Value: candidate, Distance: d})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// FormatSuggestions renders suggestions as a "Did you mean" sentence, or an
// empty string when there are none.
func FormatSuggestions(suggestions []Suggestion) string {
	switch len(suggestions) {
	case 0:
		return ""
	case 1:
		return "Did you mean '" + suggestions[0].Value + "'?"
	}
	quoted := make([]string, len(suggestions))
	for i, s := range suggestions {
		quoted[i] = "'" + s.Value + "'"
	}
	return "Did you mean one of: " + strings.Join(quoted, ", ") + "?"
}

// editDistance is the Levenshtein distance between a and b, computed with
// two rolling rows.
func editDistance(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) > len(br) {
		ar, br = br, ar
	}
	if len(ar) == 0 {
		return len(br)
	}
	prev := make([]int, len(ar)+1)
	curr := make([]int, len(ar)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(br); j++ {
		curr[0] = j
		for i := 1; i <= len(ar); i++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(ar)]
}
