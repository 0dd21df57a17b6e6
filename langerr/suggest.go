package langerr

import (
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// suggestionThreshold is the largest fuzzy distance at which a candidate is
// still surfaced; a candidate any farther from the misspelled name is
// considered not worth suggesting.
const suggestionThreshold = 3

// Suggest returns the closest name in known to name, or "" if none of the
// candidates are close enough to be a plausible typo fix. It never panics on
// an empty known set.
func Suggest(name string, known []string) string {
	if len(known) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindNormalizedFold(name, known)
	if len(ranks) == 0 {
		return ""
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	if best.Distance > suggestionThreshold {
		return ""
	}
	return best.Target
}

// UnknownReferenceWithSuggestion builds an UnknownReference error and fills
// in its Suggestion field by fuzzy-matching name against known.
func UnknownReferenceWithSuggestion(entity, name string, known []string) *Error {
	return UnknownReference(entity, name, Suggest(name, known))
}
