package recipe

import (
	"fmt"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ParseError is a single malformed-recipe-line failure: the line number
// it occurred on plus a human message. The parser stops at the first
// one, mirroring how a contestant-facing tool should fail loud rather
// than guess at recovery.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("recipe: line %d: %s", e.Line, e.Message)
}

// suggest appends a "did you mean X?" hint to msg when candidates
// contains a close match for got, and returns msg unchanged otherwise.
func suggest(msg, got string, candidates []string) string {
	if len(candidates) == 0 {
		return msg
	}
	ranks := fuzzy.RankFindFold(got, candidates)
	if len(ranks) == 0 {
		return msg
	}
	best := ranks[0]
	for _, r := range ranks {
		if r.Distance < best.Distance {
			best = r
		}
	}
	if best.Distance > len(got)/2+2 {
		return msg
	}
	return fmt.Sprintf("%s (did you mean %q?)", msg, best.Target)
}
