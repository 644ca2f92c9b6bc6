// Package counterfactual probes binary text classifiers for concept bias: it
// finds protected-concept keywords in annotated texts, swaps them for
// same-concept substitutes, scores original and counterfactual texts through
// a predictor and aggregates the signed probability shifts per keyword.
package counterfactual

import (
	"github.com/ppiankov/biasprobe/pkg/concepts"
	"github.com/ppiankov/biasprobe/pkg/textrep"
)

// Occurrence is one concept keyword found at one token position.
type Occurrence struct {
	Keyword    concepts.Keyword
	TokenIndex int
}

// Occurrences scans a text representation for the concept's keywords and
// returns every match. Keywords are scanned in concept order, token positions
// in text order, so the result is deterministic. A text without matches
// yields an empty slice.
func Occurrences(c *concepts.Concept, rep *textrep.TextRepresentation) []Occurrence {
	var out []Occurrence
	for _, kw := range c.Keywords {
		for i, tok := range rep.Tokens {
			if kw.Matches(tok) {
				out = append(out, Occurrence{Keyword: kw, TokenIndex: i})
			}
		}
	}
	return out
}

// hasOccurrence is a short-circuit form of Occurrences for detection.
func hasOccurrence(c *concepts.Concept, rep *textrep.TextRepresentation) bool {
	for _, kw := range c.Keywords {
		for _, tok := range rep.Tokens {
			if kw.Matches(tok) {
				return true
			}
		}
	}
	return false
}
