package counterfactual

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/biasprobe/pkg/concepts"
	"github.com/ppiankov/biasprobe/pkg/textrep"
)

// sourceText couples an annotated text with its optional label.
type sourceText struct {
	rep   *textrep.TextRepresentation
	label string
}

// extractSamples generates counterfactual samples for one concept across the
// detected texts. Every keyword occurrence is handled independently: its
// substitutes are the other concept keywords in concept order, filtered by
// function compatibility when respectFunction is set, truncated so that with
// the unperturbed baseline (always appended last) at most perText samples
// exist per occurrence. Returns the samples and the number of texts that
// contributed at least one occurrence.
func extractSamples(c *concepts.Concept, sources []sourceText, perText int, respectFunction bool) ([]*Sample, int) {
	var samples []*Sample
	originals := 0

	for _, src := range sources {
		occs := Occurrences(c, src.rep)
		if len(occs) == 0 {
			continue
		}
		originals++

		for _, occ := range occs {
			tok := src.rep.Tokens[occ.TokenIndex]
			for _, substitute := range substitutes(c, occ.Keyword, perText, respectFunction) {
				styled := styleLike(substitute.Text, tok.Text)
				samples = append(samples, &Sample{
					Text:        replaceSpan(src.rep.Text, tok.Start, tok.End, styled),
					OrigKeyword: occ.Keyword.Text,
					Keyword:     substitute.Text,
					Concept:     c.Name,
					SourceText:  src.rep.Text,
					Label:       src.label,
					Tokenized:   src.rep,
				})
			}
		}
	}
	return samples, originals
}

// substitutes returns the candidate keywords for one occurrence: the other
// concept keywords in concept order, optionally restricted to function
// matches, capped at perText-1 so the baseline (the original keyword,
// appended last) always fits inside the cap.
func substitutes(c *concepts.Concept, original concepts.Keyword, perText int, respectFunction bool) []concepts.Keyword {
	var candidates []concepts.Keyword
	for _, kw := range c.Keywords {
		if kw.Text == original.Text {
			continue
		}
		if respectFunction && !original.AllowsSubstitute(kw) {
			continue
		}
		candidates = append(candidates, kw)
	}

	if perText > 0 && len(candidates) > perText-1 {
		candidates = candidates[:perText-1]
	}
	return append(candidates, original)
}

// replaceSpan substitutes text[start:end] with repl.
func replaceSpan(text string, start, end int, repl string) string {
	return text[:start] + repl + text[end:]
}

// styleLike renders the substitute in the casing style of the replaced token:
// Title case and all-caps are carried over, anything else stays as stored
// (lower case).
func styleLike(substitute, original string) string {
	switch {
	case isTitleCase(original):
		return upperFirst(substitute)
	case isAllUpper(original):
		return strings.ToUpper(substitute)
	default:
		return substitute
	}
}

func isTitleCase(s string) bool {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError || !unicode.IsUpper(first) {
		return false
	}
	for _, r := range s[size:] {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func isAllUpper(s string) bool {
	if utf8.RuneCountInString(s) < 2 {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func upperFirst(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(first)) + s[size:]
}
