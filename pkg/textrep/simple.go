package textrep

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Coarse tags assigned by the simple annotator.
const (
	TagWord  = "WORD"
	TagNum   = "NUM"
	TagPunct = "PUNCT"
)

// SimpleAnnotator is a deterministic rule-based annotator: runs of letters and
// digits become word tokens, everything else that is not whitespace becomes a
// single punctuation token. Lemmas are lowercased surface forms and no
// grammatical functions are assigned. It is good enough for keyword probing
// and needs no external service; it is not a linguistic parser.
type SimpleAnnotator struct{}

// NewSimpleAnnotator creates a simple annotator.
func NewSimpleAnnotator() *SimpleAnnotator {
	return &SimpleAnnotator{}
}

// Annotate tokenizes every text. The only failure mode is a cancelled context.
func (a *SimpleAnnotator) Annotate(ctx context.Context, texts []string) ([]*TextRepresentation, error) {
	reps := make([]*TextRepresentation, 0, len(texts))
	for _, text := range texts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		reps = append(reps, &TextRepresentation{Text: text, Tokens: tokenize(text)})
	}
	return reps, nil
}

func tokenize(text string) []Token {
	var tokens []Token
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case isWordRune(r):
			start := i
			digitsOnly := true
			for i < len(text) {
				r, size := utf8.DecodeRuneInString(text[i:])
				if !isWordRune(r) {
					break
				}
				if !unicode.IsDigit(r) {
					digitsOnly = false
				}
				i += size
			}
			surface := text[start:i]
			tag := TagWord
			if digitsOnly {
				tag = TagNum
			}
			tokens = append(tokens, Token{
				Text:  surface,
				Lemma: strings.ToLower(surface),
				Tag:   tag,
				Start: start,
				End:   i,
			})
		default:
			tokens = append(tokens, Token{
				Text:  text[i : i+size],
				Lemma: text[i : i+size],
				Tag:   TagPunct,
				Start: i,
				End:   i + size,
			})
			i += size
		}
	}
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
