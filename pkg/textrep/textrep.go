// Package textrep holds the annotated text form the probing pipeline works
// on: tokens with offsets, lemmas and coarse tags, produced by an Annotator.
package textrep

import "context"

// Token is a single annotated token of a text.
type Token struct {
	Text      string   `msgpack:"text"`                // surface form as written
	Lemma     string   `msgpack:"lemma"`               // base form, lowercased
	Tag       string   `msgpack:"tag"`                 // coarse part-of-speech tag
	Functions []string `msgpack:"functions,omitempty"` // grammatical function labels
	Start     int      `msgpack:"start"`               // byte offset of the first byte
	End       int      `msgpack:"end"`                 // byte offset one past the last byte
}

// TextRepresentation is the annotated form of one text. Start/End offsets of
// its tokens index into Text.
type TextRepresentation struct {
	Text   string  `msgpack:"text"`
	Tokens []Token `msgpack:"tokens"`
}

// Annotator turns a batch of texts into text representations, one per input
// text in input order.
type Annotator interface {
	Annotate(ctx context.Context, texts []string) ([]*TextRepresentation, error)
}
