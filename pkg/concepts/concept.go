// Package concepts models protected concepts: named groups of keywords that
// can stand in for each other, optionally constrained by grammatical
// function. Concepts come from embedded builtin sets, YAML files or caller
// code and are held in an ordered registry.
package concepts

import (
	"fmt"
	"strings"

	"github.com/ppiankov/biasprobe/pkg/textrep"
)

// Keyword is one surface form belonging to a concept.
type Keyword struct {
	Text      string   `yaml:"keyword" msgpack:"keyword"`
	Functions []string `yaml:"functions,omitempty" msgpack:"functions,omitempty"`
}

// Matches reports whether the keyword matches an annotated token, comparing
// case-insensitively against the token's surface form and lemma.
func (k Keyword) Matches(tok textrep.Token) bool {
	text := strings.ToLower(k.Text)
	return strings.ToLower(tok.Text) == text || strings.ToLower(tok.Lemma) == text
}

// AllowsSubstitute reports whether candidate may stand in for k under
// function matching. The policy: a keyword without function tags accepts any
// candidate; otherwise the two must share at least one tag.
func (k Keyword) AllowsSubstitute(candidate Keyword) bool {
	if len(k.Functions) == 0 {
		return true
	}
	for _, f := range k.Functions {
		for _, cf := range candidate.Functions {
			if f == cf {
				return true
			}
		}
	}
	return false
}

// Concept groups the keywords of one protected concept in one language.
// Keyword order is significant: generated substitutes follow it.
type Concept struct {
	Name     string    `yaml:"name" msgpack:"name"`
	Lang     string    `yaml:"lang" msgpack:"lang"`
	Keywords []Keyword `yaml:"keywords" msgpack:"keywords"`
}

// Find returns the concept keyword with the given text, case-insensitively.
func (c *Concept) Find(text string) (Keyword, bool) {
	for _, kw := range c.Keywords {
		if strings.EqualFold(kw.Text, text) {
			return kw, true
		}
	}
	return Keyword{}, false
}

// Validate checks structural soundness: a name and at least one non-empty
// keyword.
func (c *Concept) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("concept name must not be empty")
	}
	if len(c.Keywords) == 0 {
		return fmt.Errorf("concept %q has no keywords", c.Name)
	}
	for i, kw := range c.Keywords {
		if strings.TrimSpace(kw.Text) == "" {
			return fmt.Errorf("concept %q: keyword %d is empty", c.Name, i)
		}
	}
	return nil
}

// normalize lowercases keyword surfaces so sample bookkeeping and matching
// agree on one spelling.
func (c *Concept) normalize() {
	for i := range c.Keywords {
		c.Keywords[i].Text = strings.ToLower(strings.TrimSpace(c.Keywords[i].Text))
	}
}
