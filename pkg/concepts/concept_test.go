package concepts

import (
	"testing"

	"github.com/ppiankov/biasprobe/pkg/textrep"
)

func TestKeywordMatches(t *testing.T) {
	kw := Keyword{Text: "she"}

	tests := []struct {
		name  string
		token textrep.Token
		want  bool
	}{
		{"surface match", textrep.Token{Text: "she", Lemma: "she"}, true},
		{"case insensitive surface", textrep.Token{Text: "She", Lemma: "she"}, true},
		{"lemma match", textrep.Token{Text: "SHE", Lemma: "she"}, true},
		{"lemma only", textrep.Token{Text: "shes", Lemma: "she"}, true},
		{"no match", textrep.Token{Text: "he", Lemma: "he"}, false},
		{"substring is not a match", textrep.Token{Text: "shell", Lemma: "shell"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := kw.Matches(tt.token); got != tt.want {
				t.Errorf("Matches(%+v) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestKeywordAllowsSubstitute(t *testing.T) {
	tests := []struct {
		name      string
		original  Keyword
		candidate Keyword
		want      bool
	}{
		{
			"shared function",
			Keyword{Text: "he", Functions: []string{"subject"}},
			Keyword{Text: "she", Functions: []string{"subject"}},
			true,
		},
		{
			"no shared function",
			Keyword{Text: "he", Functions: []string{"subject"}},
			Keyword{Text: "him", Functions: []string{"object"}},
			false,
		},
		{
			"original without tags accepts anything",
			Keyword{Text: "doctor"},
			Keyword{Text: "him", Functions: []string{"object"}},
			true,
		},
		{
			"candidate without tags is rejected by a tagged original",
			Keyword{Text: "he", Functions: []string{"subject"}},
			Keyword{Text: "doctor"},
			false,
		},
		{
			"overlap among several tags",
			Keyword{Text: "her", Functions: []string{"object", "possessive"}},
			Keyword{Text: "his", Functions: []string{"possessive"}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.original.AllowsSubstitute(tt.candidate); got != tt.want {
				t.Errorf("AllowsSubstitute = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConceptFind(t *testing.T) {
	c := &Concept{
		Name: "gender",
		Lang: "en",
		Keywords: []Keyword{
			{Text: "he", Functions: []string{"subject"}},
			{Text: "she", Functions: []string{"subject"}},
		},
	}

	kw, ok := c.Find("SHE")
	if !ok {
		t.Fatal("expected to find keyword 'she'")
	}
	if kw.Text != "she" {
		t.Errorf("expected keyword 'she', got %q", kw.Text)
	}

	if _, ok := c.Find("they"); ok {
		t.Error("did not expect to find keyword 'they'")
	}
}

func TestConceptValidate(t *testing.T) {
	tests := []struct {
		name    string
		concept Concept
		wantErr bool
	}{
		{"valid", Concept{Name: "gender", Keywords: []Keyword{{Text: "he"}}}, false},
		{"empty name", Concept{Keywords: []Keyword{{Text: "he"}}}, true},
		{"no keywords", Concept{Name: "gender"}, true},
		{"empty keyword", Concept{Name: "gender", Keywords: []Keyword{{Text: "  "}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.concept.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
