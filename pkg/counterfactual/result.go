package counterfactual

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/stat"

	"github.com/ppiankov/biasprobe/pkg/concepts"
	"github.com/ppiankov/biasprobe/pkg/textrep"
)

// Sample is one counterfactual variant of a source text: the occurrence of
// OrigKeyword replaced by Keyword. When both are equal the sample is the
// unperturbed baseline that anchors the keyword's score at the original
// prediction.
type Sample struct {
	Text        string                      `msgpack:"text"`
	OrigKeyword string                      `msgpack:"orig_keyword"`
	Keyword     string                      `msgpack:"keyword"`
	Concept     string                      `msgpack:"concept"`
	SourceText  string                      `msgpack:"source_text"`
	Label       string                      `msgpack:"label,omitempty"`
	Score       *float64                    `msgpack:"score,omitempty"`
	Tokenized   *textrep.TextRepresentation `msgpack:"tokenized,omitempty"`
}

// IsBaseline reports whether the sample leaves the source text unchanged.
func (s *Sample) IsBaseline() bool {
	return s.OrigKeyword == s.Keyword
}

// ConceptResult aggregates everything produced for one concept: the score
// table after duplicate removal, the keywords omitted by it, and all
// generated samples.
type ConceptResult struct {
	Concept         string      `msgpack:"concept"`
	Scores          *ScoreTable `msgpack:"scores"`
	OmittedKeywords []string    `msgpack:"omitted_keywords"`
	Samples         []*Sample   `msgpack:"samples"`
}

// DetectionResult is the outcome of one Process run, with concept results in
// registration order.
type DetectionResult struct {
	RunID          string           `msgpack:"run_id"`
	CreatedAt      time.Time        `msgpack:"created_at"`
	Lang           string           `msgpack:"lang"`
	ConceptResults []*ConceptResult `msgpack:"concept_results"`
}

// ScoresByConcept returns the score table for a concept.
func (r *DetectionResult) ScoresByConcept(name string) (*ScoreTable, error) {
	for _, cr := range r.ConceptResults {
		if cr.Concept == name {
			return cr.Scores, nil
		}
	}
	return nil, fmt.Errorf("no result for concept %q: %w", name, concepts.ErrConceptNotFound)
}

// SamplesByConcept returns the samples generated for a concept.
func (r *DetectionResult) SamplesByConcept(name string) ([]*Sample, error) {
	for _, cr := range r.ConceptResults {
		if cr.Concept == name {
			return cr.Samples, nil
		}
	}
	return nil, fmt.Errorf("no result for concept %q: %w", name, concepts.ErrConceptNotFound)
}

// ConceptSummary condenses one concept's score distributions.
type ConceptSummary struct {
	Concept      string
	Keywords     int     // score columns after duplicate removal
	Samples      int     // generated samples
	Omitted      int     // keywords dropped as duplicates
	MaxMeanShift float64 // largest |mean| over the keyword score series
	MaxStdDev    float64 // largest standard deviation over the keyword score series
}

// Summary computes per-concept roll-ups in result order. A large MaxMeanShift
// points at a keyword the model treats as signal; a large MaxStdDev at one
// whose effect depends heavily on context.
func (r *DetectionResult) Summary() []ConceptSummary {
	out := make([]ConceptSummary, 0, len(r.ConceptResults))
	for _, cr := range r.ConceptResults {
		s := ConceptSummary{
			Concept:  cr.Concept,
			Keywords: cr.Scores.Len(),
			Samples:  len(cr.Samples),
			Omitted:  len(cr.OmittedKeywords),
		}
		for _, col := range cr.Scores.Columns {
			if len(col.Scores) == 0 {
				continue
			}
			mean := math.Abs(stat.Mean(col.Scores, nil))
			if mean > s.MaxMeanShift {
				s.MaxMeanShift = mean
			}
			if len(col.Scores) > 1 {
				if sd := stat.StdDev(col.Scores, nil); sd > s.MaxStdDev {
					s.MaxStdDev = sd
				}
			}
		}
		out = append(out, s)
	}
	return out
}

// Save writes the result to path in a compact binary form restorable with
// Load.
func (r *DetectionResult) Save(path string) error {
	data, err := msgpack.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// Load reads a result previously written by Save.
func Load(path string) (*DetectionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read result: %w", err)
	}
	var r DetectionResult
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &r, nil
}
