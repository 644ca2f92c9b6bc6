package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/ppiankov/biasprobe/pkg/counterfactual"
)

type jsonResult struct {
	RunID     string        `json:"run_id"`
	CreatedAt time.Time     `json:"created_at"`
	Lang      string        `json:"lang"`
	Concepts  []jsonConcept `json:"concepts"`
}

type jsonConcept struct {
	Concept         string        `json:"concept"`
	Samples         int           `json:"samples"`
	OmittedKeywords []string      `json:"omitted_keywords,omitempty"`
	Keywords        []jsonKeyword `json:"keywords"`
}

type jsonKeyword struct {
	Keyword string    `json:"keyword"`
	Scores  []float64 `json:"scores"`
	Mean    float64   `json:"mean"`
	StdDev  float64   `json:"stddev"`
}

// RenderJSON writes the result to path as indented JSON. Score columns are
// exported at their natural lengths; JSON has no NaN, so no padding happens.
func (r *Renderer) RenderJSON(result *counterfactual.DetectionResult, path string) error {
	out := jsonResult{
		RunID:     result.RunID,
		CreatedAt: result.CreatedAt,
		Lang:      result.Lang,
		Concepts:  make([]jsonConcept, 0, len(result.ConceptResults)),
	}

	for _, cr := range result.ConceptResults {
		jc := jsonConcept{
			Concept:         cr.Concept,
			Samples:         len(cr.Samples),
			OmittedKeywords: cr.OmittedKeywords,
			Keywords:        make([]jsonKeyword, 0, cr.Scores.Len()),
		}
		for _, col := range cr.Scores.Columns {
			jk := jsonKeyword{Keyword: col.Keyword, Scores: col.Scores}
			if len(col.Scores) > 0 {
				jk.Mean = stat.Mean(col.Scores, nil)
			}
			if len(col.Scores) > 1 {
				jk.StdDev = stat.StdDev(col.Scores, nil)
			}
			jc.Keywords = append(jc.Keywords, jk)
		}
		out.Concepts = append(out.Concepts, jc)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}
