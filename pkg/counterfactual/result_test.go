package counterfactual

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/biasprobe/pkg/concepts"
)

func TestDetectionResult_SaveLoad_Roundtrip(t *testing.T) {
	score := -0.8
	result := &DetectionResult{
		RunID:     "run-1",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Lang:      "en",
		ConceptResults: []*ConceptResult{{
			Concept: "gender",
			Scores: &ScoreTable{Columns: []ScoreColumn{
				{Keyword: "she", Scores: []float64{-0.8}},
			}},
			OmittedKeywords: []string{"hers"},
			Samples: []*Sample{{
				Text:        "She is a doctor.",
				OrigKeyword: "he",
				Keyword:     "she",
				Concept:     "gender",
				SourceText:  "He is a doctor.",
				Label:       "clean",
				Score:       &score,
			}},
		}},
	}

	path := filepath.Join(t.TempDir(), "result.bin")
	if err := result.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.RunID != result.RunID || loaded.Lang != result.Lang {
		t.Errorf("Expected run metadata preserved, got %s / %s", loaded.RunID, loaded.Lang)
	}
	if !loaded.CreatedAt.Equal(result.CreatedAt) {
		t.Errorf("Expected creation time preserved, got %v", loaded.CreatedAt)
	}

	table, err := loaded.ScoresByConcept("gender")
	if err != nil {
		t.Fatalf("ScoresByConcept failed: %v", err)
	}
	if scores, ok := table.Column("she"); !ok || len(scores) != 1 || scores[0] != -0.8 {
		t.Errorf("Expected she column [-0.8], got %v (ok=%v)", scores, ok)
	}

	samples, err := loaded.SamplesByConcept("gender")
	if err != nil {
		t.Fatalf("SamplesByConcept failed: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("Expected 1 sample, got %d", len(samples))
	}
	if samples[0].Score == nil || *samples[0].Score != -0.8 {
		t.Errorf("Expected sample score -0.8 preserved, got %v", samples[0].Score)
	}
	if samples[0].Label != "clean" || samples[0].OrigKeyword != "he" {
		t.Errorf("Expected sample fields preserved, got label %q orig %q", samples[0].Label, samples[0].OrigKeyword)
	}

	cr := loaded.ConceptResults[0]
	if len(cr.OmittedKeywords) != 1 || cr.OmittedKeywords[0] != "hers" {
		t.Errorf("Expected omitted keywords preserved, got %v", cr.OmittedKeywords)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.bin")); err == nil {
		t.Error("Expected loading a missing file to fail")
	}
}

func TestDetectionResult_AccessorsUnknownConcept(t *testing.T) {
	result := &DetectionResult{}

	if _, err := result.ScoresByConcept("gender"); !errors.Is(err, concepts.ErrConceptNotFound) {
		t.Errorf("Expected ErrConceptNotFound from ScoresByConcept, got %v", err)
	}
	if _, err := result.SamplesByConcept("gender"); !errors.Is(err, concepts.ErrConceptNotFound) {
		t.Errorf("Expected ErrConceptNotFound from SamplesByConcept, got %v", err)
	}
}

func TestDetectionResult_Summary(t *testing.T) {
	result := &DetectionResult{
		ConceptResults: []*ConceptResult{{
			Concept: "gender",
			Scores: &ScoreTable{Columns: []ScoreColumn{
				{Keyword: "he", Scores: []float64{0.2, 0.4}},
				{Keyword: "she", Scores: []float64{-0.5, -0.5}},
			}},
			OmittedKeywords: []string{"man"},
			Samples:         make([]*Sample, 4),
		}},
	}

	summaries := result.Summary()
	if len(summaries) != 1 {
		t.Fatalf("Expected 1 summary, got %d", len(summaries))
	}

	s := summaries[0]
	if s.Concept != "gender" || s.Keywords != 2 || s.Samples != 4 || s.Omitted != 1 {
		t.Errorf("Expected counts 2/4/1 for gender, got %d/%d/%d", s.Keywords, s.Samples, s.Omitted)
	}
	if math.Abs(s.MaxMeanShift-0.5) > 1e-9 {
		t.Errorf("Expected max mean shift 0.5, got %f", s.MaxMeanShift)
	}
	wantSD := math.Sqrt(0.02)
	if math.Abs(s.MaxStdDev-wantSD) > 1e-9 {
		t.Errorf("Expected max stddev %f, got %f", wantSD, s.MaxStdDev)
	}
}

func TestDetectionResult_Summary_SingleScoreColumn(t *testing.T) {
	result := &DetectionResult{
		ConceptResults: []*ConceptResult{{
			Concept: "gender",
			Scores: &ScoreTable{Columns: []ScoreColumn{
				{Keyword: "he", Scores: []float64{-0.3}},
			}},
		}},
	}

	s := result.Summary()[0]
	if math.Abs(s.MaxMeanShift-0.3) > 1e-9 {
		t.Errorf("Expected max mean shift 0.3, got %f", s.MaxMeanShift)
	}
	if s.MaxStdDev != 0 {
		t.Errorf("Expected stddev 0 for a single score, got %f", s.MaxStdDev)
	}
}

func TestSample_IsBaseline(t *testing.T) {
	baseline := &Sample{OrigKeyword: "he", Keyword: "he"}
	counterfactual := &Sample{OrigKeyword: "he", Keyword: "she"}

	if !baseline.IsBaseline() {
		t.Error("Expected an unchanged sample to be the baseline")
	}
	if counterfactual.IsBaseline() {
		t.Error("Expected a substituted sample not to be the baseline")
	}
}
