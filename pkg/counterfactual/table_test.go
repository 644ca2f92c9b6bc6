package counterfactual

import (
	"math"
	"testing"
)

func TestScoreTable_PaddedFillsNaN(t *testing.T) {
	table := NewScoreTable()
	table.Append("he", []float64{0.1, 0.2, 0.3})
	table.Append("she", []float64{0.4})

	if table.Rows() != 3 {
		t.Errorf("Expected 3 rows, got %d", table.Rows())
	}

	padded := table.Padded()
	if len(padded) != 2 {
		t.Fatalf("Expected 2 padded columns, got %d", len(padded))
	}
	if padded[1][0] != 0.4 {
		t.Errorf("Expected the real value kept, got %f", padded[1][0])
	}
	if !math.IsNaN(padded[1][1]) || !math.IsNaN(padded[1][2]) {
		t.Error("Expected the short column padded with NaN at the tail")
	}
}

func TestScoreTable_Column(t *testing.T) {
	table := NewScoreTable()
	table.Append("he", []float64{0.5})

	if scores, ok := table.Column("he"); !ok || len(scores) != 1 || scores[0] != 0.5 {
		t.Errorf("Expected he column [0.5], got %v (ok=%v)", scores, ok)
	}
	if _, ok := table.Column("absent"); ok {
		t.Error("Expected the lookup of an absent column to fail")
	}
}

func TestScoreTable_DropDuplicates_KeepsFirst(t *testing.T) {
	table := NewScoreTable()
	table.Append("he", []float64{0.1, 0.2})
	table.Append("she", []float64{0.1, 0.2})
	table.Append("man", []float64{0.3, 0.2})

	omitted := table.DropDuplicates()

	if len(omitted) != 1 || omitted[0] != "she" {
		t.Errorf("Expected she omitted, got %v", omitted)
	}
	keywords := table.Keywords()
	if len(keywords) != 2 || keywords[0] != "he" || keywords[1] != "man" {
		t.Errorf("Expected he and man kept in order, got %v", keywords)
	}
}

func TestScoreTable_DropDuplicates_NaNPositionsMustCoincide(t *testing.T) {
	table := NewScoreTable()
	table.Append("he", []float64{0.1, 0.2})
	table.Append("she", []float64{0.1})
	table.Append("man", []float64{0.1})

	omitted := table.DropDuplicates()

	// she is shorter than he, so their padded tails differ; man matches she.
	if len(omitted) != 1 || omitted[0] != "man" {
		t.Errorf("Expected only man omitted, got %v", omitted)
	}
	if table.Len() != 2 {
		t.Errorf("Expected 2 columns kept, got %d", table.Len())
	}
}

func TestScoreTable_DropDuplicates_ReconstructsKeywordSet(t *testing.T) {
	table := NewScoreTable()
	table.Append("a", []float64{1})
	table.Append("b", []float64{1})
	table.Append("c", []float64{2})
	table.Append("d", []float64{2})

	omitted := table.DropDuplicates()

	seen := make(map[string]bool)
	for _, kw := range table.Keywords() {
		seen[kw] = true
	}
	for _, kw := range omitted {
		if seen[kw] {
			t.Errorf("Keyword %s both kept and omitted", kw)
		}
		seen[kw] = true
	}
	for _, kw := range []string{"a", "b", "c", "d"} {
		if !seen[kw] {
			t.Errorf("Keyword %s lost by duplicate removal", kw)
		}
	}
}

func TestScoreTable_DropDuplicates_Empty(t *testing.T) {
	table := NewScoreTable()

	if omitted := table.DropDuplicates(); len(omitted) != 0 {
		t.Errorf("Expected nothing omitted from an empty table, got %v", omitted)
	}
	if table.Len() != 0 {
		t.Errorf("Expected the table to stay empty, got %d columns", table.Len())
	}
}
