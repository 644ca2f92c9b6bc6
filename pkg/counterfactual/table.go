package counterfactual

import "math"

// ScoreColumn holds the ordered score series of one keyword.
type ScoreColumn struct {
	Keyword string    `msgpack:"keyword"`
	Scores  []float64 `msgpack:"scores"`
}

// ScoreTable collects keyword score series in keyword order. Columns may have
// different lengths (keywords occur with different frequencies); the padded
// view fills short columns with NaN.
type ScoreTable struct {
	Columns []ScoreColumn `msgpack:"columns"`
}

// NewScoreTable creates an empty table.
func NewScoreTable() *ScoreTable {
	return &ScoreTable{}
}

// Append adds a keyword column. Call order defines column order.
func (t *ScoreTable) Append(keyword string, scores []float64) {
	t.Columns = append(t.Columns, ScoreColumn{Keyword: keyword, Scores: scores})
}

// Len returns the number of columns.
func (t *ScoreTable) Len() int {
	return len(t.Columns)
}

// Keywords returns the column names in table order.
func (t *ScoreTable) Keywords() []string {
	out := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		out[i] = col.Keyword
	}
	return out
}

// Column returns the raw, unpadded score series for a keyword.
func (t *ScoreTable) Column(keyword string) ([]float64, bool) {
	for _, col := range t.Columns {
		if col.Keyword == keyword {
			return col.Scores, true
		}
	}
	return nil, false
}

// Rows returns the length of the longest column.
func (t *ScoreTable) Rows() int {
	rows := 0
	for _, col := range t.Columns {
		if len(col.Scores) > rows {
			rows = len(col.Scores)
		}
	}
	return rows
}

// Padded returns the columns as equally long series, short columns filled
// with NaN at the tail.
func (t *ScoreTable) Padded() [][]float64 {
	rows := t.Rows()
	out := make([][]float64, len(t.Columns))
	for i, col := range t.Columns {
		padded := make([]float64, rows)
		for j := 0; j < rows; j++ {
			if j < len(col.Scores) {
				padded[j] = col.Scores[j]
			} else {
				padded[j] = math.NaN()
			}
		}
		out[i] = padded
	}
	return out
}

// DropDuplicates removes columns whose padded series equals an earlier
// column and returns the removed keywords in table order. Two padded series
// are equal when every position matches, with NaN positions required to
// coincide. The first column of each duplicate group is kept, so the kept and
// returned keywords together reconstruct the original column set.
func (t *ScoreTable) DropDuplicates() []string {
	rows := t.Rows()
	var omitted []string
	var kept []ScoreColumn

	for _, col := range t.Columns {
		duplicate := false
		for _, k := range kept {
			if equalPadded(k.Scores, col.Scores, rows) {
				duplicate = true
				break
			}
		}
		if duplicate {
			omitted = append(omitted, col.Keyword)
		} else {
			kept = append(kept, col)
		}
	}

	t.Columns = kept
	return omitted
}

// equalPadded compares two score series as if padded with NaN to rows.
func equalPadded(a, b []float64, rows int) bool {
	for i := 0; i < rows; i++ {
		av := math.NaN()
		if i < len(a) {
			av = a[i]
		}
		bv := math.NaN()
		if i < len(b) {
			bv = b[i]
		}
		if math.IsNaN(av) && math.IsNaN(bv) {
			continue
		}
		if av != bv {
			return false
		}
	}
	return true
}
