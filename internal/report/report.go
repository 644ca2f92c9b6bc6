// Package report renders detection results as terminal tables and JSON.
package report

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ppiankov/biasprobe/pkg/counterfactual"
)

// Renderer renders detection results
type Renderer struct{}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderSummary writes the per-concept roll-up as an aligned table.
func (r *Renderer) RenderSummary(w io.Writer, result *counterfactual.DetectionResult) {
	fmt.Fprintf(w, "Run %s (%s)\n\n", result.RunID, result.Lang)

	if len(result.ConceptResults) == 0 {
		fmt.Fprintln(w, "No concept keywords were found in the probed texts.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONCEPT\tKEYWORDS\tSAMPLES\tOMITTED\tMAX |MEAN|\tMAX STDDEV")
	for _, s := range result.Summary() {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.4f\t%.4f\n",
			s.Concept, s.Keywords, s.Samples, s.Omitted, s.MaxMeanShift, s.MaxStdDev)
	}
	_ = tw.Flush()
}

// keywordStat is one keyword's score distribution, flattened for ranking.
type keywordStat struct {
	concept string
	keyword string
	samples int
	mean    float64
	stddev  float64
	min     float64
	max     float64
}

// RenderKeywords writes the strongest keyword shifts, largest |mean| first.
// top bounds the number of rows; top <= 0 writes every keyword.
func (r *Renderer) RenderKeywords(w io.Writer, result *counterfactual.DetectionResult, top int) {
	stats := keywordStats(result)
	if len(stats) == 0 {
		return
	}
	if top > 0 && len(stats) > top {
		stats = stats[:top]
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONCEPT\tKEYWORD\tSCORES\tMEAN\tSTDDEV\tMIN\tMAX")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%+.4f\t%.4f\t%+.4f\t%+.4f\n",
			s.concept, s.keyword, s.samples, s.mean, s.stddev, s.min, s.max)
	}
	_ = tw.Flush()
}

func keywordStats(result *counterfactual.DetectionResult) []keywordStat {
	var stats []keywordStat
	for _, cr := range result.ConceptResults {
		for _, col := range cr.Scores.Columns {
			if len(col.Scores) == 0 {
				continue
			}
			s := keywordStat{
				concept: cr.Concept,
				keyword: col.Keyword,
				samples: len(col.Scores),
				mean:    stat.Mean(col.Scores, nil),
				min:     floats.Min(col.Scores),
				max:     floats.Max(col.Scores),
			}
			if len(col.Scores) > 1 {
				s.stddev = stat.StdDev(col.Scores, nil)
			}
			stats = append(stats, s)
		}
	}

	sort.Slice(stats, func(i, j int) bool {
		ai, aj := abs(stats[i].mean), abs(stats[j].mean)
		if ai != aj {
			return ai > aj
		}
		if stats[i].concept != stats[j].concept {
			return stats[i].concept < stats[j].concept
		}
		return stats[i].keyword < stats[j].keyword
	})
	return stats
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
