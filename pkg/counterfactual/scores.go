package counterfactual

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ppiankov/biasprobe/pkg/concepts"
	"github.com/ppiankov/biasprobe/pkg/predict"
)

// ErrPositiveClass is returned when a positive class index does not fit the
// predictor's output vector.
var ErrPositiveClass = errors.New("positive class index out of range")

// scoreCalculator turns samples into signed probability differentials.
type scoreCalculator struct {
	predictor predict.Predictor
	positive  []int
}

// keywordScores computes the score for every sample whose substitute is the
// given keyword: P(positive | counterfactual) - P(positive | original), in
// sample order. The predictor is called exactly twice, once per text list.
// A keyword without samples returns (nil, nil).
func (sc *scoreCalculator) keywordScores(ctx context.Context, keyword string, samples []*Sample) ([]float64, error) {
	var sourceTexts, counterTexts []string
	for _, s := range samples {
		if s.Keyword != keyword {
			continue
		}
		sourceTexts = append(sourceTexts, s.SourceText)
		counterTexts = append(counterTexts, s.Text)
	}
	if len(sourceTexts) == 0 {
		return nil, nil
	}

	originalProbs, err := sc.predictor.Predict(ctx, sourceTexts)
	if err != nil {
		return nil, fmt.Errorf("predict original texts: %w", err)
	}
	counterProbs, err := sc.predictor.Predict(ctx, counterTexts)
	if err != nil {
		return nil, fmt.Errorf("predict counterfactual texts: %w", err)
	}
	if len(originalProbs) != len(sourceTexts) || len(counterProbs) != len(counterTexts) {
		return nil, fmt.Errorf("predictor returned %d/%d vectors for %d texts",
			len(originalProbs), len(counterProbs), len(sourceTexts))
	}

	scores := make([]float64, len(counterProbs))
	for i := range counterProbs {
		originalMass, err := sc.positiveMass(originalProbs[i])
		if err != nil {
			return nil, err
		}
		counterMass, err := sc.positiveMass(counterProbs[i])
		if err != nil {
			return nil, err
		}
		scores[i] = counterMass - originalMass
	}
	return scores, nil
}

// positiveMass sums the probability assigned to the positive classes. Without
// explicit positive classes the vector must be binary and index 1 counts.
func (sc *scoreCalculator) positiveMass(vec []float64) (float64, error) {
	if len(sc.positive) == 0 {
		if len(vec) != 2 {
			return 0, fmt.Errorf("%w: prediction vector has %d classes and no positive classes were given",
				errors.ErrUnsupported, len(vec))
		}
		return vec[1], nil
	}

	var sum float64
	for _, idx := range sc.positive {
		if idx < 0 || idx >= len(vec) {
			return 0, fmt.Errorf("%w: class %d of %d", ErrPositiveClass, idx, len(vec))
		}
		sum += vec[idx]
	}
	return sum, nil
}

// scoreConcept scores every keyword of the concept into index-addressed
// slots: scores[i] and errs[i] belong to c.Keywords[i]. With workers > 1 the
// keywords are scored concurrently under a semaphore; slot addressing keeps
// the outcome identical to the sequential path.
func (sc *scoreCalculator) scoreConcept(ctx context.Context, c *concepts.Concept, samples []*Sample, workers int) ([][]float64, []error) {
	scores := make([][]float64, len(c.Keywords))
	errs := make([]error, len(c.Keywords))

	if workers <= 1 || len(c.Keywords) <= 1 {
		for i, kw := range c.Keywords {
			scores[i], errs[i] = sc.keywordScores(ctx, kw.Text, samples)
		}
		return scores, errs
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)

	for i, kw := range c.Keywords {
		wg.Add(1)
		go func(idx int, keyword string) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				errs[idx] = ctx.Err()
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			scores[idx], errs[idx] = sc.keywordScores(ctx, keyword, samples)
		}(i, kw.Text)
	}

	wg.Wait()
	return scores, errs
}

// attachScores writes scores back onto the keyword's samples in the same
// selection order keywordScores used. Each sample is scored exactly once.
func attachScores(samples []*Sample, keyword string, scores []float64) {
	i := 0
	for _, s := range samples {
		if s.Keyword != keyword {
			continue
		}
		if i >= len(scores) {
			return
		}
		score := scores[i]
		s.Score = &score
		i++
	}
}
