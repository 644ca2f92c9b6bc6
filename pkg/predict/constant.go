package predict

import "context"

// Constant returns a predictor that answers the same probability vector for
// every text. Useful for dry runs and as a null model: with [0.5, 0.5] every
// counterfactual score comes out zero.
func Constant(probs ...float64) Func {
	vec := make([]float64, len(probs))
	copy(vec, probs)

	return func(_ context.Context, texts []string) ([][]float64, error) {
		out := make([][]float64, len(texts))
		for i := range out {
			row := make([]float64, len(vec))
			copy(row, vec)
			out[i] = row
		}
		return out, nil
	}
}
