// Package predict defines the prediction contract the probing pipeline calls
// into, plus adapters for common classifier backends. A predictor maps a
// batch of texts to one probability vector per text; for binary classifiers
// index 1 is the positive class.
package predict

import "context"

// Predictor scores a batch of texts. Implementations must return exactly one
// vector per input text, in input order, and should accept any batch size.
// Implementations used with parallel scoring must be safe for concurrent use.
type Predictor interface {
	Predict(ctx context.Context, texts []string) ([][]float64, error)
}

// Func adapts a plain function to the Predictor interface.
type Func func(ctx context.Context, texts []string) ([][]float64, error)

// Predict calls the function.
func (f Func) Predict(ctx context.Context, texts []string) ([][]float64, error) {
	return f(ctx, texts)
}
