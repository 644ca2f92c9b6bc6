package predict

import (
	"fmt"
	"strings"
)

// Config selects and configures a predictor implementation.
type Config struct {
	Kind     string // "openai", "remote" or "constant"
	OpenAI   OpenAIConfig
	Remote   RemoteConfig
	Constant []float64 // vector for the constant predictor, defaults to [0.5, 0.5]
}

// New creates a predictor from configuration.
func New(cfg Config) (Predictor, error) {
	switch strings.ToLower(cfg.Kind) {
	case "openai":
		return NewOpenAIClassifier(cfg.OpenAI)

	case "remote":
		return NewRemoteClassifier(cfg.Remote)

	case "constant":
		probs := cfg.Constant
		if len(probs) == 0 {
			probs = []float64{0.5, 0.5}
		}
		return Constant(probs...), nil

	case "":
		return nil, fmt.Errorf("predictor kind must be specified")

	default:
		return nil, fmt.Errorf("unknown predictor kind: %s (supported: openai, remote, constant)", cfg.Kind)
	}
}
