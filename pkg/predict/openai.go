package predict

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// OpenAIConfig configures the zero-shot OpenAI classifier.
type OpenAIConfig struct {
	APIKey            string
	BaseURL           string // custom endpoint, e.g. a compatible proxy
	Model             string
	Timeout           time.Duration // per-text call timeout
	RequestsPerSecond float64
	Burst             int
	PositiveLabel     string // what class 1 means, e.g. "toxic"
}

// DefaultOpenAIConfig returns sensible defaults. The API key must still be
// supplied.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		Model:             openai.GPT4oMini,
		Timeout:           30 * time.Second,
		RequestsPerSecond: 2,
		Burst:             1,
		PositiveLabel:     "toxic",
	}
}

// OpenAIClassifier scores texts zero-shot through the Chat Completions API:
// the model is asked for a single probability that the text matches the
// positive label, and each text becomes the vector [1-p, p]. Texts are scored
// one call at a time under a rate limiter, so larger corpora should run
// behind the cached predictor.
type OpenAIClassifier struct {
	client  *openai.Client
	cfg     OpenAIConfig
	limiter *rate.Limiter
}

// NewOpenAIClassifier creates a zero-shot classifier.
func NewOpenAIClassifier(cfg OpenAIConfig) (*OpenAIClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	defaults := DefaultOpenAIConfig()
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.PositiveLabel == "" {
		cfg.PositiveLabel = defaults.PositiveLabel
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &OpenAIClassifier{
		client:  openai.NewClientWithConfig(clientConfig),
		cfg:     cfg,
		limiter: limiter,
	}, nil
}

// Name returns the adapter name.
func (c *OpenAIClassifier) Name() string {
	return "openai"
}

// Predict scores every text in order.
func (c *OpenAIClassifier) Predict(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for _, text := range texts {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit: %w", err)
			}
		}

		p, err := c.classify(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("classify text: %w", err)
		}
		out = append(out, []float64{1 - p, p})
	}
	return out, nil
}

// classify asks the model for a single probability in [0, 1].
func (c *OpenAIClassifier) classify(ctx context.Context, text string) (float64, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	system := fmt.Sprintf(
		"You are a strict binary text classifier. Reply with one number between 0 and 1: the probability that the text is %s. No words, no explanation, just the number.",
		c.cfg.PositiveLabel,
	)

	resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens:   8,
		Temperature: 0, // Deterministic scoring
	})
	if err != nil {
		return 0, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("no response from OpenAI")
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse probability %q: %w", raw, err)
	}

	// Clamp: models occasionally answer 1.00 with trailing noise trimmed off.
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p, nil
}
