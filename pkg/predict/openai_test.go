package predict

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func openAITestServer(t *testing.T, answer string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected Authorization header: %s", r.Header.Get("Authorization"))
		}

		resp := openai.ChatCompletionResponse{
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: answer}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIClassifier_Predict(t *testing.T) {
	server := openAITestServer(t, "0.9")
	defer server.Close()

	cfg := DefaultOpenAIConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = server.URL
	cfg.RequestsPerSecond = 0 // No throttling in tests
	c, err := NewOpenAIClassifier(cfg)
	if err != nil {
		t.Fatalf("NewOpenAIClassifier failed: %v", err)
	}

	probs, err := c.Predict(context.Background(), []string{"you are terrible", "lovely day"})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if len(probs) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(probs))
	}
	for _, vec := range probs {
		if len(vec) != 2 {
			t.Fatalf("expected binary vector, got %v", vec)
		}
		if math.Abs(vec[1]-0.9) > 1e-9 || math.Abs(vec[0]-0.1) > 1e-9 {
			t.Errorf("expected [0.1, 0.9], got %v", vec)
		}
	}
}

func TestOpenAIClassifier_ClampsProbability(t *testing.T) {
	server := openAITestServer(t, "1.2")
	defer server.Close()

	cfg := DefaultOpenAIConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = server.URL
	cfg.RequestsPerSecond = 0
	c, err := NewOpenAIClassifier(cfg)
	if err != nil {
		t.Fatalf("NewOpenAIClassifier failed: %v", err)
	}

	probs, err := c.Predict(context.Background(), []string{"text"})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if probs[0][1] != 1 {
		t.Errorf("expected clamped probability 1, got %v", probs[0])
	}
}

func TestOpenAIClassifier_UnparsableAnswer(t *testing.T) {
	server := openAITestServer(t, "probably toxic")
	defer server.Close()

	cfg := DefaultOpenAIConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = server.URL
	cfg.RequestsPerSecond = 0
	c, err := NewOpenAIClassifier(cfg)
	if err != nil {
		t.Fatalf("NewOpenAIClassifier failed: %v", err)
	}

	if _, err := c.Predict(context.Background(), []string{"text"}); err == nil {
		t.Error("expected error for unparsable model answer")
	}
}

func TestOpenAIClassifier_RequiresAPIKey(t *testing.T) {
	if _, err := NewOpenAIClassifier(OpenAIConfig{}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestOpenAIClassifier_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "boom", "type": "server_error"}}`))
	}))
	defer server.Close()

	cfg := DefaultOpenAIConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = server.URL
	cfg.RequestsPerSecond = 0
	c, err := NewOpenAIClassifier(cfg)
	if err != nil {
		t.Fatalf("NewOpenAIClassifier failed: %v", err)
	}

	if _, err := c.Predict(context.Background(), []string{"text"}); err == nil {
		t.Error("expected error from failing API")
	}
}
