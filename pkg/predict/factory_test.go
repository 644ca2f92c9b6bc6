package predict

import (
	"context"
	"testing"
)

func TestNew_Constant(t *testing.T) {
	p, err := New(Config{Kind: "constant", Constant: []float64{0.25, 0.75}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	probs, err := p.Predict(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if len(probs) != 2 || probs[1][1] != 0.75 {
		t.Errorf("unexpected probabilities: %v", probs)
	}
}

func TestNew_ConstantDefaultsToUniform(t *testing.T) {
	p, err := New(Config{Kind: "constant"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	probs, err := p.Predict(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if probs[0][0] != 0.5 || probs[0][1] != 0.5 {
		t.Errorf("expected uniform vector, got %v", probs[0])
	}
}

func TestNew_Remote(t *testing.T) {
	cfg := DefaultRemoteConfig()
	cfg.URL = "http://localhost:8091/predict"
	p, err := New(Config{Kind: "remote", Remote: cfg})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := p.(*RemoteClassifier); !ok {
		t.Errorf("expected *RemoteClassifier, got %T", p)
	}
}

func TestNew_Unknown(t *testing.T) {
	if _, err := New(Config{Kind: "quantum"}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestNew_Empty(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for empty kind")
	}
}
