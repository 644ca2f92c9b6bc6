package textrep

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewRemoteAnnotatorRequiresURL(t *testing.T) {
	if _, err := NewRemoteAnnotator(RemoteConfig{}); err == nil {
		t.Error("expected error for missing URL")
	}
}

func TestRemoteAnnotator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}

		var req annotateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Texts) != 1 || req.Texts[0] != "He runs." {
			t.Errorf("unexpected request texts: %v", req.Texts)
		}

		resp := annotateResponse{Documents: []annotateDocument{
			{Tokens: []annotateToken{
				{Text: "He", Lemma: "he", Tag: "PRON", Dep: "nsubj", Start: 0, End: 2},
				{Text: "runs", Lemma: "run", Tag: "VERB", Dep: "ROOT", Start: 3, End: 7},
				{Text: ".", Lemma: ".", Tag: "PUNCT", Start: 7, End: 8},
			}},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	cfg := DefaultRemoteConfig()
	cfg.URL = server.URL
	a, err := NewRemoteAnnotator(cfg)
	if err != nil {
		t.Fatalf("NewRemoteAnnotator failed: %v", err)
	}

	reps, err := a.Annotate(context.Background(), []string{"He runs."})
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if len(reps) != 1 {
		t.Fatalf("expected 1 representation, got %d", len(reps))
	}

	tokens := reps[0].Tokens
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}
	if tokens[1].Lemma != "run" {
		t.Errorf("expected lemma 'run', got %q", tokens[1].Lemma)
	}
	if len(tokens[0].Functions) != 1 || tokens[0].Functions[0] != "nsubj" {
		t.Errorf("expected dependency label as function, got %v", tokens[0].Functions)
	}
	if len(tokens[2].Functions) != 0 {
		t.Errorf("expected no functions for punctuation, got %v", tokens[2].Functions)
	}
}

func TestRemoteAnnotatorServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(annotateResponse{Error: "model not loaded"})
	}))
	defer server.Close()

	cfg := DefaultRemoteConfig()
	cfg.URL = server.URL
	a, err := NewRemoteAnnotator(cfg)
	if err != nil {
		t.Fatalf("NewRemoteAnnotator failed: %v", err)
	}

	if _, err := a.Annotate(context.Background(), []string{"text"}); err == nil {
		t.Error("expected error for server failure")
	}
}

func TestRemoteAnnotatorCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(annotateResponse{Documents: []annotateDocument{}})
	}))
	defer server.Close()

	cfg := DefaultRemoteConfig()
	cfg.URL = server.URL
	a, err := NewRemoteAnnotator(cfg)
	if err != nil {
		t.Fatalf("NewRemoteAnnotator failed: %v", err)
	}

	if _, err := a.Annotate(context.Background(), []string{"one", "two"}); err == nil {
		t.Error("expected error for document count mismatch")
	}
}
