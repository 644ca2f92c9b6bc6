package textrep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/biasprobe/internal/netutil"
)

// RemoteConfig configures the remote annotator client.
type RemoteConfig struct {
	URL          string        // annotation endpoint, required
	Timeout      time.Duration // per-request timeout
	UserAgent    string
	MaxBodyBytes int64 // response size limit
	HTTPProxy    string
	HTTPSProxy   string
}

// DefaultRemoteConfig returns working defaults for everything but the URL.
func DefaultRemoteConfig() RemoteConfig {
	return RemoteConfig{
		Timeout:      30 * time.Second,
		UserAgent:    "biasprobe/0.1 (+https://github.com/ppiankov/biasprobe)",
		MaxBodyBytes: 10 * 1024 * 1024,
	}
}

// RemoteAnnotator calls an external annotation service that tokenizes and
// lemmatizes text batches. The service receives {"texts": [...]} and answers
// with one document per text carrying tokens with lemma, tag, dependency
// label and byte offsets.
type RemoteAnnotator struct {
	cfg        RemoteConfig
	httpClient *http.Client
}

type annotateRequest struct {
	Texts []string `json:"texts"`
}

type annotateResponse struct {
	Documents []annotateDocument `json:"documents"`
	Error     string             `json:"error,omitempty"`
}

type annotateDocument struct {
	Tokens []annotateToken `json:"tokens"`
}

type annotateToken struct {
	Text  string `json:"text"`
	Lemma string `json:"lemma"`
	Tag   string `json:"tag"`
	Dep   string `json:"dep,omitempty"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// NewRemoteAnnotator creates a client for an annotation service.
func NewRemoteAnnotator(cfg RemoteConfig) (*RemoteAnnotator, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("annotator URL must be specified")
	}

	defaults := DefaultRemoteConfig()
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = defaults.MaxBodyBytes
	}

	return &RemoteAnnotator{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: netutil.ProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy),
			},
		},
	}, nil
}

// Annotate sends the batch to the service and maps the documents back onto
// text representations in input order.
func (a *RemoteAnnotator) Annotate(ctx context.Context, texts []string) ([]*TextRepresentation, error) {
	if len(texts) == 0 {
		return []*TextRepresentation{}, nil
	}

	body, err := json.Marshal(annotateRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", a.cfg.UserAgent)

	httpResp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("annotate request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, a.cfg.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr annotateResponse
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("annotator error (%d): %s", httpResp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("annotator error (%d): %s", httpResp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var resp annotateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(resp.Documents) != len(texts) {
		return nil, fmt.Errorf("annotator returned %d documents for %d texts", len(resp.Documents), len(texts))
	}

	reps := make([]*TextRepresentation, len(texts))
	for i, doc := range resp.Documents {
		rep := &TextRepresentation{Text: texts[i], Tokens: make([]Token, 0, len(doc.Tokens))}
		for _, tok := range doc.Tokens {
			var functions []string
			if tok.Dep != "" {
				functions = []string{tok.Dep}
			}
			rep.Tokens = append(rep.Tokens, Token{
				Text:      tok.Text,
				Lemma:     tok.Lemma,
				Tag:       tok.Tag,
				Functions: functions,
				Start:     tok.Start,
				End:       tok.End,
			})
		}
		reps[i] = rep
	}
	return reps, nil
}
