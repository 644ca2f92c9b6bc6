package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ppiankov/biasprobe/internal/netutil"
)

// RemoteConfig configures the remote classifier client.
type RemoteConfig struct {
	URL               string        // scoring endpoint, required
	Timeout           time.Duration // per-request timeout
	UserAgent         string
	MaxBodyBytes      int64   // response size limit
	RequestsPerSecond float64 // 0 means unlimited
	Burst             int
	HTTPProxy         string
	HTTPSProxy        string
}

// DefaultRemoteConfig returns working defaults for everything but the URL.
func DefaultRemoteConfig() RemoteConfig {
	return RemoteConfig{
		Timeout:      30 * time.Second,
		UserAgent:    "biasprobe/0.1 (+https://github.com/ppiankov/biasprobe)",
		MaxBodyBytes: 10 * 1024 * 1024,
		Burst:        1,
	}
}

// RemoteClassifier calls a REST scoring endpoint. The endpoint receives
// {"texts": [...]} and answers {"probabilities": [[...], ...]} with one
// vector per text.
type RemoteClassifier struct {
	cfg        RemoteConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

type scoreRequest struct {
	Texts []string `json:"texts"`
}

type scoreResponse struct {
	Probabilities [][]float64 `json:"probabilities"`
	Error         string      `json:"error,omitempty"`
}

// NewRemoteClassifier creates a client for a remote scoring endpoint.
func NewRemoteClassifier(cfg RemoteConfig) (*RemoteClassifier, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("classifier URL must be specified")
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

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &RemoteClassifier{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: netutil.ProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy),
			},
		},
		limiter: limiter,
	}, nil
}

// Name returns the adapter name.
func (c *RemoteClassifier) Name() string {
	return "remote"
}

// Predict sends the batch to the endpoint and validates the response shape.
func (c *RemoteClassifier) Predict(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	body, err := json.Marshal(scoreRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("score request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, c.cfg.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr scoreResponse
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("classifier error (%d): %s", httpResp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("classifier error (%d): %s", httpResp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var resp scoreResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(resp.Probabilities) != len(texts) {
		return nil, fmt.Errorf("classifier returned %d vectors for %d texts", len(resp.Probabilities), len(texts))
	}

	return resp.Probabilities, nil
}
