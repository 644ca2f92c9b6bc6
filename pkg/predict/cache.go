package predict

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ppiankov/biasprobe/internal/cache"
)

// CacheConfig configures prediction memoization.
type CacheConfig struct {
	Namespace       string        // predictor identity mixed into keys, e.g. "openai:gpt-4o-mini"
	TTL             time.Duration // entry lifetime
	CleanupInterval time.Duration // memory cache sweep interval
	Dir             string        // non-empty adds a persistent disk layer
}

// DefaultCacheConfig returns the standard memoization settings.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:             24 * time.Hour,
		CleanupInterval: 10 * time.Minute,
	}
}

// Cached memoizes per-text probability vectors around another predictor.
// Baseline texts recur for every keyword of a concept, so a probe run hits
// the backing model far less often. Misses are batched into a single inner
// call, preserving the predictor batching contract.
type Cached struct {
	inner Predictor
	store cache.Cache
	cfg   CacheConfig
}

// NewCached wraps a predictor with memoization.
func NewCached(inner Predictor, cfg CacheConfig) *Cached {
	defaults := DefaultCacheConfig()
	if cfg.TTL == 0 {
		cfg.TTL = defaults.TTL
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = defaults.CleanupInterval
	}

	var store cache.Cache
	if cfg.Dir != "" {
		store = cache.NewLayeredCache(cfg.TTL, cfg.Dir, cfg.TTL)
	} else {
		store = cache.NewMemoryCache(cfg.TTL, cfg.CleanupInterval)
	}

	return &Cached{inner: inner, store: store, cfg: cfg}
}

// Predict serves cached vectors where possible and forwards the rest to the
// inner predictor in one batch.
func (c *Cached) Predict(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))

	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		key := c.key(text)
		raw, found := c.store.Get(key)
		if found {
			var vec []float64
			if err := msgpack.Unmarshal(raw, &vec); err == nil {
				out[i] = vec
				continue
			}
			// Unreadable entry: drop it and refetch.
			_ = c.store.Delete(key)
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.inner.Predict(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("predictor returned %d vectors for %d texts", len(vecs), len(missTexts))
	}

	for j, vec := range vecs {
		out[missIdx[j]] = vec
		if raw, err := msgpack.Marshal(vec); err == nil {
			_ = c.store.Set(c.key(missTexts[j]), raw, c.cfg.TTL)
		}
	}
	return out, nil
}

// Clear drops all memoized predictions.
func (c *Cached) Clear() error {
	return c.store.Clear()
}

func (c *Cached) key(text string) string {
	return cache.Key(c.cfg.Namespace, text)
}
