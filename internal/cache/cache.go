// Package cache stores predictor outputs between calls and runs so repeated
// texts (baselines recur for every keyword) hit the model only once.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the storage interface behind prediction memoization.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a cache key from namespace parts, typically the predictor
// identity and the text. Parts are NUL-separated before hashing so
// ("ab","c") and ("a","bc") never collide.
func Key(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return "bp1-" + hex.EncodeToString(h.Sum(nil))
}
