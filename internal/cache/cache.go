// Package cache stores fetched page text between runs. A memory layer
// serves repeated rows within one batch; a disk layer survives restarts so
// long donor scans can resume without refetching.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the storage interface shared by the memory and disk layers.
// A zero ttl means "use the layer's default".
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey derives a stable key from a source URL
func CacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "aidlens:v1:" + hex.EncodeToString(hash[:])
}
