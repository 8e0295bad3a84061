// Package cache provides public caching interfaces for embedding vectors.
// It supports in-memory and Redis backends so repeated texts are not
// re-encoded against a paid API.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Type represents the type of cache backend.
type Type string

const (
	TypeLocal Type = "local" // In-memory cache
	TypeRedis Type = "redis" // Redis cache
)

// Cache defines the interface for all cache implementations.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with the given TTL.
	// If TTL is 0, the default TTL is used.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key from the cache.
	Delete(ctx context.Context, key string) error

	// SetPipeline performs batch set operations for efficiency.
	SetPipeline(ctx context.Context, entries []Entry) error

	// GetMulti retrieves multiple keys at once.
	// Returns a map of key -> value, missing keys are not included.
	GetMulti(ctx context.Context, keys []string) (map[string][]byte, error)

	// Ping checks if the cache is healthy.
	Ping(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error

	// Stats returns cache statistics.
	Stats() Stats
}

// Entry represents a single cache entry for pipeline operations.
type Entry struct {
	Key   string
	Value []byte
	TTL   time.Duration
}

// Stats holds cache statistics for monitoring.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Sets    int64   `json:"sets"`
	Deletes int64   `json:"deletes"`
	Errors  int64   `json:"errors"`
	HitRate float64 `json:"hit_rate"`
}

// Key generates a deterministic cache key for one text embedded by one
// backend/model pair. Two different models must never share vectors, so
// both identifiers participate in the hash.
func Key(backend, model, text string) string {
	h := sha256.New()
	h.Write([]byte(backend))
	h.Write([]byte{0})
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return "emb:" + hex.EncodeToString(h.Sum(nil))
}
