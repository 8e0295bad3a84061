// Package memory provides an in-memory cache implementation backed by
// an expiring map. Suitable for single-process training runs.
package memory

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/vegaviazhang/uniem/pkg/cache"
)

// Cache implements cache.Cache using an in-process expiring map.
type Cache struct {
	store      *gocache.Cache
	defaultTTL time.Duration

	hits    atomic.Int64
	misses  atomic.Int64
	sets    atomic.Int64
	deletes atomic.Int64
}

// Config holds configuration for the in-memory cache.
type Config struct {
	DefaultTTL      time.Duration `yaml:"default_ttl"`      // Default entry TTL (default: 1 hour)
	CleanupInterval time.Duration `yaml:"cleanup_interval"` // Expired-entry sweep interval
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultTTL:      time.Hour,
		CleanupInterval: 10 * time.Minute,
	}
}

// New creates a new in-memory cache.
func New(cfg Config) *Cache {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 10 * time.Minute
	}
	return &Cache{
		store:      gocache.New(cfg.DefaultTTL, cfg.CleanupInterval),
		defaultTTL: cfg.DefaultTTL,
	}
}

// Get retrieves a value. Returns nil, nil on a miss.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	val, ok := c.store.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, nil
	}
	c.hits.Add(1)
	return val.([]byte), nil
}

// Set stores a value with the given TTL.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.store.Set(key, value, ttl)
	c.sets.Add(1)
	return nil
}

// Delete removes a key.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.store.Delete(key)
	c.deletes.Add(1)
	return nil
}

// SetPipeline stores a batch of entries.
func (c *Cache) SetPipeline(ctx context.Context, entries []cache.Entry) error {
	for _, entry := range entries {
		if err := c.Set(ctx, entry.Key, entry.Value, entry.TTL); err != nil {
			return err
		}
	}
	return nil
}

// GetMulti retrieves multiple keys; missing keys are omitted from the result.
func (c *Cache) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	for _, key := range keys {
		val, err := c.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if val != nil {
			result[key] = val
		}
	}
	return result, nil
}

// Ping always succeeds for an in-process cache.
func (c *Cache) Ping(context.Context) error { return nil }

// Close flushes all entries.
func (c *Cache) Close() error {
	c.store.Flush()
	return nil
}

// Stats returns cache statistics.
func (c *Cache) Stats() cache.Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses

	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return cache.Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Deletes: c.deletes.Load(),
		HitRate: hitRate,
	}
}
