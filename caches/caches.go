// Package caches provides public cache implementations for embedding
// vectors. It includes in-memory and Redis backends.
package caches

import (
	"github.com/vegaviazhang/uniem/caches/memory"
	"github.com/vegaviazhang/uniem/caches/redis"
	"github.com/vegaviazhang/uniem/pkg/cache"
)

// Type re-exports cache types for convenience.
type Type = cache.Type

// Cache type constants.
const (
	TypeLocal = cache.TypeLocal
	TypeRedis = cache.TypeRedis
)

// NewMemory creates a new in-memory cache with the given configuration.
func NewMemory(cfg memory.Config) *memory.Cache {
	return memory.New(cfg)
}

// NewMemoryDefault creates a new in-memory cache with default configuration.
func NewMemoryDefault() *memory.Cache {
	return memory.New(memory.DefaultConfig())
}

// NewRedis creates a new Redis cache with the given configuration.
// Returns an error if the Redis connection fails.
func NewRedis(cfg redis.Config) (*redis.Cache, error) {
	return redis.New(cfg)
}

// NewRedisDefault creates a new Redis cache with default configuration.
func NewRedisDefault() (*redis.Cache, error) {
	return redis.New(redis.DefaultConfig())
}

// Re-export config types for convenience.
type (
	MemoryConfig = memory.Config
	RedisConfig  = redis.Config
)

// Re-export default config functions.
var (
	DefaultMemoryConfig = memory.DefaultConfig
	DefaultRedisConfig  = redis.DefaultConfig
)
