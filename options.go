package uniem

import (
	"log/slog"
	"time"

	"github.com/vegaviazhang/uniem/pkg/cache"
	"github.com/vegaviazhang/uniem/pkg/encoder"
)

// ClientConfig holds all configuration for the embedding client.
type ClientConfig struct {
	// Backend configuration. Either a pre-built Encoder instance or a
	// declarative config resolved through the registry.
	Encoder       encoder.Encoder
	EncoderConfig *encoder.Config

	// Caching
	Cache    cache.Cache
	CacheTTL time.Duration

	// Batching: texts per backend call.
	BatchSize int

	// Rate limiting: requests per minute against the backend.
	RateLimit int
	RateBurst int

	// Retries
	MaxRetries   int
	RetryBackoff time.Duration
	RetryMax     time.Duration

	// Timeout bounds each Encode call. Zero means no client-imposed
	// deadline beyond the backend's own HTTP timeout.
	Timeout time.Duration

	// Logging
	Logger *slog.Logger
}

// Option is a function that configures the Client.
type Option func(*ClientConfig)

// defaultConfig returns sensible defaults.
func defaultConfig() *ClientConfig {
	return &ClientConfig{
		BatchSize:    16,
		MaxRetries:   3,
		RetryBackoff: time.Second,
		RetryMax:     10 * time.Second,
		CacheTTL:     time.Hour,
		Logger:       slog.Default(),
	}
}

// WithEncoder sets a pre-built encoder instance.
//
// Example:
//
//	enc := openai.New(openai.WithAPIKey(os.Getenv("OPENAI_API_KEY")))
//	client, err := uniem.New(uniem.WithEncoder(enc))
func WithEncoder(e encoder.Encoder) Option {
	return func(c *ClientConfig) {
		c.Encoder = e
	}
}

// WithEncoderConfig sets a declarative backend configuration.
// The encoder is created through the registry based on the Type field.
//
// Example:
//
//	uniem.WithEncoderConfig(uniem.EncoderConfig{
//	    Type:   "zhipu",
//	    APIKey: os.Getenv("ZHIPU_API_KEY"),
//	    Model:  "embedding-2",
//	})
func WithEncoderConfig(cfg encoder.Config) Option {
	return func(c *ClientConfig) {
		c.EncoderConfig = &cfg
	}
}

// WithCache enables vector caching with the given backend.
func WithCache(cc cache.Cache) Option {
	return func(c *ClientConfig) {
		c.Cache = cc
	}
}

// WithCacheTTL sets the TTL for cached vectors.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *ClientConfig) {
		if ttl > 0 {
			c.CacheTTL = ttl
		}
	}
}

// WithBatchSize sets how many texts are sent per backend call.
func WithBatchSize(n int) Option {
	return func(c *ClientConfig) {
		if n > 0 {
			c.BatchSize = n
		}
	}
}

// WithRateLimit throttles backend calls to rpm requests per minute.
// rpm <= 0 disables throttling.
func WithRateLimit(rpm, burst int) Option {
	return func(c *ClientConfig) {
		c.RateLimit = rpm
		c.RateBurst = burst
	}
}

// WithRetry configures retry behavior for transient backend errors.
func WithRetry(maxRetries int, backoff time.Duration) Option {
	return func(c *ClientConfig) {
		if maxRetries >= 0 {
			c.MaxRetries = maxRetries
		}
		if backoff > 0 {
			c.RetryBackoff = backoff
		}
	}
}

// WithTimeout bounds each Encode call with a deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(c *ClientConfig) {
		if timeout > 0 {
			c.Timeout = timeout
		}
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *ClientConfig) {
		if logger != nil {
			c.Logger = logger
		}
	}
}
