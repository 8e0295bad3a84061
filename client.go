package uniem

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vegaviazhang/uniem/internal/metrics"
	"github.com/vegaviazhang/uniem/internal/ratelimit"
	"github.com/vegaviazhang/uniem/pkg/cache"
	"github.com/vegaviazhang/uniem/pkg/encoder"
	"github.com/vegaviazhang/uniem/pkg/errors"
	"github.com/vegaviazhang/uniem/pkg/types"
	"github.com/vegaviazhang/uniem/providers"
)

const tracerName = "github.com/vegaviazhang/uniem"

// Client wraps an embedding backend with caching, rate limiting,
// retries, and observability.
//
// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	encoder      encoder.Encoder
	cache        cache.Cache
	cacheTTL     time.Duration
	limiter      *ratelimit.Limiter
	batchSize    int
	maxRetries   int
	retryBackoff time.Duration
	retryMax     time.Duration
	timeout      time.Duration
	logger       *slog.Logger
	tracer       trace.Tracer
}

// New creates a new embedding client with the given options.
//
// Example:
//
//	client, err := uniem.New(
//	    uniem.WithEncoderConfig(uniem.EncoderConfig{
//	        Type:   "openai",
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	        Model:  "text-embedding-3-small",
//	    }),
//	    uniem.WithCache(caches.NewMemoryDefault()),
//	)
func New(opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	enc := cfg.Encoder
	if enc == nil && cfg.EncoderConfig != nil {
		created, err := providers.Create(*cfg.EncoderConfig)
		if err != nil {
			return nil, fmt.Errorf("create encoder: %w", err)
		}
		enc = created
	}
	if enc == nil {
		return nil, errors.NewConfigError("encoder", "an encoder instance or encoder config is required")
	}

	c := &Client{
		encoder:      enc,
		cache:        cfg.Cache,
		cacheTTL:     cfg.CacheTTL,
		limiter:      ratelimit.New(cfg.RateLimit, cfg.RateBurst),
		batchSize:    cfg.BatchSize,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		retryMax:     cfg.RetryMax,
		timeout:      cfg.Timeout,
		logger:       cfg.Logger,
		tracer:       otel.Tracer(tracerName),
	}

	c.logger.Info("uniem client initialized",
		"backend", enc.Name(),
		"model", enc.Model(),
		"batch_size", c.batchSize,
		"cache_enabled", c.cache != nil,
		"rate_limit_rpm", cfg.RateLimit,
	)

	return c, nil
}

// Backend returns the name of the wrapped backend.
func (c *Client) Backend() string { return c.encoder.Name() }

// Model returns the model identifier of the wrapped backend.
func (c *Client) Model() string { return c.encoder.Model() }

// Close releases the cache connection, if any.
func (c *Client) Close() error {
	if c.cache != nil {
		return c.cache.Close()
	}
	return nil
}

// Encode embeds texts and returns vectors in input order. Cached vectors
// are served without a backend call; the rest are encoded in chunks of
// the configured batch size. Duplicate texts are encoded once.
func (c *Client) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	requestID := uuid.NewString()
	ctx, span := c.tracer.Start(ctx, "uniem.Encode",
		trace.WithAttributes(
			attribute.String("embedding.backend", c.encoder.Name()),
			attribute.String("embedding.model", c.encoder.Model()),
			attribute.Int("embedding.texts", len(texts)),
		))
	defer span.End()

	start := time.Now()
	logger := c.logger.With("request_id", requestID, "backend", c.encoder.Name())

	vectors := make([][]float32, len(texts))
	missing := c.fromCache(ctx, texts, vectors, logger)

	if len(missing) > 0 {
		if err := c.encodeMissing(ctx, texts, vectors, missing, logger); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	logger.Debug("encode complete",
		"texts", len(texts),
		"cache_hits", len(texts)-len(missing),
		"duration", time.Since(start),
	)
	return vectors, nil
}

// EncodePairs embeds the anchor and positive sides of a record batch.
// Both result slices are aligned with the input batch.
func (c *Client) EncodePairs(ctx context.Context, records []types.Record) (anchors, positives [][]float32, err error) {
	texts := make([]string, 0, len(records)*2)
	for _, r := range records {
		texts = append(texts, r.Anchor(), r.Positive())
	}

	vecs, err := c.Encode(ctx, texts)
	if err != nil {
		return nil, nil, err
	}

	anchors = make([][]float32, len(records))
	positives = make([][]float32, len(records))
	for i := range records {
		anchors[i] = vecs[2*i]
		positives[i] = vecs[2*i+1]
	}
	return anchors, positives, nil
}

// fromCache fills vectors from the cache where possible and returns the
// indices still missing. Without a cache every index is missing.
func (c *Client) fromCache(ctx context.Context, texts []string, vectors [][]float32, logger *slog.Logger) []int {
	missing := make([]int, 0, len(texts))
	if c.cache == nil {
		for i := range texts {
			missing = append(missing, i)
		}
		return missing
	}

	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = cache.Key(c.encoder.Name(), c.encoder.Model(), text)
	}

	cached, err := c.cache.GetMulti(ctx, keys)
	if err != nil {
		logger.Warn("cache lookup failed, encoding everything", "error", err)
		for i := range texts {
			missing = append(missing, i)
		}
		return missing
	}

	for i := range texts {
		data, ok := cached[keys[i]]
		if !ok {
			metrics.CacheRequests.WithLabelValues(c.encoder.Name(), c.encoder.Model(), metrics.OutcomeMiss).Inc()
			missing = append(missing, i)
			continue
		}
		var vec []float32
		if err := json.Unmarshal(data, &vec); err != nil {
			logger.Warn("corrupt cache entry, re-encoding", "error", err)
			metrics.CacheRequests.WithLabelValues(c.encoder.Name(), c.encoder.Model(), metrics.OutcomeMiss).Inc()
			missing = append(missing, i)
			continue
		}
		metrics.CacheRequests.WithLabelValues(c.encoder.Name(), c.encoder.Model(), metrics.OutcomeHit).Inc()
		vectors[i] = vec
	}
	return missing
}

// encodeMissing encodes the texts at the missing indices, deduplicated,
// and fills vectors in place.
func (c *Client) encodeMissing(ctx context.Context, texts []string, vectors [][]float32, missing []int, logger *slog.Logger) error {
	unique := make([]string, 0, len(missing))
	seen := make(map[string]int, len(missing)) // text -> index into unique
	for _, idx := range missing {
		if _, ok := seen[texts[idx]]; !ok {
			seen[texts[idx]] = len(unique)
			unique = append(unique, texts[idx])
		}
	}

	encoded := make([][]float32, 0, len(unique))
	for _, chunk := range encoder.Chunk(unique, c.batchSize) {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
		vecs, err := c.encodeWithRetry(ctx, chunk, logger)
		if err != nil {
			return err
		}
		encoded = append(encoded, vecs...)
	}

	for _, idx := range missing {
		vectors[idx] = encoded[seen[texts[idx]]]
	}

	if c.cache != nil {
		c.storeInCache(ctx, unique, encoded, logger)
	}
	return nil
}

// encodeWithRetry calls the backend, retrying retryable failures with
// exponential backoff.
func (c *Client) encodeWithRetry(ctx context.Context, chunk []string, logger *slog.Logger) ([][]float32, error) {
	backend, model := c.encoder.Name(), c.encoder.Model()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryBackoff << (attempt - 1)
			if c.retryMax > 0 && delay > c.retryMax {
				delay = c.retryMax
			}
			metrics.Retries.WithLabelValues(backend, model).Inc()
			logger.Warn("retrying encode", "attempt", attempt, "delay", delay, "error", lastErr)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		start := time.Now()
		vecs, err := c.encoder.Encode(ctx, chunk)
		metrics.EncodeLatency.WithLabelValues(backend, model).Observe(time.Since(start).Seconds())
		if err == nil {
			metrics.EncodeRequests.WithLabelValues(backend, model, metrics.StatusOK).Inc()
			metrics.TextsEncoded.WithLabelValues(backend, model).Add(float64(len(chunk)))
			return vecs, nil
		}

		metrics.EncodeRequests.WithLabelValues(backend, model, metrics.StatusError).Inc()
		lastErr = err
		if !errors.IsRetryable(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("encode failed after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) storeInCache(ctx context.Context, texts []string, vectors [][]float32, logger *slog.Logger) {
	entries := make([]cache.Entry, 0, len(texts))
	for i, text := range texts {
		data, err := json.Marshal(vectors[i])
		if err != nil {
			continue
		}
		entries = append(entries, cache.Entry{
			Key:   cache.Key(c.encoder.Name(), c.encoder.Model(), text),
			Value: data,
			TTL:   c.cacheTTL,
		})
	}
	if err := c.cache.SetPipeline(ctx, entries); err != nil {
		// A cold cache only costs money, not correctness.
		logger.Warn("cache write failed", "error", err)
	}
}
