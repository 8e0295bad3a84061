// Package main is the embedbench entry point. It loads a medi-format
// dataset, drives the task-partitioned sampler, and encodes anchor
// batches against a configured backend, reporting throughput.
package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vegaviazhang/uniem"
	"github.com/vegaviazhang/uniem/caches"
	"github.com/vegaviazhang/uniem/internal/config"
	"github.com/vegaviazhang/uniem/pkg/cache"
	"github.com/vegaviazhang/uniem/pkg/dataset"
	"github.com/vegaviazhang/uniem/pkg/encoder"
)

func main() {
	configPath := flag.String("config", "config/embedbench.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)
	logger.Info("starting embedbench", "version", uniem.Version)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("embedbench failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	ds, err := loadDataset(cfg.Dataset)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded",
		"path", cfg.Dataset.Path,
		"tasks", len(ds.Tasks()),
		"batches", ds.Len(),
	)

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	var totalTexts, totalBatches int
	start := time.Now()

	for epoch := 0; epoch < cfg.Dataset.Epochs; epoch++ {
		if epoch > 0 && cfg.Dataset.RefreshPerEpoch {
			ds.Refresh()
		}

		limit := ds.Len()
		if cfg.Dataset.MaxBatches > 0 && cfg.Dataset.MaxBatches < limit {
			limit = cfg.Dataset.MaxBatches
		}

		for i := 0; i < limit; i++ {
			batch, err := ds.Get(i)
			if err != nil {
				return err
			}

			anchors, _, err := client.EncodePairs(ctx, batch)
			if err != nil {
				return err
			}

			totalTexts += len(batch) * 2
			totalBatches++
			logger.Debug("batch encoded",
				"epoch", epoch,
				"batch", i,
				"records", len(batch),
				"dims", len(anchors[0]),
			)
		}
	}

	elapsed := time.Since(start)
	logger.Info("benchmark complete",
		"batches", totalBatches,
		"texts", totalTexts,
		"elapsed", elapsed,
		"texts_per_second", float64(totalTexts)/elapsed.Seconds(),
	)
	return nil
}

func loadDataset(cfg config.DatasetConfig) (*dataset.MediDataset, error) {
	var rng *rand.Rand
	if cfg.ShuffleSeed != 0 {
		rng = rand.New(rand.NewPCG(cfg.ShuffleSeed, cfg.ShuffleSeed))
	}

	return dataset.LoadMediFile(cfg.Path, dataset.MediConfig{
		BatchSize:  cfg.BatchSize,
		Kind:       dataset.Kind(cfg.Kind),
		WithPrompt: cfg.WithPrompt,
		DropLast:   cfg.DropLast,
		Rand:       rng,
	})
}

func newClient(cfg *config.Config, logger *slog.Logger) (*uniem.Client, error) {
	opts := []uniem.Option{
		uniem.WithEncoderConfig(encoder.Config{
			Name:    cfg.Encoder.Type,
			Type:    cfg.Encoder.Type,
			APIKey:  cfg.Encoder.APIKey,
			BaseURL: cfg.Encoder.BaseURL,
			Model:   cfg.Encoder.Model,
			Timeout: cfg.Encoder.Timeout,
			Headers: cfg.Encoder.Headers,
		}),
		uniem.WithBatchSize(cfg.Client.BatchSize),
		uniem.WithRateLimit(cfg.Client.RateLimit, cfg.Client.RateBurst),
		uniem.WithRetry(cfg.Client.MaxRetries, 0),
		uniem.WithLogger(logger),
	}

	vcache, err := newCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if vcache != nil {
		opts = append(opts, uniem.WithCache(vcache), uniem.WithCacheTTL(cfg.Cache.TTL))
	}

	return uniem.New(opts...)
}

func newCache(cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "local":
		return caches.NewMemoryDefault(), nil
	case "redis":
		return caches.NewRedis(caches.RedisConfig{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPass,
			DB:         cfg.RedisDB,
			Namespace:  cfg.Namespace,
			DefaultTTL: cfg.TTL,
		})
	default:
		return nil, nil
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
