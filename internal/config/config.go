// Package config loads the embedbench configuration from YAML files
// with environment variable expansion.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level embedbench configuration.
type Config struct {
	Encoder EncoderConfig `yaml:"encoder"`
	Dataset DatasetConfig `yaml:"dataset"`
	Cache   CacheConfig   `yaml:"cache"`
	Client  ClientConfig  `yaml:"client"`
	Logging LoggingConfig `yaml:"logging"`
}

// EncoderConfig selects and configures a backend.
type EncoderConfig struct {
	Type    string            `yaml:"type"`     // openai, azure, zhipu, tei, ollama
	APIKey  string            `yaml:"api_key"`  // supports ${ENV_VAR} expansion
	BaseURL string            `yaml:"base_url"` //
	Model   string            `yaml:"model"`    //
	Timeout time.Duration     `yaml:"timeout"`  //
	Headers map[string]string `yaml:"headers"`  // extra headers per request
}

// DatasetConfig describes the training data to batch.
type DatasetConfig struct {
	Path            string `yaml:"path"`         // JSON file of records
	BatchSize       int    `yaml:"batch_size"`   //
	Kind            string `yaml:"kind"`         // pair or triplet
	WithPrompt      bool   `yaml:"with_prompt"`  // prepend task instruction
	DropLast        bool   `yaml:"drop_last"`    // drop the trailing partial batch
	MaxBatches      int    `yaml:"max_batches"`  // 0 = all
	ShuffleSeed     uint64 `yaml:"shuffle_seed"` // 0 = random
	RefreshPerEpoch bool   `yaml:"refresh_per_epoch"`
	Epochs          int    `yaml:"epochs"`
}

// CacheConfig selects the vector cache backend.
type CacheConfig struct {
	Type      string        `yaml:"type"` // none, local, redis
	TTL       time.Duration `yaml:"ttl"`
	RedisAddr string        `yaml:"redis_addr"`
	RedisDB   int           `yaml:"redis_db"`
	RedisPass string        `yaml:"redis_pass"`
	Namespace string        `yaml:"namespace"`
}

// ClientConfig tunes the encoding client.
type ClientConfig struct {
	BatchSize  int `yaml:"batch_size"`  // texts per backend call
	RateLimit  int `yaml:"rate_limit"`  // requests per minute, 0 = unlimited
	RateBurst  int `yaml:"rate_burst"`  //
	MaxRetries int `yaml:"max_retries"` //
}

// LoggingConfig tunes the logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Encoder: EncoderConfig{
			Type:    "openai",
			Model:   "text-embedding-3-small",
			Timeout: 30 * time.Second,
		},
		Dataset: DatasetConfig{
			BatchSize: 32,
			Kind:      "triplet",
			Epochs:    1,
		},
		Cache: CacheConfig{
			Type: "local",
			TTL:  time.Hour,
		},
		Client: ClientConfig{
			BatchSize:  16,
			MaxRetries: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFromFile loads configuration from a YAML file.
// Environment variables in the form ${VAR} are expanded before parsing.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Encoder.Type == "" {
		return fmt.Errorf("encoder: type is required")
	}

	if c.Dataset.Path == "" {
		return fmt.Errorf("dataset: path is required")
	}
	if c.Dataset.BatchSize <= 0 {
		return fmt.Errorf("dataset: batch_size must be positive, got %d", c.Dataset.BatchSize)
	}
	switch c.Dataset.Kind {
	case "pair", "triplet":
	default:
		return fmt.Errorf("dataset: unknown kind %q", c.Dataset.Kind)
	}
	if c.Dataset.Epochs <= 0 {
		return fmt.Errorf("dataset: epochs must be positive, got %d", c.Dataset.Epochs)
	}

	switch c.Cache.Type {
	case "", "none", "local", "redis":
	default:
		return fmt.Errorf("cache: unknown type %q", c.Cache.Type)
	}
	if c.Cache.Type == "redis" && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache: redis_addr is required for the redis backend")
	}

	if c.Client.BatchSize <= 0 {
		return fmt.Errorf("client: batch_size must be positive, got %d", c.Client.BatchSize)
	}
	if c.Client.MaxRetries < 0 {
		return fmt.Errorf("client: max_retries must not be negative, got %d", c.Client.MaxRetries)
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging: unknown format %q", c.Logging.Format)
	}

	return nil
}
