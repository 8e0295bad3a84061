package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
encoder:
  type: zhipu
  api_key: id.secret
  model: embedding-2
  timeout: 10s
dataset:
  path: /data/medi.json
  batch_size: 64
  kind: pair
cache:
  type: redis
  redis_addr: localhost:6379
client:
  batch_size: 8
  rate_limit: 120
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "zhipu", cfg.Encoder.Type)
	assert.Equal(t, "id.secret", cfg.Encoder.APIKey)
	assert.Equal(t, 10*time.Second, cfg.Encoder.Timeout)
	assert.Equal(t, 64, cfg.Dataset.BatchSize)
	assert.Equal(t, "pair", cfg.Dataset.Kind)
	assert.Equal(t, "redis", cfg.Cache.Type)
	assert.Equal(t, 120, cfg.Client.RateLimit)

	// Defaults survive partial configuration.
	assert.Equal(t, 3, cfg.Client.MaxRetries)
	assert.Equal(t, 1, cfg.Dataset.Epochs)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "sk-from-env")

	path := writeConfig(t, `
encoder:
  type: openai
  api_key: ${TEST_EMBED_KEY}
dataset:
  path: /data/medi.json
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.Encoder.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing dataset path", func(c *Config) { c.Dataset.Path = "" }, "path is required"},
		{"bad batch size", func(c *Config) { c.Dataset.BatchSize = 0 }, "batch_size"},
		{"bad kind", func(c *Config) { c.Dataset.Kind = "quad" }, "unknown kind"},
		{"bad cache type", func(c *Config) { c.Cache.Type = "memcached" }, "unknown type"},
		{"redis without addr", func(c *Config) { c.Cache.Type = "redis" }, "redis_addr"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "unknown format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Dataset.Path = "/data/medi.json"
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/config.yaml")
	require.Error(t, err)
}
