package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.ChunkOverlap)
	assert.Equal(t, MetricCosine, cfg.Metric)
	assert.Equal(t, IndexTypeFlat, cfg.IndexType)
	assert.Equal(t, float32(0.6), cfg.SimilarityThreshold)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"chunkSize": 500,
		"chunkOverlap": 50,
		"chatModel": "mistral:7b",
		"listenAddr": ":9000",
		"requestTimeoutSeconds": 120
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, 50, cfg.ChunkOverlap)
	assert.Equal(t, "mistral:7b", cfg.ChatModel)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 120*time.Second, cfg.RequestTimeout)

	// Untouched fields keep their defaults
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Equal(t, 3, cfg.TopK)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"chunkSize":`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty index path", func(c *Config) { c.IndexPath = "" }},
		{"unknown metric", func(c *Config) { c.Metric = "euclidean" }},
		{"unknown index type", func(c *Config) { c.IndexType = "hnsw" }},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"overlap not below size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }},
		{"missing chat host", func(c *Config) { c.ChatHost = "" }},
		{"threshold above one", func(c *Config) { c.SimilarityThreshold = 1.5 }},
		{"zero topK", func(c *Config) { c.TopK = 0 }},
		{"zero max tokens", func(c *Config) { c.MaxTokens = 0 }},
		{"zero history window", func(c *Config) { c.HistoryWindowSize = 0 }},
		{"empty listen address", func(c *Config) { c.ListenAddr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
