// Copyright 2026 Cadenza AI
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package config loads the service configuration from a JSON file,
// filling in defaults for anything the file leaves out.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Metric names the similarity metric used by the knowledge index. Vectors
// are normalized at insert time, so cosine and dot are the same number.
const (
	MetricCosine = "cosine"
	MetricDot    = "dot"
)

// IndexTypeFlat is the only supported index layout: a full scan over
// all stored vectors.
const IndexTypeFlat = "flat"

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config holds everything the daemon and CLI need to run.
type Config struct {
	// Storage
	IndexPath      string `json:"indexPath"`
	CollectionName string `json:"collectionName"`
	Metric         string `json:"metric"`
	IndexType      string `json:"indexType"`

	// Chunking
	ChunkSize    int `json:"chunkSize"`
	ChunkOverlap int `json:"chunkOverlap"`

	// Ingestion
	BatchSize int `json:"batchSize"`

	// Models
	EmbeddingModel string `json:"embeddingModel"`
	EmbeddingHost  string `json:"embeddingHost"`
	ChatModel      string `json:"chatModel"`
	ChatHost       string `json:"chatHost"`

	// Retrieval and generation
	SimilarityThreshold float32 `json:"similarityThreshold"`
	TopK                int     `json:"topK"`
	MaxTokens           int     `json:"maxTokens"`
	Temperature         float64 `json:"temperature"`
	HistoryWindowSize   int     `json:"historyWindowSize"`

	// Server
	ListenAddr     string        `json:"listenAddr"`
	RequestTimeout time.Duration `json:"requestTimeout"`

	// Transcript sources
	CaptionURL     string `json:"captionUrl"`
	TranscriberURL string `json:"transcriberUrl"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		IndexPath:           "./data/index",
		CollectionName:      "coaching",
		Metric:              MetricCosine,
		IndexType:           IndexTypeFlat,
		ChunkSize:           1000,
		ChunkOverlap:        100,
		BatchSize:           16,
		EmbeddingModel:      "nomic-embed-text",
		EmbeddingHost:       "http://localhost:11434/v1",
		ChatModel:           "llama3.1:8b",
		ChatHost:            "http://localhost:11434/v1",
		SimilarityThreshold: 0.6,
		TopK:                3,
		MaxTokens:           512,
		Temperature:         0.1,
		HistoryWindowSize:   5,
		ListenAddr:          ":8080",
		RequestTimeout:      60 * time.Second,
	}
}

// Load reads a JSON config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	// The file carries the timeout in seconds; time.Duration would
	// demand nanoseconds in JSON.
	var file struct {
		Config
		RequestTimeoutSeconds int `json:"requestTimeoutSeconds"`
	}
	file.Config = *cfg
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	*cfg = file.Config
	if file.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(file.RequestTimeoutSeconds) * time.Second
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the system cannot run with.
func (c *Config) Validate() error {
	if c.IndexPath == "" {
		return fmt.Errorf("%w: indexPath must not be empty", ErrInvalidConfig)
	}
	if c.Metric != MetricCosine && c.Metric != MetricDot {
		return fmt.Errorf("%w: metric must be %q or %q, got %q",
			ErrInvalidConfig, MetricCosine, MetricDot, c.Metric)
	}
	if c.IndexType != IndexTypeFlat {
		return fmt.Errorf("%w: indexType must be %q, got %q",
			ErrInvalidConfig, IndexTypeFlat, c.IndexType)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunkSize must be positive", ErrInvalidConfig)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunkOverlap must be in [0, chunkSize)", ErrInvalidConfig)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batchSize must be positive", ErrInvalidConfig)
	}
	if c.EmbeddingModel == "" || c.EmbeddingHost == "" {
		return fmt.Errorf("%w: embedding model and host are required", ErrInvalidConfig)
	}
	if c.ChatModel == "" || c.ChatHost == "" {
		return fmt.Errorf("%w: chat model and host are required", ErrInvalidConfig)
	}
	if c.SimilarityThreshold < -1 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarityThreshold must be in [-1, 1]", ErrInvalidConfig)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: topK must be positive", ErrInvalidConfig)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("%w: maxTokens must be positive", ErrInvalidConfig)
	}
	if c.HistoryWindowSize < 1 {
		return fmt.Errorf("%w: historyWindowSize must be at least 1", ErrInvalidConfig)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listenAddr must not be empty", ErrInvalidConfig)
	}
	return nil
}
