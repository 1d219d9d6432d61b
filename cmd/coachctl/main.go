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


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cadenza-ai/mentor/ai"
	"github.com/cadenza-ai/mentor/ai/openai"
	"github.com/cadenza-ai/mentor/core"
	"github.com/cadenza-ai/mentor/harvest"
	"github.com/cadenza-ai/mentor/ingestion"
	"github.com/cadenza-ai/mentor/retrieval"
	"github.com/cadenza-ai/mentor/storage/badger"
	"github.com/urfave/cli/v2"
)

// manifest lists what an ingest run should index: inline transcripts
// and/or references to fetch through the caption and transcription
// services.
type manifest struct {
	Sources []manifestSource `json:"sources"`
	Refs    []string         `json:"refs"`
}

type manifestSource struct {
	SourceID  string `json:"sourceId"`
	OriginRef string `json:"originRef"`
	Text      string `json:"text"`
	Language  string `json:"language"`
}

func (m *manifest) transcriptSources() []*core.TranscriptSource {
	sources := make([]*core.TranscriptSource, len(m.Sources))
	for i, s := range m.Sources {
		sources[i] = &core.TranscriptSource{
			SourceID:  s.SourceID,
			OriginRef: s.OriginRef,
			Text:      s.Text,
			Language:  s.Language,
		}
	}
	return sources
}

func main() {
	app := &cli.App{
		Name:  "coachctl",
		Usage: "Manage the coaching knowledge index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Ingest transcripts from a manifest file into the index",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "manifest",
						Aliases:  []string{"m"},
						Usage:    "Path to the ingest manifest JSON file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "caption-url",
						Usage: "Caption service base URL (needed when the manifest lists refs)",
					},
					&cli.StringFlag{
						Name:  "transcriber-url",
						Usage: "Transcription service base URL (fallback for refs without captions)",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk window size in characters",
						Value: 1000,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Chunk window overlap in characters",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of sources to process in each batch",
						Value: 16,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N sources",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 500 * time.Millisecond,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Query the knowledge index directly",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of results",
						Value: 3,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum cosine similarity",
						Value: 0.6,
					},
				},
			},
			{
				Name:   "count",
				Usage:  "Print the number of records in the knowledge index",
				Action: countCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
			{
				Name:   "reset",
				Usage:  "Delete every record in the knowledge index",
				Action: resetCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Skip the confirmation prompt",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	data, err := os.ReadFile(c.String("manifest"))
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}
	if len(m.Sources) == 0 && len(m.Refs) == 0 {
		return fmt.Errorf("manifest lists no sources and no refs")
	}

	// Open database
	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	index, err := badger.NewKnowledgeIndex(backend)
	if err != nil {
		return fmt.Errorf("failed to create knowledge index: %w", err)
	}
	defer index.Close()

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	opts := []ingestion.Option{
		ingestion.WithChunkWindow(c.Int("chunk-size"), c.Int("chunk-overlap")),
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithRetryPolicy(c.Int("max-retries"), c.Duration("retry-delay")),
		ingestion.WithProgress(os.Stderr, c.Int("report-interval")),
	}

	// Refs need a fetcher: captions first, transcription as fallback
	if len(m.Refs) > 0 {
		var fetchers []harvest.Fetcher
		if url := c.String("caption-url"); url != "" {
			fetchers = append(fetchers, harvest.NewCaptionClient(url))
		}
		if url := c.String("transcriber-url"); url != "" {
			fetchers = append(fetchers, harvest.NewTranscriberClient(url))
		}
		if len(fetchers) == 0 {
			return fmt.Errorf("manifest lists refs but no caption-url or transcriber-url was given")
		}
		opts = append(opts, ingestion.WithFetcher(harvest.NewChain(fetchers...)))
	}

	pipeline, err := ingestion.NewPipeline(index, embedder, opts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	total := &ingestion.Result{}
	if len(m.Sources) > 0 {
		result, err := pipeline.IngestSources(ctx, m.transcriptSources()...)
		if err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}
		accumulate(total, result)
	}
	if len(m.Refs) > 0 {
		result, err := pipeline.IngestRefs(ctx, m.Refs...)
		if err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}
		accumulate(total, result)
	}

	fmt.Fprintf(os.Stderr, "Done: %d  Skipped: %d  Failed: %d  Records: %d\n",
		total.Done, total.Skipped, total.Failed, total.Records)
	if total.Failed > 0 {
		return fmt.Errorf("%d sources failed", total.Failed)
	}
	return nil
}

func accumulate(total, result *ingestion.Result) {
	total.Done += result.Done
	total.Skipped += result.Skipped
	total.Failed += result.Failed
	total.Records += result.Records
	total.Sources = append(total.Sources, result.Sources...)
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	// Open database
	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	index, err := badger.NewKnowledgeIndex(backend)
	if err != nil {
		return fmt.Errorf("failed to create knowledge index: %w", err)
	}
	defer index.Close()

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	engine, err := retrieval.NewEngine(index, embedder)
	if err != nil {
		return fmt.Errorf("failed to create retrieval engine: %w", err)
	}

	results, err := engine.Retrieve(ctx, query, c.Int("top-k"), float32(c.Float64("threshold")))
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results above the similarity threshold.")
		return nil
	}
	for i, result := range results {
		fmt.Printf("%d. [%.3f] %s (chunk %d, %s)\n", i+1,
			result.Score,
			result.Record.SourceID,
			result.Record.Seq,
			result.Record.OriginRef)
		fmt.Printf("   %s\n\n", result.Record.Text)
	}
	return nil
}

func countCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	index, err := badger.NewKnowledgeIndex(backend)
	if err != nil {
		return fmt.Errorf("failed to create knowledge index: %w", err)
	}
	defer index.Close()

	count, err := index.Count(ctx)
	if err != nil {
		return fmt.Errorf("count failed: %w", err)
	}
	fmt.Println(count)
	return nil
}

func resetCommand(c *cli.Context) error {
	ctx := context.Background()

	if !c.Bool("yes") {
		fmt.Fprintf(os.Stderr, "This deletes every record in %s. Type 'yes' to continue: ", c.String("db"))
		var answer string
		fmt.Fscanln(os.Stdin, &answer)
		if strings.ToLower(strings.TrimSpace(answer)) != "yes" {
			fmt.Fprintln(os.Stderr, "Aborted.")
			return nil
		}
	}

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	index, err := badger.NewKnowledgeIndex(backend)
	if err != nil {
		return fmt.Errorf("failed to create knowledge index: %w", err)
	}
	defer index.Close()

	if err := index.Reset(ctx); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Knowledge index cleared.")
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
