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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/cadenza-ai/mentor"
	"github.com/cadenza-ai/mentor/ai"
	"github.com/cadenza-ai/mentor/config"
	"github.com/cadenza-ai/mentor/respond"
	"github.com/cadenza-ai/mentor/server"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "coachd",
		Usage: "Coaching chat service over a transcript knowledge index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the JSON configuration file",
				EnvVars: []string{"COACHD_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Listen address, overrides the config file",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Action: serveCommand,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand(c *cli.Context) error {
	// A .env file is optional; environment variables referenced by the
	// config flag may come from it.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if addr := c.String("listen"); addr != "" {
		cfg.ListenAddr = addr
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(cfg.EmbeddingHost),
		ai.WithEmbeddingModel(cfg.EmbeddingModel),
		ai.WithChatHost(cfg.ChatHost),
		ai.WithChatModel(cfg.ChatModel),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	sys, err := mentor.NewSystem(cfg.IndexPath, mentor.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open system: %w", err)
	}
	defer sys.Close()

	responder, err := sys.NewResponder(
		respond.WithRetrievalPolicy(cfg.TopK, cfg.SimilarityThreshold),
		respond.WithGeneration(cfg.MaxTokens, cfg.Temperature),
		respond.WithHistoryWindow(cfg.HistoryWindowSize),
		respond.WithRequestTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create responder: %w", err)
	}

	srv, err := server.NewServer(responder)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	slog.Info("starting coaching chat service",
		"addr", cfg.ListenAddr,
		"index", cfg.IndexPath,
		"chatModel", cfg.ChatModel,
		"embeddingModel", cfg.EmbeddingModel)

	return srv.Run(cfg.ListenAddr)
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
