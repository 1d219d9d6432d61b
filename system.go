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


package mentor

import (
	"log/slog"

	"github.com/cadenza-ai/mentor/ai"
	"github.com/cadenza-ai/mentor/ai/openai"
	"github.com/cadenza-ai/mentor/ingestion"
	"github.com/cadenza-ai/mentor/respond"
	"github.com/cadenza-ai/mentor/retrieval"
	"github.com/cadenza-ai/mentor/session"
	"github.com/cadenza-ai/mentor/storage"
	"github.com/cadenza-ai/mentor/storage/badger"
)

// System wires storage, the AI provider, and the session store together.
// It is the entry point shared by the daemon and the CLI.
type System struct {
	backend  *badger.Backend
	index    storage.KnowledgeIndex
	sessions storage.SessionRepository
	store    *session.Store
	provider ai.Provider
	logger   *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	inMemory bool
}

// WithAIConfig sets the embedding and chat service configuration.
func WithAIConfig(cfg *ai.Config) SystemOption {
	return func(o *systemOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider injects an already-built AI provider, bypassing the
// openai client construction. Used by tests.
func WithProvider(provider ai.Provider) SystemOption {
	return func(o *systemOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps the index and sessions off disk.
func WithInMemoryStorage() SystemOption {
	return func(o *systemOptions) {
		o.inMemory = true
	}
}

func NewSystem(filePath string, opts ...SystemOption) (*System, error) {
	// Apply options
	options := &systemOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create knowledge index
	index, err := badger.NewKnowledgeIndex(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create session repository
	sessions, err := badger.NewSessionRepository(backend)
	if err != nil {
		index.Close()
		backend.Close()
		return nil, err
	}

	store, err := session.NewStore(sessions)
	if err != nil {
		sessions.Close()
		index.Close()
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			sessions.Close()
			index.Close()
			backend.Close()
			return nil, err
		}
	}

	return &System{
		backend:  backend,
		index:    index,
		sessions: sessions,
		store:    store,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

func (s *System) Close() error {
	// Close AI provider first
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := s.sessions.Close(); err != nil {
		s.logger.Error("error closing session repository", "err", err)
		return err
	}
	if err := s.index.Close(); err != nil {
		s.logger.Error("error closing knowledge index", "err", err)
		return err
	}

	// Close backend
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (s *System) KnowledgeIndex() storage.KnowledgeIndex {
	return s.index
}

func (s *System) SessionStore() *session.Store {
	return s.store
}

func (s *System) Provider() ai.Provider {
	return s.provider
}

func (s *System) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(s.index, s.provider.Embedder(), opts...)
}

func (s *System) NewRetrievalEngine(opts ...retrieval.Option) (*retrieval.Engine, error) {
	return retrieval.NewEngine(s.index, s.provider.Embedder(), opts...)
}

func (s *System) NewResponder(opts ...respond.Option) (*respond.Responder, error) {
	engine, err := s.NewRetrievalEngine()
	if err != nil {
		return nil, err
	}
	return respond.NewResponder(s.store, engine, s.provider.ChatModel(), opts...)
}
