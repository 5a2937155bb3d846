// Copyright 2025 Kestrel Works
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


// Package granary turns dropped documents into a searchable knowledge
// base: files and raw text are chunked, embedded, and stored once, then
// answered over with retrieval-augmented completion.
package granary

import (
	"log/slog"

	"github.com/kestrelworks/granary/ai"
	"github.com/kestrelworks/granary/ai/openai"
	"github.com/kestrelworks/granary/ingest"
	"github.com/kestrelworks/granary/query"
	"github.com/kestrelworks/granary/storage"
	"github.com/kestrelworks/granary/storage/badger"
	"github.com/kestrelworks/granary/watch"
)

// Granary bundles the storage backend and AI services and hands out the
// ingestion, watching, and query components built on them.
type Granary struct {
	backend    *badger.Backend
	store      storage.VectorStore
	watchRepo  storage.WatchStateRepository
	provider   ai.Provider
	logger     *slog.Logger
}

// GranaryOption configures a Granary.
type GranaryOption func(*granaryOptions)

type granaryOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	inMemory bool
}

// WithAIConfig sets the AI service configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(cfg *ai.Config) GranaryOption {
	return func(o *granaryOptions) {
		o.aiConfig = cfg
	}
}

// WithAIProvider injects a pre-built AI provider, bypassing the OpenAI
// client construction. Intended for tests.
func WithAIProvider(provider ai.Provider) GranaryOption {
	return func(o *granaryOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the storage backend in memory instead of on disk.
// Intended for tests.
func WithInMemory() GranaryOption {
	return func(o *granaryOptions) {
		o.inMemory = true
	}
}

// New opens a granary at the given storage path.
func New(filePath string, opts ...GranaryOption) (*Granary, error) {
	options := &granaryOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	store, err := badger.NewVectorStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	watchRepo, err := badger.NewWatchStateRepository(backend)
	if err != nil {
		store.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			watchRepo.Close()
			store.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Granary{
		backend:   backend,
		store:     store,
		watchRepo: watchRepo,
		provider:  provider,
		logger:    slog.Default(),
	}, nil
}

// Close releases the AI provider and the storage backend.
func (g *Granary) Close() error {
	if err := g.provider.Close(); err != nil {
		g.logger.Error("error closing AI provider", "err", err)
	}

	if err := g.watchRepo.Close(); err != nil {
		g.logger.Error("error closing watch state repository", "err", err)
		return err
	}
	if err := g.store.Close(); err != nil {
		g.logger.Error("error closing vector store", "err", err)
		return err
	}

	if err := g.backend.Close(); err != nil {
		g.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Store returns the vector store.
func (g *Granary) Store() storage.VectorStore {
	return g.store
}

// WatchStates returns the watch state repository.
func (g *Granary) WatchStates() storage.WatchStateRepository {
	return g.watchRepo
}

// NewPipeline creates an ingestion pipeline on this granary's store and
// embedder.
func (g *Granary) NewPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(g.store, g.provider.Embedder(), opts...)
}

// NewWatcher creates a folder watcher feeding the given pipeline.
func (g *Granary) NewWatcher(dir string, pipeline *ingest.Pipeline, opts ...watch.Option) (*watch.Watcher, error) {
	return watch.NewWatcher(dir, pipeline, g.watchRepo, opts...)
}

// NewSearcher creates a similarity searcher over this granary's store.
func (g *Granary) NewSearcher(opts ...query.SearcherOption) (*query.Searcher, error) {
	return query.NewSearcher(g.store, g.provider.Embedder(), opts...)
}

// NewAnswerer creates a question answerer over this granary's store.
func (g *Granary) NewAnswerer(opts ...query.AnswererOption) (*query.Answerer, error) {
	searcher, err := g.NewSearcher()
	if err != nil {
		return nil, err
	}
	return query.NewAnswerer(searcher, g.provider.Completer(), opts...)
}
