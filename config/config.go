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


// Package config loads granary settings from the environment.
//
// Settings come from GRANARY_* environment variables, optionally seeded
// from a .env file. Unset variables fall back to defaults that match a
// local OpenAI-compatible setup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/kestrelworks/granary/ai"
	"github.com/kestrelworks/granary/chunk"
	"github.com/kestrelworks/granary/ingest"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultDBPath   = "./granary.db"
	DefaultWatchDir = "./watched"
)

// Config holds the runtime configuration for granary.
type Config struct {
	// DBPath is the BadgerDB directory.
	DBPath string

	// AI service settings.
	EmbeddingHost   string
	CompletionHost  string
	EmbeddingModel  string
	CompletionModel string
	APIKey          string

	// Chunking settings.
	ChunkStrategy       string // "fixed_size", "document", or "semantic"
	ChunkSize           int
	ChunkOverlap        int
	SemanticChunkSize   int
	SimilarityThreshold float64

	// MaxRetryAttempts bounds retries of rate-limited embedding calls.
	MaxRetryAttempts int

	// Folder watching settings.
	WatchDir      string
	WatchDebounce time.Duration
}

// FromEnv builds a Config from GRANARY_* environment variables.
// A .env file in the working directory is loaded first when present.
func FromEnv() (*Config, error) {
	// Missing .env is fine; the environment wins over the file anyway.
	_ = godotenv.Load()

	aiDefaults := ai.DefaultConfig()

	cfg := &Config{
		DBPath:          envOr("GRANARY_DB_PATH", DefaultDBPath),
		EmbeddingHost:   envOr("GRANARY_EMBEDDING_HOST", aiDefaults.EmbeddingHost),
		CompletionHost:  envOr("GRANARY_COMPLETION_HOST", aiDefaults.CompletionHost),
		EmbeddingModel:  envOr("GRANARY_EMBEDDING_MODEL", aiDefaults.EmbeddingModel),
		CompletionModel: envOr("GRANARY_COMPLETION_MODEL", aiDefaults.CompletionModel),
		APIKey:          os.Getenv("GRANARY_API_KEY"),
		ChunkStrategy:   envOr("GRANARY_CHUNK_STRATEGY", chunk.KindSemantic.String()),
		WatchDir:        envOr("GRANARY_WATCH_DIR", DefaultWatchDir),
	}

	var err error
	if cfg.ChunkSize, err = envInt("GRANARY_CHUNK_SIZE", chunk.DefaultSize); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = envInt("GRANARY_CHUNK_OVERLAP", chunk.DefaultOverlap); err != nil {
		return nil, err
	}
	if cfg.SemanticChunkSize, err = envInt("GRANARY_SEMANTIC_CHUNK_SIZE", chunk.DefaultSemanticTargetSize); err != nil {
		return nil, err
	}
	if cfg.SimilarityThreshold, err = envFloat("GRANARY_SIMILARITY_THRESHOLD", chunk.DefaultSimilarityThreshold); err != nil {
		return nil, err
	}
	if cfg.MaxRetryAttempts, err = envInt("GRANARY_MAX_RETRY_ATTEMPTS", ingest.DefaultMaxAttempts); err != nil {
		return nil, err
	}
	if cfg.WatchDebounce, err = envDuration("GRANARY_WATCH_DEBOUNCE", 2*time.Second); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AIConfig builds the ai.Config corresponding to this configuration.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.EmbeddingHost),
		ai.WithCompletionHost(c.CompletionHost),
		ai.WithEmbeddingModel(c.EmbeddingModel),
		ai.WithCompletionModel(c.CompletionModel),
		ai.WithAPIKey(c.APIKey),
	)
}

// Policy builds the chunking policy selected by this configuration.
// An unknown strategy name or invalid parameters are reported as errors;
// the caller should treat them as fatal rather than fall back silently.
func (c *Config) Policy() (chunk.Policy, error) {
	var policy chunk.Policy
	switch c.ChunkStrategy {
	case chunk.KindFixedSize.String():
		policy = chunk.FixedSize(c.ChunkSize, c.ChunkOverlap)
	case chunk.KindDocumentStructure.String():
		policy = chunk.DocumentStructure(c.ChunkSize, c.ChunkOverlap)
	case chunk.KindSemantic.String():
		policy = chunk.Semantic(c.SemanticChunkSize, c.SimilarityThreshold)
	default:
		return chunk.Policy{}, fmt.Errorf("%w: unknown strategy %q", chunk.ErrInvalidPolicy, c.ChunkStrategy)
	}

	if err := policy.Validate(); err != nil {
		return chunk.Policy{}, err
	}
	return policy, nil
}

// Validate checks the configuration, including the chunking policy and
// AI settings.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("config: GRANARY_DB_PATH cannot be empty")
	}
	if c.MaxRetryAttempts < 1 {
		return fmt.Errorf("config: GRANARY_MAX_RETRY_ATTEMPTS must be at least 1, got %d", c.MaxRetryAttempts)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	return c.AIConfig().Validate()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
