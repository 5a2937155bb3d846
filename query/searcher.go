package query

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kestrelworks/granary/ai"
	"github.com/kestrelworks/granary/core"
	"github.com/kestrelworks/granary/storage"
)

// DefaultThreshold is the minimum similarity a unit must reach to count
// as a match.
const DefaultThreshold float32 = 0.5

// Searcher ranks stored units by vector similarity to a query.
type Searcher struct {
	store     storage.VectorStore
	embedder  ai.Embedder
	threshold float32
	logger    *slog.Logger
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher) error

// WithThreshold sets the minimum similarity score for matches.
// Default is DefaultThreshold.
func WithThreshold(threshold float32) SearcherOption {
	return func(s *Searcher) error {
		s.threshold = threshold
		return nil
	}
}

// WithSearcherLogger sets a custom logger.
// Default is slog.Default().
func WithSearcherLogger(logger *slog.Logger) SearcherOption {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(store storage.VectorStore, embedder ai.Embedder, opts ...SearcherOption) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		store:     store,
		embedder:  embedder,
		threshold: DefaultThreshold,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar searches for units similar to the query.
// Returns up to maxHits results, ranked by similarity score.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]*core.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}

	matches, err := s.store.FindSimilar(ctx, embedding, s.threshold, maxHits)
	if err != nil {
		s.logger.Error("error querying for similar units", "err", err)
		return nil, err
	}

	s.logger.Debug("search complete", "hits", len(matches))
	return matches, nil
}
