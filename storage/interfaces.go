package storage

import (
	"context"

	"github.com/kestrelworks/granary/core"
)

// VectorStore persists embedded unit records and answers similarity queries.
// Implementations must be thread-safe and support concurrent access.
type VectorStore interface {
	// Commit atomically persists the records of one source together with
	// its content-hash marker. After Commit returns nil, Exists reports
	// true for contentHash. A failed Commit leaves no partial data.
	// Committing an empty record slice still marks the hash as ingested.
	Commit(ctx context.Context, contentHash string, records []*core.StoreRecord) error

	// Exists reports whether content with the given hash has been
	// committed before.
	Exists(ctx context.Context, contentHash string) (bool, error)

	// Get retrieves a single record by unit ID.
	// Returns ErrNotFound if the record doesn't exist.
	Get(ctx context.Context, unitID string) (*core.StoreRecord, error)

	// FindSimilar finds records similar to the given vector.
	// Returns records with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

// WatchStateRepository tracks which files the folder watcher has ingested,
// keyed by absolute path. Implementations must be thread-safe.
type WatchStateRepository interface {
	// Get retrieves the watch entry for a path.
	// Returns ErrNotFound if the path has never been ingested.
	Get(ctx context.Context, path string) (*core.WatchEntry, error)

	// Put records that a path was ingested with the given entry.
	Put(ctx context.Context, path string, entry *core.WatchEntry) error

	// Close closes the storage backend and releases resources.
	Close() error
}
