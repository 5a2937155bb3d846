package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/kestrelworks/granary/core"
	"github.com/kestrelworks/granary/storage"
)

// WatchStateRepository implements storage.WatchStateRepository for BadgerDB.
type WatchStateRepository struct {
	backend *Backend
}

var _ storage.WatchStateRepository = (*WatchStateRepository)(nil)

// NewWatchStateRepository creates a new WatchStateRepository on the given backend.
//
// Returns storage.WatchStateRepository interface to enforce abstraction.
// The backend's lifetime is managed by the caller.
func NewWatchStateRepository(backend *Backend) (storage.WatchStateRepository, error) {
	return newWatchStateRepository(backend), nil
}

// newWatchStateRepository is an internal constructor that returns the concrete type.
func newWatchStateRepository(backend *Backend) *WatchStateRepository {
	return &WatchStateRepository{backend: backend}
}

// Get retrieves the watch entry for a path.
func (r *WatchStateRepository) Get(ctx context.Context, path string) (*core.WatchEntry, error) {
	var entry *core.WatchEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeWatchStateKey(path))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			entry, err = storage.UnmarshalWatchEntry(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Put records that a path was ingested with the given entry.
func (r *WatchStateRepository) Put(ctx context.Context, path string, entry *core.WatchEntry) error {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		data := storage.MarshalWatchEntry(entry)
		if err := tx.Set(makeWatchStateKey(path), data); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrWriteFailed, err)
	}
	return nil
}

// Close is a no-op; the shared backend is closed by its owner.
func (r *WatchStateRepository) Close() error {
	return nil
}
