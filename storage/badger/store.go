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


package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/kestrelworks/granary/core"
	"github.com/kestrelworks/granary/storage"
)

// VectorStore implements storage.VectorStore for BadgerDB.
type VectorStore struct {
	backend *Backend
}

var _ storage.VectorStore = (*VectorStore)(nil)

// NewVectorStore creates a new VectorStore on the given backend.
//
// Returns storage.VectorStore interface to enforce abstraction.
// The backend's lifetime is managed by the caller.
func NewVectorStore(backend *Backend) (storage.VectorStore, error) {
	return newVectorStore(backend), nil
}

// newVectorStore is an internal constructor that returns the concrete type.
func newVectorStore(backend *Backend) *VectorStore {
	return &VectorStore{backend: backend}
}

// Commit atomically persists the records of one source together with its
// content-hash marker. All writes happen in a single BadgerDB transaction,
// so either every record and the hash marker land, or none do.
func (s *VectorStore) Commit(ctx context.Context, contentHash string, records []*core.StoreRecord) error {
	if contentHash == "" {
		return fmt.Errorf("%w: empty content hash", storage.ErrInvalidQuery)
	}

	now := time.Now().Truncate(time.Microsecond).UTC()

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if record.InsertedAt.IsZero() {
				record.InsertedAt = now
			}

			data := storage.MarshalStoreRecord(record)
			if err := tx.Set(makeUnitRecordKey(record.UnitID), data); err != nil {
				return err
			}
		}

		// Hash marker lands in the same transaction as the records, so
		// Exists never observes a half-written source.
		if err := tx.Set(makeHashIndexKey(contentHash), []byte{1}); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrWriteFailed, err)
	}
	return nil
}

// Exists reports whether content with the given hash has been committed.
func (s *VectorStore) Exists(ctx context.Context, contentHash string) (bool, error) {
	var found bool
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeHashIndexKey(contentHash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	}, false)
	return found, err
}

// Get retrieves a single record by unit ID.
func (s *VectorStore) Get(ctx context.Context, unitID string) (*core.StoreRecord, error) {
	var record *core.StoreRecord
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeUnitRecordKey(unitID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			record, err = storage.UnmarshalStoreRecord(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// FindSimilar delegates to the backend.
func (s *VectorStore) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return s.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// Count returns the number of stored unit records.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(unitRecordPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Close is a no-op; the shared backend is closed by its owner.
func (s *VectorStore) Close() error {
	return nil
}
