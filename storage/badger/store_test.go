package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/kestrelworks/granary/core"
	"github.com/kestrelworks/granary/storage"
)

func TestVectorStoreCommitAndGet(t *testing.T) {
	store, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	hash := core.HashContent("some document text")
	records := []*core.StoreRecord{
		{
			UnitID:        core.UnitID(hash, 0),
			SourceID:      "text:" + hash[:12],
			ContentHash:   hash,
			SequenceIndex: 0,
			Text:          "some document",
			Vector:        []float32{0.6, 0.8},
		},
		{
			UnitID:        core.UnitID(hash, 1),
			SourceID:      "text:" + hash[:12],
			ContentHash:   hash,
			SequenceIndex: 1,
			Text:          "text",
			Vector:        []float32{1, 0},
		},
	}

	if err := store.Commit(ctx, hash, records); err != nil {
		t.Fatalf("Failed to commit records: %v", err)
	}

	// InsertedAt is stamped during commit
	if records[0].InsertedAt.IsZero() {
		t.Fatal("Expected InsertedAt to be set")
	}

	retrieved, err := store.Get(ctx, records[0].UnitID)
	if err != nil {
		t.Fatalf("Failed to get record: %v", err)
	}
	if retrieved.Text != "some document" {
		t.Fatalf("Expected 'some document', got '%s'", retrieved.Text)
	}
	if retrieved.SequenceIndex != 0 {
		t.Fatalf("Expected sequence index 0, got %d", retrieved.SequenceIndex)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count records: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected 2 records, got %d", count)
	}
}

func TestVectorStoreExists(t *testing.T) {
	store, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	hash := core.HashContent("observed content")

	found, err := store.Exists(ctx, hash)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if found {
		t.Fatal("Expected hash to be absent before commit")
	}

	if err := store.Commit(ctx, hash, nil); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}

	found, err = store.Exists(ctx, hash)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !found {
		t.Fatal("Expected hash to be present after commit")
	}
}

func TestVectorStoreCommitEmptyHash(t *testing.T) {
	store, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	err = store.Commit(context.Background(), "", nil)
	if !errors.Is(err, storage.ErrInvalidQuery) {
		t.Fatalf("Expected ErrInvalidQuery, got %v", err)
	}
}

func TestVectorStoreGetMissing(t *testing.T) {
	store, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	_, err = store.Get(context.Background(), "nonexistent-0")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestVectorStoreFindSimilar(t *testing.T) {
	store, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	// Unit vectors at known angles to the query
	commit := func(text string, vector []float32) {
		t.Helper()
		hash := core.HashContent(text)
		rec := &core.StoreRecord{
			UnitID:      core.UnitID(hash, 0),
			SourceID:    "text:" + hash[:12],
			ContentHash: hash,
			Text:        text,
			Vector:      vector,
		}
		if err := store.Commit(ctx, hash, []*core.StoreRecord{rec}); err != nil {
			t.Fatalf("Failed to commit: %v", err)
		}
	}

	commit("aligned", []float32{1, 0})
	commit("diagonal", []float32{0.7071, 0.7071})
	commit("orthogonal", []float32{0, 1})

	results, err := store.FindSimilar(ctx, []float32{1, 0}, 0.5, 10)
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 results above threshold, got %d", len(results))
	}
	if results[0].Record.Text != "aligned" {
		t.Fatalf("Expected 'aligned' first, got '%s'", results[0].Record.Text)
	}
	if results[0].Score < results[1].Score {
		t.Fatal("Expected results sorted by score descending")
	}

	// Limit is respected
	results, err = store.FindSimilar(ctx, []float32{1, 0}, -1, 1)
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result with limit 1, got %d", len(results))
	}
}

func TestVectorStoreCommitIdempotentRewrite(t *testing.T) {
	store, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	hash := core.HashContent("same content twice")
	rec := &core.StoreRecord{
		UnitID:      core.UnitID(hash, 0),
		ContentHash: hash,
		Text:        "same content twice",
		Vector:      []float32{1},
	}

	if err := store.Commit(ctx, hash, []*core.StoreRecord{rec}); err != nil {
		t.Fatalf("First commit failed: %v", err)
	}
	if err := store.Commit(ctx, hash, []*core.StoreRecord{rec}); err != nil {
		t.Fatalf("Second commit failed: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 record after duplicate commit, got %d", count)
	}
}
