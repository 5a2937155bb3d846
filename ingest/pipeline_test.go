package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelworks/granary/ai"
	"github.com/kestrelworks/granary/ai/mock"
	"github.com/kestrelworks/granary/chunk"
	"github.com/kestrelworks/granary/core"
	"github.com/kestrelworks/granary/reader"
	"github.com/kestrelworks/granary/storage"
	"github.com/kestrelworks/granary/storage/badger"
)

func newTestPipeline(t *testing.T, opts ...Option) (*Pipeline, storage.VectorStore, *mock.MockEmbedder) {
	t.Helper()

	store, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	embedder := mock.NewMockEmbedder()
	pipeline, err := NewPipeline(store, embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return pipeline, store, embedder
}

func TestNewPipeline(t *testing.T) {
	t.Run("requires store", func(t *testing.T) {
		_, err := NewPipeline(nil, mock.NewMockEmbedder())
		assert.ErrorIs(t, err, ErrStoreRequired)
	})

	t.Run("requires embedder", func(t *testing.T) {
		store, _, backend, err := badger.NewMemoryStores()
		require.NoError(t, err)
		defer backend.Close()

		_, err = NewPipeline(store, nil)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("rejects invalid policy", func(t *testing.T) {
		store, _, backend, err := badger.NewMemoryStores()
		require.NoError(t, err)
		defer backend.Close()

		_, err = NewPipeline(store, mock.NewMockEmbedder(), WithPolicy(chunkPolicyInvalid()))
		assert.Error(t, err)
	})

	t.Run("rejects invalid retry config", func(t *testing.T) {
		store, _, backend, err := badger.NewMemoryStores()
		require.NoError(t, err)
		defer backend.Close()

		_, err = NewPipeline(store, mock.NewMockEmbedder(), WithRetry(0, time.Millisecond))
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	})
}

func TestIngestText(t *testing.T) {
	ctx := context.Background()

	t.Run("stores units with vectors and metadata", func(t *testing.T) {
		pipeline, store, _ := newTestPipeline(t)

		result, err := pipeline.IngestText(ctx, "Jane Doe has 5 years of Python experience.")
		require.NoError(t, err)
		assert.True(t, result.Accepted)
		assert.Equal(t, 1, result.Units)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		hash := core.HashContent("Jane Doe has 5 years of Python experience.")
		record, err := store.Get(ctx, core.UnitID(hash, 0))
		require.NoError(t, err)
		assert.Equal(t, hash, record.ContentHash)
		assert.NotEmpty(t, record.Vector)
		assert.Equal(t, "text", record.Metadata["origin"])
		assert.False(t, record.InsertedAt.IsZero())
	})

	t.Run("repeat ingestion is skipped", func(t *testing.T) {
		pipeline, store, embedder := newTestPipeline(t)

		first, err := pipeline.IngestText(ctx, "repeatable content")
		require.NoError(t, err)
		assert.True(t, first.Accepted)

		second, err := pipeline.IngestText(ctx, "repeatable content")
		require.NoError(t, err)
		assert.False(t, second.Accepted)
		assert.Zero(t, second.Units)

		// The store was not touched and the embedder was not called again
		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, 1, embedder.CallCount())
	})

	t.Run("empty content is accepted once", func(t *testing.T) {
		pipeline, store, embedder := newTestPipeline(t)

		first, err := pipeline.IngestText(ctx, "   \n\t  ")
		require.NoError(t, err)
		assert.True(t, first.Accepted)
		assert.Zero(t, first.Units)

		second, err := pipeline.IngestText(ctx, "   \n\t  ")
		require.NoError(t, err)
		assert.False(t, second.Accepted)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Zero(t, embedder.CallCount())
	})

	t.Run("embedder failure leaves no trace", func(t *testing.T) {
		pipeline, store, embedder := newTestPipeline(t)
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, ai.ErrEmbedderUnavailable
		}

		_, err := pipeline.IngestText(ctx, "content that will fail")
		assert.ErrorIs(t, err, ai.ErrEmbedderUnavailable)

		hash := core.HashContent("content that will fail")
		exists, err := store.Exists(ctx, hash)
		require.NoError(t, err)
		assert.False(t, exists, "failed ingestion must not mark the hash")

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)

		// Retry after clearing the failure succeeds
		embedder.EmbedTextsFunc = nil
		result, err := pipeline.IngestText(ctx, "content that will fail")
		require.NoError(t, err)
		assert.True(t, result.Accepted)
	})

	t.Run("embedding count mismatch", func(t *testing.T) {
		pipeline, _, embedder := newTestPipeline(t)
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{}, nil
		}

		_, err := pipeline.IngestText(ctx, "mismatched vectors")
		assert.ErrorIs(t, err, ErrEmbeddingCountMismatch)
	})

	t.Run("retries rate limited embedder", func(t *testing.T) {
		pipeline, _, embedder := newTestPipeline(t, WithRetry(3, time.Millisecond))

		attempts := 0
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			attempts++
			if attempts < 3 {
				return nil, fmt.Errorf("%w: 429", ai.ErrEmbedderRateLimited)
			}
			vectors := make([][]float32, len(texts))
			for i := range vectors {
				vectors[i] = []float32{1}
			}
			return vectors, nil
		}

		result, err := pipeline.IngestText(ctx, "rate limited content")
		require.NoError(t, err)
		assert.True(t, result.Accepted)
		assert.Equal(t, 3, attempts)
	})

	t.Run("does not retry unavailable embedder", func(t *testing.T) {
		pipeline, _, embedder := newTestPipeline(t, WithRetry(3, time.Millisecond))

		attempts := 0
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			attempts++
			return nil, ai.ErrEmbedderUnavailable
		}

		_, err := pipeline.IngestText(ctx, "hard failure")
		assert.ErrorIs(t, err, ai.ErrEmbedderUnavailable)
		assert.Equal(t, 1, attempts)
	})
}

func TestIngestConcurrent(t *testing.T) {
	pipeline, store, _ := newTestPipeline(t)
	ctx := context.Background()

	const workers = 8
	results := make([]Result, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = pipeline.IngestText(ctx, "contested content")
		}(i)
	}
	wg.Wait()

	accepted := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if results[i].Accepted {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted, "exactly one ingestion should win")

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIngestFile(t *testing.T) {
	ctx := context.Background()

	t.Run("ingests text file", func(t *testing.T) {
		pipeline, _, _ := newTestPipeline(t)

		path := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("File content for ingestion."), 0o644))

		result, err := pipeline.IngestFile(ctx, path)
		require.NoError(t, err)
		assert.True(t, result.Accepted)
		assert.Equal(t, 1, result.Units)
	})

	t.Run("records file path metadata", func(t *testing.T) {
		pipeline, store, _ := newTestPipeline(t)

		path := filepath.Join(t.TempDir(), "meta.txt")
		require.NoError(t, os.WriteFile(path, []byte("Metadata check."), 0o644))

		_, err := pipeline.IngestFile(ctx, path)
		require.NoError(t, err)

		hash := core.HashContent("Metadata check.")
		record, err := store.Get(ctx, core.UnitID(hash, 0))
		require.NoError(t, err)
		assert.Equal(t, "file", record.Metadata["origin"])
		assert.Equal(t, path, record.Metadata["path"])
	})

	t.Run("unsupported extension", func(t *testing.T) {
		pipeline, _, _ := newTestPipeline(t)

		_, err := pipeline.IngestFile(ctx, "image.png")
		assert.ErrorIs(t, err, reader.ErrUnsupportedFileType)
	})
}

func TestIngestAsync(t *testing.T) {
	pipeline, store, _ := newTestPipeline(t)
	ctx := context.Background()

	var mu sync.Mutex
	var outcomes []Result

	for i := 0; i < 5; i++ {
		doc := core.NewTextDocument(fmt.Sprintf("async document %d", i))
		err := pipeline.IngestAsync(doc, func(result Result, err error) {
			mu.Lock()
			defer mu.Unlock()
			require.NoError(t, err)
			outcomes = append(outcomes, result)
		})
		require.NoError(t, err)
	}

	pipeline.Drain()

	assert.Len(t, outcomes, 5)
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestIngestInvalidDocument(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t)

	_, err := pipeline.Ingest(context.Background(), core.Document{})
	assert.ErrorIs(t, err, core.ErrInvalidDocument)
}

// chunkPolicyInvalid returns a policy that fails validation.
func chunkPolicyInvalid() chunk.Policy {
	return chunk.Policy{Kind: chunk.KindFixedSize, Size: 0}
}
