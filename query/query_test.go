package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelworks/granary/ai/mock"
	"github.com/kestrelworks/granary/core"
	"github.com/kestrelworks/granary/storage"
	"github.com/kestrelworks/granary/storage/badger"
)

func seedStore(t *testing.T, store storage.VectorStore, text string, vector []float32) {
	t.Helper()
	hash := core.HashContent(text)
	record := &core.StoreRecord{
		UnitID:      core.UnitID(hash, 0),
		SourceID:    "text:" + hash[:12],
		ContentHash: hash,
		Text:        text,
		Vector:      vector,
	}
	require.NoError(t, store.Commit(context.Background(), hash, []*core.StoreRecord{record}))
}

func TestSearcher(t *testing.T) {
	ctx := context.Background()

	t.Run("requires dependencies", func(t *testing.T) {
		_, err := NewSearcher(nil, mock.NewMockEmbedder())
		assert.ErrorIs(t, err, ErrStoreRequired)

		store, _, backend, err := badger.NewMemoryStores()
		require.NoError(t, err)
		defer backend.Close()

		_, err = NewSearcher(store, nil)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("rejects empty query", func(t *testing.T) {
		store, _, backend, err := badger.NewMemoryStores()
		require.NoError(t, err)
		defer backend.Close()

		searcher, err := NewSearcher(store, mock.NewMockEmbedder())
		require.NoError(t, err)

		_, err = searcher.FindSimilar(ctx, "   ", 5)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})

	t.Run("ranks matches above threshold", func(t *testing.T) {
		store, _, backend, err := badger.NewMemoryStores()
		require.NoError(t, err)
		defer backend.Close()

		seedStore(t, store, "aligned unit", []float32{1, 0})
		seedStore(t, store, "diagonal unit", []float32{0.7071, 0.7071})
		seedStore(t, store, "orthogonal unit", []float32{0, 1})

		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0}, nil
		}

		searcher, err := NewSearcher(store, embedder, WithThreshold(0.5))
		require.NoError(t, err)

		results, err := searcher.FindSimilar(ctx, "find the aligned unit", 10)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "aligned unit", results[0].Record.Text)
		assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	})
}

func TestAnswerer(t *testing.T) {
	ctx := context.Background()

	newFixture := func(t *testing.T) (storage.VectorStore, *Searcher, *mock.MockEmbedder) {
		t.Helper()
		store, _, backend, err := badger.NewMemoryStores()
		require.NoError(t, err)
		t.Cleanup(func() { backend.Close() })

		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0}, nil
		}

		searcher, err := NewSearcher(store, embedder)
		require.NoError(t, err)
		return store, searcher, embedder
	}

	t.Run("requires completer", func(t *testing.T) {
		_, searcher, _ := newFixture(t)
		_, err := NewAnswerer(searcher, nil)
		assert.ErrorIs(t, err, ErrCompleterRequired)
	})

	t.Run("answers from retrieved context", func(t *testing.T) {
		store, searcher, _ := newFixture(t)
		seedStore(t, store, "Jane has 5 years of Python experience.", []float32{1, 0})

		completer := mock.NewMockCompleter()
		var seenPrompt string
		completer.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
			seenPrompt = prompt
			return "Jane has 5 years.", nil
		}

		answerer, err := NewAnswerer(searcher, completer)
		require.NoError(t, err)

		answer, err := answerer.Answer(ctx, "How much Python experience does Jane have?")
		require.NoError(t, err)
		assert.Equal(t, "Jane has 5 years.", answer.Text)
		require.Len(t, answer.Sources, 1)

		// Prompt carries the retrieved unit and the question
		assert.Contains(t, seenPrompt, "Jane has 5 years of Python experience.")
		assert.Contains(t, seenPrompt, "How much Python experience does Jane have?")
	})

	t.Run("empty store short-circuits the model", func(t *testing.T) {
		_, searcher, _ := newFixture(t)

		completer := mock.NewMockCompleter()
		answerer, err := NewAnswerer(searcher, completer)
		require.NoError(t, err)

		answer, err := answerer.Answer(ctx, "Anything at all?")
		require.NoError(t, err)
		assert.Contains(t, answer.Text, "don't have")
		assert.Empty(t, answer.Sources)
		assert.Zero(t, completer.CallCount())
	})

	t.Run("respects max context", func(t *testing.T) {
		store, searcher, _ := newFixture(t)
		for _, text := range []string{"unit one", "unit two", "unit three"} {
			seedStore(t, store, text, []float32{1, 0})
		}

		completer := mock.NewMockCompleter()
		answerer, err := NewAnswerer(searcher, completer, WithMaxContext(2))
		require.NoError(t, err)

		answer, err := answerer.Answer(ctx, "which units exist?")
		require.NoError(t, err)
		assert.Len(t, answer.Sources, 2)
	})
}
