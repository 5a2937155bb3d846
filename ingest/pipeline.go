package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/kestrelworks/granary/ai"
	"github.com/kestrelworks/granary/chunk"
	"github.com/kestrelworks/granary/core"
	"github.com/kestrelworks/granary/reader"
	"github.com/kestrelworks/granary/storage"
)

// Retry defaults for rate-limited embedding calls.
const (
	DefaultMaxAttempts = 4
	DefaultBaseDelay   = 500 * time.Millisecond
)

// Result reports the outcome of ingesting one document.
type Result struct {
	// Accepted is false when the document's content hash was already
	// present and ingestion was skipped.
	Accepted bool

	// Units is the number of unit records written. Zero for skipped
	// documents and for accepted documents with no chunkable content.
	Units int
}

// Pipeline orchestrates the ingestion of documents: duplicate detection,
// chunking, embedding, and atomic storage commit.
type Pipeline struct {
	store    storage.VectorStore
	embedder ai.Embedder
	readers  *reader.Registry
	policy   chunk.Policy
	pool     *ants.Pool
	locks    *hashLocks

	maxAttempts int
	baseDelay   time.Duration

	wg     sync.WaitGroup
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for asynchronous ingestion.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithPolicy sets the chunking policy applied to every document.
// Default is the semantic policy with default parameters.
func WithPolicy(policy chunk.Policy) Option {
	return func(p *Pipeline) error {
		if err := policy.Validate(); err != nil {
			return err
		}
		p.policy = policy
		return nil
	}
}

// WithReaders sets the file reader registry used by IngestFile.
// Default is reader.NewRegistry().
func WithReaders(readers *reader.Registry) Option {
	return func(p *Pipeline) error {
		if readers != nil {
			p.readers = readers
		}
		return nil
	}
}

// WithRetry configures retry behavior for rate-limited embedding calls.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(store storage.VectorStore, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:       store,
		embedder:    embedder,
		readers:     reader.NewRegistry(),
		policy:      chunk.Semantic(chunk.DefaultSemanticTargetSize, chunk.DefaultSimilarityThreshold),
		pool:        pool,
		locks:       newHashLocks(),
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest runs one document through the full pipeline synchronously.
//
// Re-ingesting content with a hash that was committed before is skipped
// and reported with Accepted=false. Concurrent ingestions of the same
// content serialize on the hash, so exactly one performs the work. A
// failure at any stage leaves no trace in the store; the same content
// can be retried later.
func (p *Pipeline) Ingest(ctx context.Context, doc core.Document) (Result, error) {
	if err := core.ValidateDocument(&doc); err != nil {
		return Result{}, err
	}

	release := p.locks.acquire(doc.ContentHash)
	defer release()

	exists, err := p.store.Exists(ctx, doc.ContentHash)
	if err != nil {
		return Result{}, err
	}
	if exists {
		p.logger.Debug("skipping duplicate content", "source", doc.SourceID, "hash", doc.ContentHash)
		return Result{Accepted: false}, nil
	}

	units, err := chunk.Split(doc, p.policy)
	if err != nil {
		return Result{}, err
	}

	// Empty or whitespace-only content yields no units; the hash is
	// still marked so the same empty content isn't reprocessed.
	if len(units) == 0 {
		if err := p.store.Commit(ctx, doc.ContentHash, nil); err != nil {
			return Result{}, err
		}
		p.logger.Info("ingested empty document", "source", doc.SourceID)
		return Result{Accepted: true}, nil
	}

	texts := make([]string, len(units))
	for i, unit := range units {
		texts[i] = unit.Text
	}

	var vectors [][]float32
	err = RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = p.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, func(err error) bool {
		return errors.Is(err, ai.ErrEmbedderRateLimited)
	}, p.maxAttempts, p.baseDelay)
	if err != nil {
		return Result{}, err
	}

	if len(vectors) != len(units) {
		return Result{}, fmt.Errorf("%w: %d texts, %d vectors", ErrEmbeddingCountMismatch, len(units), len(vectors))
	}

	records := make([]*core.StoreRecord, len(units))
	for i, unit := range units {
		metadata := map[string]string{"origin": doc.Origin.String()}
		if doc.Path != "" {
			metadata["path"] = doc.Path
		}
		records[i] = &core.StoreRecord{
			UnitID:        unit.UnitID,
			SourceID:      unit.SourceID,
			ContentHash:   doc.ContentHash,
			SequenceIndex: unit.SequenceIndex,
			Text:          unit.Text,
			Vector:        vectors[i],
			Metadata:      metadata,
		}
	}

	if err := p.store.Commit(ctx, doc.ContentHash, records); err != nil {
		return Result{}, err
	}

	p.logger.Info("ingested document", "source", doc.SourceID, "units", len(records))
	return Result{Accepted: true, Units: len(records)}, nil
}

// IngestText ingests raw text content.
func (p *Pipeline) IngestText(ctx context.Context, text string) (Result, error) {
	return p.Ingest(ctx, core.NewTextDocument(text))
}

// IngestFile extracts the content of the file at path and ingests it.
// The reader registry decides which formats are supported.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (Result, error) {
	content, err := p.readers.Read(ctx, path)
	if err != nil {
		return Result{}, err
	}
	return p.Ingest(ctx, core.NewFileDocument(path, content.Text, content.Boundaries))
}

// Supported reports whether IngestFile can handle the file at path.
func (p *Pipeline) Supported(path string) bool {
	return p.readers.Supported(path)
}

// IngestAsync submits a document for ingestion on the worker pool.
// Errors during processing are logged but not returned; done, when
// non-nil, receives the outcome.
func (p *Pipeline) IngestAsync(doc core.Document, done func(Result, error)) error {
	p.wg.Add(1)
	err := p.pool.Submit(func() {
		defer p.wg.Done()

		result, err := p.Ingest(context.Background(), doc)
		if err != nil {
			p.logger.Error("async ingestion failed", "source", doc.SourceID, "err", err)
		}
		if done != nil {
			done(result, err)
		}
	})
	if err != nil {
		p.wg.Done()
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrPipelineReleased
		}
		return err
	}
	return nil
}

// Drain blocks until all submitted asynchronous ingestions finish.
func (p *Pipeline) Drain() {
	p.wg.Wait()
}

// Release drains pending work and releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	p.wg.Wait()
	if p.pool != nil {
		p.pool.Release()
	}
}
