package ingest

import (
	"context"
	"io"
	"io/fs"
	"path/filepath"
)

// BatchSummary reports the outcome of a batch upload.
type BatchSummary struct {
	Scanned  int // supported files found
	Ingested int // files that produced new records
	Skipped  int // files whose content was already present
	Failed   int // files that errored
}

// BatchUploader ingests every supported file under a directory tree.
type BatchUploader struct {
	pipeline       *Pipeline
	progressWriter io.Writer
	reportInterval int
}

// NewBatchUploader creates a batch uploader on the given pipeline.
// progressWriter: where to write progress output, or nil to disable
func NewBatchUploader(pipeline *Pipeline, progressWriter io.Writer) *BatchUploader {
	return &BatchUploader{
		pipeline:       pipeline,
		progressWriter: progressWriter,
		reportInterval: 1,
	}
}

// UploadDir walks root recursively and ingests each supported file.
// Unsupported files are ignored. A file that fails to ingest is counted
// and logged but does not stop the batch.
func (b *BatchUploader) UploadDir(ctx context.Context, root string) (*BatchSummary, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if b.pipeline.Supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := &BatchSummary{Scanned: len(paths)}

	var tracker *ProgressTracker
	if b.progressWriter != nil {
		tracker = NewProgressTracker(b.progressWriter, len(paths), b.reportInterval)
		tracker.Start()
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result, err := b.pipeline.IngestFile(ctx, path)
		switch {
		case err != nil:
			summary.Failed++
			b.pipeline.logger.Error("batch ingestion failed", "path", path, "err", err)
		case result.Accepted:
			summary.Ingested++
		default:
			summary.Skipped++
		}

		if tracker != nil {
			tracker.Increment(1)
		}
	}

	if tracker != nil {
		tracker.Finish()
	}

	return summary, nil
}
