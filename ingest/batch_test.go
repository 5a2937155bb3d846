package ingest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchUploader(t *testing.T) {
	ctx := context.Background()

	writeFile := func(t *testing.T, dir, name, content string) {
		t.Helper()
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	t.Run("uploads supported files recursively", func(t *testing.T) {
		pipeline, store, _ := newTestPipeline(t)

		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
		writeFile(t, dir, "one.txt", "first document")
		writeFile(t, dir, "two.md", "second document")
		writeFile(t, filepath.Join(dir, "nested"), "three.txt", "third document")
		writeFile(t, dir, "ignored.bin", "not a supported format")

		uploader := NewBatchUploader(pipeline, nil)
		summary, err := uploader.UploadDir(ctx, dir)
		require.NoError(t, err)

		assert.Equal(t, 3, summary.Scanned)
		assert.Equal(t, 3, summary.Ingested)
		assert.Zero(t, summary.Skipped)
		assert.Zero(t, summary.Failed)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("duplicate content counts as skipped", func(t *testing.T) {
		pipeline, _, _ := newTestPipeline(t)

		dir := t.TempDir()
		writeFile(t, dir, "a.txt", "identical body")
		writeFile(t, dir, "b.txt", "identical body")

		uploader := NewBatchUploader(pipeline, nil)
		summary, err := uploader.UploadDir(ctx, dir)
		require.NoError(t, err)

		assert.Equal(t, 2, summary.Scanned)
		assert.Equal(t, 1, summary.Ingested)
		assert.Equal(t, 1, summary.Skipped)
	})

	t.Run("reports progress", func(t *testing.T) {
		pipeline, _, _ := newTestPipeline(t)

		dir := t.TempDir()
		writeFile(t, dir, "a.txt", "progress body")

		var buf bytes.Buffer
		uploader := NewBatchUploader(pipeline, &buf)
		_, err := uploader.UploadDir(ctx, dir)
		require.NoError(t, err)

		assert.Contains(t, buf.String(), "1/1")
	})

	t.Run("empty directory", func(t *testing.T) {
		pipeline, _, _ := newTestPipeline(t)

		uploader := NewBatchUploader(pipeline, nil)
		summary, err := uploader.UploadDir(ctx, t.TempDir())
		require.NoError(t, err)
		assert.Zero(t, summary.Scanned)
	})
}
