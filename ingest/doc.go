// Package ingest provides pipeline orchestration for turning documents
// into stored, embedded units.
//
// The Pipeline type manages the ingestion workflow for a document:
//   - Duplicate detection by content hash (idempotent re-ingestion)
//   - Chunking into units under the configured policy
//   - Generating embeddings, with retry on rate limiting
//   - Atomically committing units and the content-hash marker
//
// Synchronous ingestion returns a Result; asynchronous ingestion runs on
// a worker pool and reports failures through the logger. Concurrent
// ingestions of the same content are serialized per content hash, so a
// document is embedded and stored at most once.
package ingest
