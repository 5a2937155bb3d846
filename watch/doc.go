// Package watch ingests files dropped into a monitored folder.
//
// A Watcher listens for filesystem events on one directory and feeds new
// or modified files to an ingest.Pipeline. Rapid event bursts for the
// same file collapse into a single ingestion: an event arms a debounce
// deadline, and the file is only processed once its size and mtime have
// stopped changing.
//
// Per-path ingestion state is persisted through storage.WatchStateRepository,
// so a restart does not re-ingest files whose bytes are unchanged. A file
// that fails to ingest is left unmarked and is retried on its next event.
package watch
