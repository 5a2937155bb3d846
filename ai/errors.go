package ai

import "errors"

var (
	// ErrEmbedderUnavailable indicates the embedding service could not be
	// reached or rejected the request for a non-transient reason.
	ErrEmbedderUnavailable = errors.New("embedder unavailable")

	// ErrEmbedderRateLimited indicates the embedding service throttled the
	// request. Retryable after backoff.
	ErrEmbedderRateLimited = errors.New("embedder rate limited")

	// ErrCompleterUnavailable indicates the completion service could not
	// be reached.
	ErrCompleterUnavailable = errors.New("completer unavailable")
)
