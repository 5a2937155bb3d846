package watch

import "errors"

var (
	// ErrPipelineRequired is returned when a pipeline is not provided.
	ErrPipelineRequired = errors.New("pipeline required")

	// ErrStateRepositoryRequired is returned when a watch state repository is not provided.
	ErrStateRepositoryRequired = errors.New("watch state repository required")

	// ErrNotDirectory is returned when the watch target is not a directory.
	ErrNotDirectory = errors.New("watch target is not a directory")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("watcher already started")
)
