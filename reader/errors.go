package reader

import "errors"

var (
	// ErrUnsupportedFileType indicates no reader is registered for the
	// file's extension.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrUnreadableFile indicates the file exists but its content could
	// not be extracted.
	ErrUnreadableFile = errors.New("unreadable file")
)
