package reader

import (
	"context"
	"fmt"
	"os"
)

// TextReader reads plain-text files verbatim.
type TextReader struct{}

// assert interface compliance
var _ Reader = (*TextReader)(nil)

// NewTextReader creates a reader for plain-text files.
func NewTextReader() *TextReader {
	return &TextReader{}
}

// Read returns the file's content as-is, with no structural boundaries.
func (t *TextReader) Read(_ context.Context, path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	return &Content{Text: string(data)}, nil
}
