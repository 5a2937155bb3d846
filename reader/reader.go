// Copyright 2025 Kestrel Works
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Content is the extracted text of a file.
type Content struct {
	// Text is the full plain-text content.
	Text string

	// Boundaries holds rune offsets where structural sections begin
	// (for example PDF page starts). Empty for unstructured formats.
	Boundaries []int
}

// Reader extracts text content from a file on disk.
type Reader interface {
	// Read extracts the content of the file at path.
	Read(ctx context.Context, path string) (*Content, error)
}

// Registry maps file extensions to readers.
type Registry struct {
	readers map[string]Reader
}

// NewRegistry creates a registry with the built-in readers registered:
// plain text for .txt and .md, PDF for .pdf.
func NewRegistry() *Registry {
	r := &Registry{readers: make(map[string]Reader)}
	text := NewTextReader()
	r.Register(".txt", text)
	r.Register(".md", text)
	r.Register(".pdf", NewPDFReader())
	return r
}

// Register associates a reader with a file extension. The extension must
// include the leading dot and is matched case-insensitively. Registering
// an extension twice replaces the earlier reader.
func (r *Registry) Register(ext string, reader Reader) {
	r.readers[strings.ToLower(ext)] = reader
}

// Supported reports whether a reader is registered for the file's extension.
func (r *Registry) Supported(path string) bool {
	_, ok := r.readers[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Read extracts the content of the file at path using the reader
// registered for its extension. Returns ErrUnsupportedFileType when no
// reader matches.
func (r *Registry) Read(ctx context.Context, path string) (*Content, error) {
	ext := strings.ToLower(filepath.Ext(path))
	reader, ok := r.readers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}
	return reader.Read(ctx, path)
}
