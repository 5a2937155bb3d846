package reader

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// PDFReader extracts plain text from PDF files, recording the rune offset
// of each page start as a structural boundary.
type PDFReader struct{}

// assert interface compliance
var _ Reader = (*PDFReader)(nil)

// NewPDFReader creates a reader for PDF files.
func NewPDFReader() *PDFReader {
	return &PDFReader{}
}

// Read extracts the text of every page. Pages are separated by a newline
// and each page's starting rune offset is reported in Boundaries.
func (p *PDFReader) Read(_ context.Context, path string) (*Content, error) {
	file, doc, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	defer file.Close()

	var sb strings.Builder
	var boundaries []int
	runeCount := 0

	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrUnreadableFile, i, err)
		}

		if sb.Len() > 0 {
			sb.WriteByte('\n')
			runeCount++
		}
		boundaries = append(boundaries, runeCount)
		sb.WriteString(text)
		runeCount += utf8.RuneCountInString(text)
	}

	return &Content{Text: sb.String(), Boundaries: boundaries}, nil
}
