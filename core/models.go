package core

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// Origin identifies where a document's content came from.
type Origin int

const (
	// OriginText represents raw text handed to the system directly.
	OriginText Origin = iota + 1
	// OriginFile represents content read from a file on disk.
	OriginFile
)

// String returns the label used in record metadata.
func (o Origin) String() string {
	switch o {
	case OriginText:
		return "text"
	case OriginFile:
		return "file"
	default:
		return "unknown"
	}
}

// Document is a single logical piece of content entering the ingestion
// pipeline. It exists only long enough to be chunked; only the Units
// derived from it are persisted.
type Document struct {
	SourceID    string
	Origin      Origin
	Path        string // set when Origin is OriginFile
	RawContent  string
	ContentHash string
	Boundaries  []int // structural segment start offsets (rune positions), may be empty
}

// Span is a half-open [Start, End) range of rune offsets into a
// document's raw content.
type Span struct {
	Start int
	End   int
}

// Unit is one retrievable chunk of a document. Units are immutable once
// created; SequenceIndex is contiguous and zero-based in document order,
// and spans are non-overlapping and monotonically increasing.
type Unit struct {
	UnitID        string
	SourceID      string
	SequenceIndex uint64
	Text          string
	Span          Span
}

// StoreRecord is the persisted form of a Unit together with its
// embedding vector. Records are append-only; a given UnitID is written
// at most once.
type StoreRecord struct {
	UnitID        string
	SourceID      string
	ContentHash   string
	SequenceIndex uint64
	Text          string
	Vector        []float32
	Metadata      map[string]string
	InsertedAt    time.Time
}

// WatchEntry records that a watched file was ingested and which content
// it held at the time.
type WatchEntry struct {
	ContentHash    string
	LastIngestedAt time.Time
}

// SearchResult pairs a store record with its similarity score.
type SearchResult struct {
	Record *StoreRecord
	Score  float32
}

// HashContent computes the deterministic content digest used for
// duplicate detection. Identical content always produces the same hash.
func HashContent(content string) string {
	h, _ := blake2b.New(32, nil)
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// UnitID derives the deterministic identifier for a unit from its
// document hash and position. Re-chunking identical content yields
// identical unit IDs.
func UnitID(contentHash string, sequenceIndex uint64) string {
	prefix := contentHash
	if len(prefix) > 16 {
		prefix = prefix[:16]
	}
	return fmt.Sprintf("%s-%d", prefix, sequenceIndex)
}

// NewTextDocument builds a Document from raw text.
func NewTextDocument(content string) Document {
	hash := HashContent(content)
	return Document{
		SourceID:    "text:" + hash[:12],
		Origin:      OriginText,
		RawContent:  content,
		ContentHash: hash,
	}
}

// NewFileDocument builds a Document from content extracted out of a file.
// boundaries carries structural segment offsets reported by the reader,
// or nil when the format has no structure.
func NewFileDocument(path, content string, boundaries []int) Document {
	return Document{
		SourceID:    "file:" + strings.TrimPrefix(path, "./"),
		Origin:      OriginFile,
		Path:        path,
		RawContent:  content,
		ContentHash: HashContent(content),
		Boundaries:  boundaries,
	}
}
