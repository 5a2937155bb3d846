package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashContent(t *testing.T) {
	t.Run("identical content produces identical hashes", func(t *testing.T) {
		h1 := HashContent("some document text")
		h2 := HashContent("some document text")
		assert.Equal(t, h1, h2)
	})

	t.Run("different content produces different hashes", func(t *testing.T) {
		h1 := HashContent("some document text")
		h2 := HashContent("some document text.")
		assert.NotEqual(t, h1, h2)
	})

	t.Run("hash is hex encoded and fixed length", func(t *testing.T) {
		h := HashContent("")
		assert.Len(t, h, 64)
		assert.Regexp(t, "^[0-9a-f]+$", h)
	})
}

func TestUnitID(t *testing.T) {
	hash := HashContent("content")

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, UnitID(hash, 3), UnitID(hash, 3))
	})

	t.Run("distinct per sequence index", func(t *testing.T) {
		assert.NotEqual(t, UnitID(hash, 0), UnitID(hash, 1))
	})

	t.Run("short hashes are used whole", func(t *testing.T) {
		assert.Equal(t, "abc-0", UnitID("abc", 0))
	})
}

func TestNewTextDocument(t *testing.T) {
	doc := NewTextDocument("hello world")

	require.NotEmpty(t, doc.SourceID)
	assert.Equal(t, OriginText, doc.Origin)
	assert.Equal(t, "hello world", doc.RawContent)
	assert.Equal(t, HashContent("hello world"), doc.ContentHash)
	assert.Empty(t, doc.Path)

	t.Run("source id is stable for identical text", func(t *testing.T) {
		other := NewTextDocument("hello world")
		assert.Equal(t, doc.SourceID, other.SourceID)
	})
}

func TestNewFileDocument(t *testing.T) {
	doc := NewFileDocument("./dropbox/resume.pdf", "page one\fpage two", []int{0, 9})

	assert.Equal(t, "file:dropbox/resume.pdf", doc.SourceID)
	assert.Equal(t, OriginFile, doc.Origin)
	assert.Equal(t, "./dropbox/resume.pdf", doc.Path)
	assert.Equal(t, HashContent("page one\fpage two"), doc.ContentHash)
	assert.Equal(t, []int{0, 9}, doc.Boundaries)
}
