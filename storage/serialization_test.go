package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelworks/granary/core"
)

func TestStoreRecordSerialization(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		record := &core.StoreRecord{
			UnitID:        "00112233aabbccdd-3",
			SourceID:      "file:/docs/handbook.pdf",
			ContentHash:   "00112233aabbccdd00112233aabbccdd00112233aabbccdd00112233aabbccdd",
			SequenceIndex: 3,
			Text:          "Unicode content: héllo wörld 日本語",
			Vector:        []float32{0.1, -0.5, 0.99, 0},
			Metadata:      map[string]string{"origin": "file", "path": "/docs/handbook.pdf"},
			InsertedAt:    time.Date(2025, 6, 15, 10, 30, 0, 123456000, time.UTC),
		}

		data := MarshalStoreRecord(record)
		require.NotEmpty(t, data)

		got, err := UnmarshalStoreRecord(data)
		require.NoError(t, err)
		assert.Equal(t, record, got)
	})

	t.Run("empty optional fields", func(t *testing.T) {
		record := &core.StoreRecord{
			UnitID:     "abc-0",
			SourceID:   "text:abc",
			InsertedAt: time.Now().Truncate(time.Microsecond).UTC(),
		}

		got, err := UnmarshalStoreRecord(MarshalStoreRecord(record))
		require.NoError(t, err)
		assert.Equal(t, record.UnitID, got.UnitID)
		assert.Empty(t, got.Vector)
		assert.Empty(t, got.Metadata)
	})

	t.Run("truncated data", func(t *testing.T) {
		record := &core.StoreRecord{UnitID: "abc-0", Text: "some content"}
		data := MarshalStoreRecord(record)

		_, err := UnmarshalStoreRecord(data[:len(data)/2])
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})

	t.Run("garbage data", func(t *testing.T) {
		_, err := UnmarshalStoreRecord([]byte{0xff, 0xff, 0xff, 0xff})
		assert.Error(t, err)
	})
}

func TestWatchEntrySerialization(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		entry := &core.WatchEntry{
			ContentHash:    "deadbeef",
			LastIngestedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		}

		got, err := UnmarshalWatchEntry(MarshalWatchEntry(entry))
		require.NoError(t, err)
		assert.Equal(t, entry, got)
	})

	t.Run("truncated data", func(t *testing.T) {
		entry := &core.WatchEntry{ContentHash: "deadbeef", LastIngestedAt: time.Now()}
		data := MarshalWatchEntry(entry)

		_, err := UnmarshalWatchEntry(data[:2])
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})
}
