package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the persisted types. Timestamps are
// stored as Unix microseconds.

var (
	vectorMUS   = ord.NewSliceSer[float32](raw.Float32)
	metadataMUS = ord.NewMapSer[string, string](ord.String, ord.String)
)

// StoreRecordMUS serializes StoreRecord values.
var StoreRecordMUS = storeRecordMUS{}

type storeRecordMUS struct{}

func (storeRecordMUS) Marshal(r StoreRecord, bs []byte) (n int) {
	n = ord.String.Marshal(r.UnitID, bs)
	n += ord.String.Marshal(r.SourceID, bs[n:])
	n += ord.String.Marshal(r.ContentHash, bs[n:])
	n += varint.Uint64.Marshal(r.SequenceIndex, bs[n:])
	n += ord.String.Marshal(r.Text, bs[n:])
	n += vectorMUS.Marshal(r.Vector, bs[n:])
	n += metadataMUS.Marshal(r.Metadata, bs[n:])
	n += varint.Int64.Marshal(r.InsertedAt.UnixMicro(), bs[n:])
	return n
}

func (storeRecordMUS) Unmarshal(bs []byte) (r StoreRecord, n int, err error) {
	var n1 int
	r.UnitID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	r.SourceID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.ContentHash, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.SequenceIndex, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.Metadata, n1, err = metadataMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.InsertedAt = time.UnixMicro(micros).UTC()
	return
}

func (storeRecordMUS) Size(r StoreRecord) (size int) {
	size = ord.String.Size(r.UnitID)
	size += ord.String.Size(r.SourceID)
	size += ord.String.Size(r.ContentHash)
	size += varint.Uint64.Size(r.SequenceIndex)
	size += ord.String.Size(r.Text)
	size += vectorMUS.Size(r.Vector)
	size += metadataMUS.Size(r.Metadata)
	size += varint.Int64.Size(r.InsertedAt.UnixMicro())
	return size
}

// WatchEntryMUS serializes WatchEntry values.
var WatchEntryMUS = watchEntryMUS{}

type watchEntryMUS struct{}

func (watchEntryMUS) Marshal(e WatchEntry, bs []byte) (n int) {
	n = ord.String.Marshal(e.ContentHash, bs)
	n += varint.Int64.Marshal(e.LastIngestedAt.UnixMicro(), bs[n:])
	return n
}

func (watchEntryMUS) Unmarshal(bs []byte) (e WatchEntry, n int, err error) {
	var n1 int
	e.ContentHash, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.LastIngestedAt = time.UnixMicro(micros).UTC()
	return
}

func (watchEntryMUS) Size(e WatchEntry) (size int) {
	size = ord.String.Size(e.ContentHash)
	size += varint.Int64.Size(e.LastIngestedAt.UnixMicro())
	return size
}
