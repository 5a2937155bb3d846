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


package storage

import (
	"fmt"

	"github.com/kestrelworks/granary/core"
)

// MarshalStoreRecord serializes a StoreRecord to bytes.
func MarshalStoreRecord(record *core.StoreRecord) []byte {
	buf := make([]byte, core.StoreRecordMUS.Size(*record))
	core.StoreRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalStoreRecord deserializes a StoreRecord from bytes.
func UnmarshalStoreRecord(data []byte) (*core.StoreRecord, error) {
	record, _, err := core.StoreRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalWatchEntry serializes a WatchEntry to bytes.
func MarshalWatchEntry(entry *core.WatchEntry) []byte {
	buf := make([]byte, core.WatchEntryMUS.Size(*entry))
	core.WatchEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalWatchEntry deserializes a WatchEntry from bytes.
func UnmarshalWatchEntry(data []byte) (*core.WatchEntry, error) {
	entry, _, err := core.WatchEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &entry, nil
}
