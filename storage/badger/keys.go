package badger

import "fmt"

// Key prefixes for different data types
const (
	unitRecordPrefix = "unitrec"
	hashIndexPrefix  = "hashidx"
	watchStatePrefix = "watch"
)

// makeUnitRecordKey generates a key for a unit record by unit ID.
func makeUnitRecordKey(unitID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", unitRecordPrefix, unitID))
}

// makeHashIndexKey generates a key for the content-hash presence index.
func makeHashIndexKey(contentHash string) []byte {
	return []byte(fmt.Sprintf("%s:%s", hashIndexPrefix, contentHash))
}

// makeWatchStateKey generates a key for a watched file's ingestion state.
func makeWatchStateKey(path string) []byte {
	return []byte(fmt.Sprintf("%s:%s", watchStatePrefix, path))
}
