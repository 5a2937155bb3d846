package ingest

import "sync"

// hashLocks serializes work per content hash. Two goroutines ingesting
// the same content take turns; different hashes proceed in parallel.
type hashLocks struct {
	mu    sync.Mutex
	locks map[string]*hashLock
}

type hashLock struct {
	mu   sync.Mutex
	refs int
}

func newHashLocks() *hashLocks {
	return &hashLocks{locks: make(map[string]*hashLock)}
}

// acquire blocks until the lock for hash is held and returns the release
// function. Lock entries are removed once the last holder releases.
func (h *hashLocks) acquire(hash string) func() {
	h.mu.Lock()
	l, ok := h.locks[hash]
	if !ok {
		l = &hashLock{}
		h.locks[hash] = l
	}
	l.refs++
	h.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		h.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(h.locks, hash)
		}
		h.mu.Unlock()
	}
}
