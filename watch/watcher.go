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


package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/panjf2000/ants/v2"

	"github.com/kestrelworks/granary/core"
	"github.com/kestrelworks/granary/ingest"
	"github.com/kestrelworks/granary/storage"
)

const (
	// DefaultDebounce is the quiet period a file must hold before it is
	// ingested after its last event.
	DefaultDebounce = 2 * time.Second

	defaultQueueSize = 256
	defaultPoolSize  = 4
)

// pendingFile tracks a path waiting out its debounce window.
type pendingFile struct {
	deadline time.Time
	size     int64
	modTime  time.Time
}

// Watcher monitors one directory and ingests files through a pipeline.
type Watcher struct {
	dir      string
	pipeline *ingest.Pipeline
	states   storage.WatchStateRepository

	debounce  time.Duration
	queueSize int
	poolSize  int

	fsw    *fsnotify.Watcher
	pool   *ants.Pool
	queue  chan string
	stop   chan struct{}
	wg     sync.WaitGroup // event loop + dispatch worker
	workWg sync.WaitGroup // in-flight ingestions

	started bool
	mu      sync.Mutex

	logger *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher) error

// WithDebounce sets the quiet period required after a file's last event.
// Values below 10ms are raised to 10ms.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) error {
		if d < 10*time.Millisecond {
			d = 10 * time.Millisecond
		}
		w.debounce = d
		return nil
	}
}

// WithQueueSize sets the event queue capacity.
func WithQueueSize(size int) Option {
	return func(w *Watcher) error {
		if size < 1 {
			size = 1
		}
		w.queueSize = size
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent ingestion.
func WithPoolSize(size int) Option {
	return func(w *Watcher) error {
		if size < 1 {
			size = 1
		}
		w.poolSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// NewWatcher creates a watcher for the given directory.
func NewWatcher(dir string, pipeline *ingest.Pipeline, states storage.WatchStateRepository, opts ...Option) (*Watcher, error) {
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}
	if states == nil {
		return nil, ErrStateRepositoryRequired
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, ErrNotDirectory
	}

	w := &Watcher{
		dir:       dir,
		pipeline:  pipeline,
		states:    states,
		debounce:  DefaultDebounce,
		queueSize: defaultQueueSize,
		poolSize:  defaultPoolSize,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// Start begins watching. It returns once the watcher is running; events
// are processed in the background until Stop is called.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return err
	}

	pool, err := ants.NewPool(w.poolSize)
	if err != nil {
		fsw.Close()
		return err
	}

	w.fsw = fsw
	w.pool = pool
	w.queue = make(chan string, w.queueSize)
	w.stop = make(chan struct{})
	w.started = true

	w.wg.Add(2)
	go w.eventLoop()
	go w.dispatchLoop()

	w.logger.Info("watching folder", "dir", w.dir, "debounce", w.debounce)
	return nil
}

// Stop shuts the watcher down. Pending debounce windows are abandoned,
// but ingestions already dispatched are allowed to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}

	close(w.stop)
	w.fsw.Close()
	w.wg.Wait()
	w.workWg.Wait()
	w.pool.Release()
	w.started = false

	w.logger.Info("stopped watching folder", "dir", w.dir)
}

// IngestExisting scans the directory once and ingests every supported
// file already present, honoring the per-path skip state. Useful at
// startup to pick up files dropped while the watcher was down.
func (w *Watcher) IngestExisting(ctx context.Context) error {
	return filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != w.dir && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if isHidden(d.Name()) || !w.pipeline.Supported(path) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		w.ingestPath(ctx, path)
		return nil
	})
}

// eventLoop reads filesystem events and queues candidate paths.
func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(event.Name)
			if isHidden(name) || !w.pipeline.Supported(event.Name) {
				continue
			}
			select {
			case w.queue <- event.Name:
			default:
				// Queue full. Dropping is safe: the file will be picked
				// up by a later event or an IngestExisting scan.
				w.logger.Warn("event queue full, dropping event", "path", event.Name)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "err", err)
		}
	}
}

// dispatchLoop debounces queued paths and dispatches stable files.
func (w *Watcher) dispatchLoop() {
	defer w.wg.Done()

	pending := make(map[string]*pendingFile)

	poll := w.debounce / 4
	if poll < 10*time.Millisecond {
		poll = 10 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return

		case path := <-w.queue:
			entry := &pendingFile{deadline: time.Now().Add(w.debounce)}
			if info, err := os.Stat(path); err == nil {
				entry.size = info.Size()
				entry.modTime = info.ModTime()
			}
			pending[path] = entry

		case now := <-ticker.C:
			for path, entry := range pending {
				if now.Before(entry.deadline) {
					continue
				}

				info, err := os.Stat(path)
				if err != nil {
					// Deleted or moved away before the window closed.
					delete(pending, path)
					continue
				}

				// Still being written: push the deadline out.
				if info.Size() != entry.size || !info.ModTime().Equal(entry.modTime) {
					entry.size = info.Size()
					entry.modTime = info.ModTime()
					entry.deadline = now.Add(w.debounce)
					continue
				}

				delete(pending, path)
				w.dispatch(path)
			}
		}
	}
}

// dispatch submits a stable path for ingestion on the worker pool.
func (w *Watcher) dispatch(path string) {
	w.workWg.Add(1)
	err := w.pool.Submit(func() {
		defer w.workWg.Done()
		w.ingestPath(context.Background(), path)
	})
	if err != nil {
		w.workWg.Done()
		w.logger.Error("failed to submit ingestion", "path", path, "err", err)
	}
}

// ingestPath ingests one file unless its bytes are unchanged since the
// last successful ingestion. Failures leave the path unmarked so the
// next event retries it.
func (w *Watcher) ingestPath(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Error("failed to read watched file", "path", path, "err", err)
		return
	}
	fileHash := core.HashContent(string(data))

	entry, err := w.states.Get(ctx, path)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		w.logger.Error("failed to load watch state", "path", path, "err", err)
		return
	}
	if entry != nil && entry.ContentHash == fileHash {
		w.logger.Debug("file unchanged since last ingestion", "path", path)
		return
	}

	result, err := w.pipeline.IngestFile(ctx, path)
	if err != nil {
		w.logger.Error("failed to ingest watched file", "path", path, "err", err)
		return
	}

	// Mark the path even when the content was a store-level duplicate;
	// the pipeline already guarantees no double-write.
	err = w.states.Put(ctx, path, &core.WatchEntry{
		ContentHash:    fileHash,
		LastIngestedAt: time.Now().UTC(),
	})
	if err != nil {
		w.logger.Error("failed to persist watch state", "path", path, "err", err)
		return
	}

	w.logger.Info("ingested watched file", "path", path, "accepted", result.Accepted, "units", result.Units)
}

// isHidden reports whether a file name is hidden (dotfile).
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
