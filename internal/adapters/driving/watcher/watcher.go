// Package watcher ingests files dropped into a watched directory.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/doclane/doclane/internal/core/ports/driving"
	"github.com/doclane/doclane/internal/logger"
)

// DefaultSettleDelay is how long a file must be quiet before it is
// ingested. Editors and downloads write in bursts; ingesting on the
// first event would pick up a partial file.
const DefaultSettleDelay = 500 * time.Millisecond

// Watcher ingests every file created or modified in one directory.
// Subdirectories and hidden files are ignored.
type Watcher struct {
	ingest driving.IngestService
	dir    string
	settle time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

// New creates a watcher for dir. The directory must exist.
func New(ingest driving.IngestService, dir string) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch directory: %s is not a directory", dir)
	}
	return &Watcher{
		ingest:  ingest,
		dir:     dir,
		settle:  DefaultSettleDelay,
		pending: make(map[string]*time.Timer),
	}, nil
}

// Start begins watching. Blocks until Stop is called or ctx is
// cancelled. Ingestion failures are logged, never fatal to the loop.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil // Already running
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	logger.Info("Watching %s for new documents", w.dir)

	for {
		select {
		case <-ctx.Done():
			w.drainTimers()
			return ctx.Err()
		case <-stopCh:
			w.drainTimers()
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.eligible(event.Name) {
				continue
			}
			w.schedule(event.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

// Stop shuts down the watch loop and waits for in-flight ingestions.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	w.wg.Wait()
	return nil
}

// eligible filters out directories, hidden files and partial downloads.
func (w *Watcher) eligible(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	if strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".crdownload") {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// schedule (re)arms the settle timer for a path. Each event pushes the
// ingestion back by the settle delay so a file in mid-write is picked
// up once, after the last write.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settle)
		return
	}

	w.wg.Add(1)
	w.pending[path] = time.AfterFunc(w.settle, func() {
		defer w.wg.Done()
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.ingestFile(path)
	})
}

// drainTimers cancels timers that have not fired yet.
func (w *Watcher) drainTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		if timer.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
}

func (w *Watcher) ingestFile(path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Skipping %s: %v", path, err)
		return
	}

	doc, err := w.ingest.Ingest(context.Background(), filepath.Base(path), content)
	if err != nil {
		logger.Warn("Failed to ingest %s: %v", path, err)
		return
	}
	logger.Info("Ingested %s as document %s", path, doc.ID)
}
