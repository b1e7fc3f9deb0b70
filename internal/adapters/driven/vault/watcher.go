package vault

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quillsync-cli/internal/logger"
)

// Watcher emits change events for the vault's content directories.
// It uses fsnotify for cross-platform file system event monitoring.
type Watcher struct {
	root    string
	watcher *fsnotify.Watcher
	events  chan domain.ChangeEvent
	done    chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	running bool
	closed  bool
}

var _ driven.VaultWatcher = (*Watcher)(nil)

// NewWatcher creates a watcher for the vault rooted at root.
func NewWatcher(root string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		root:    root,
		watcher: fsWatcher,
		events:  make(chan domain.ChangeEvent, 100),
		done:    make(chan struct{}),
	}, nil
}

// Start watches the vault's content directories and returns the event
// channel. The channel is closed when the context is cancelled or the
// watcher is closed.
func (w *Watcher) Start(ctx context.Context) (<-chan domain.ChangeEvent, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, fmt.Errorf("watcher already closed")
	}
	if w.running {
		return w.events, nil
	}

	var watched []string
	for _, area := range []string{"journals", "pages", "assets"} {
		dir := filepath.Join(w.root, area)
		if err := w.watcher.Add(dir); err != nil {
			logger.Warn("Not watching %s: %v", dir, err)
			continue
		}
		watched = append(watched, dir)
	}
	if len(watched) == 0 {
		return nil, fmt.Errorf("no watchable directories under %s", w.root)
	}
	logger.Info("Watching %d vault directories", len(watched))

	w.running = true
	w.wg.Add(1)
	go w.processEvents(ctx)

	return w.events, nil
}

// Close stops watching and closes the event channel.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	running := w.running
	w.running = false
	w.mu.Unlock()

	close(w.done)
	err := w.watcher.Close()

	if running {
		w.wg.Wait()
	}
	close(w.events)

	return err
}

// processEvents converts fsnotify events into domain change events.
func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			change, ok := w.convert(event)
			if !ok {
				continue
			}
			select {
			case w.events <- change:
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// convert maps an fsnotify event to a change event, skipping files that
// are not vault documents.
func (w *Watcher) convert(event fsnotify.Event) (domain.ChangeEvent, bool) {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return domain.ChangeEvent{}, false
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return domain.ChangeEvent{}, false
	}
	rel = filepath.ToSlash(rel)

	// Markdown only outside assets/.
	if !strings.HasPrefix(rel, "assets/") && !strings.HasSuffix(rel, ".md") {
		return domain.ChangeEvent{}, false
	}

	var op domain.ChangeOp
	switch {
	case event.Has(fsnotify.Create):
		op = domain.OpCreate
	case event.Has(fsnotify.Write):
		op = domain.OpModify
	case event.Has(fsnotify.Remove):
		op = domain.OpDelete
	case event.Has(fsnotify.Rename):
		// The new name triggers its own create event.
		op = domain.OpDelete
	default:
		// Chmod and friends.
		return domain.ChangeEvent{}, false
	}

	return domain.ChangeEvent{
		ID:         uuid.NewString(),
		DocumentID: rel,
		Path:       event.Name,
		Op:         op,
		OccurredAt: time.Now(),
	}, true
}
