package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// coalesceWindow is how long a path must stay quiet before its latest
// event is emitted. A burst of saves against one file yields one event.
const coalesceWindow = 100 * time.Millisecond

// Watcher monitors a library root for audio file changes and emits
// coalesced events. Subdirectories are watched recursively; fsnotify
// itself only watches single directories, so new directories are added
// as they appear.
type Watcher struct {
	watcher   *fsnotify.Watcher
	eventChan chan<- FileEvent
	stopChan  chan struct{}

	mu      sync.Mutex
	pending map[string]*pendingEvent
	running bool
}

type pendingEvent struct {
	timer     *time.Timer
	eventType FileEventType
}

// NewWatcher creates a new file system watcher
func NewWatcher(eventChan chan<- FileEvent) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:   fsWatcher,
		eventChan: eventChan,
		stopChan:  make(chan struct{}),
		pending:   make(map[string]*pendingEvent),
	}, nil
}

// Start begins watching the root and everything below it.
func (w *Watcher) Start(ctx context.Context, root string) error {
	slog.Info("starting file watcher", "path", root)

	if err := w.addRecursive(root); err != nil {
		return err
	}
	w.running = true
	go w.watchLoop(ctx)
	return nil
}

// Stop stops the file watcher and cancels pending coalesce timers.
func (w *Watcher) Stop() {
	if !w.running {
		return
	}
	slog.Info("stopping file watcher")
	w.running = false
	close(w.stopChan)

	w.mu.Lock()
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	w.watcher.Close()
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("file watcher error", "error", err)

		case <-w.stopChan:
			return

		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	if !isAudioFile(event.Name) {
		return
	}

	var eventType FileEventType
	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		eventType = FileRemoved
	case event.Op&fsnotify.Create != 0:
		eventType = FileCreated
	case event.Op&fsnotify.Write != 0:
		eventType = FileModified
	default:
		return
	}

	w.coalesce(event.Name, eventType)
}

// coalesce starts or resets the per-path idle timer. A Created that is
// still pending keeps its type through subsequent writes, since the
// consumer has never seen the file; a Removed always wins.
func (w *Watcher) coalesce(path string, eventType FileEventType) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
		if eventType == FileRemoved {
			p.eventType = FileRemoved
		} else if p.eventType != FileCreated {
			p.eventType = eventType
		}
		p.timer.Reset(coalesceWindow)
		return
	}

	p := &pendingEvent{eventType: eventType}
	p.timer = time.AfterFunc(coalesceWindow, func() { w.emit(path) })
	w.pending[path] = p
}

func (w *Watcher) emit(path string) {
	w.mu.Lock()
	p, ok := w.pending[path]
	delete(w.pending, path)
	w.mu.Unlock()
	if !ok {
		return
	}

	event := FileEvent{
		Path:      path,
		EventType: p.eventType,
		Timestamp: time.Now(),
	}
	select {
	case w.eventChan <- event:
	default:
		slog.Warn("event channel full, dropping file event", "path", path)
	}
}

// isAudioFile checks whether the path has a supported audio extension.
func isAudioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".flac", ".ogg", ".wav", ".m4a":
		return true
	}
	return false
}
