package scanning

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

	"github.com/contre95/tonegarden/src/features/config"
	"github.com/contre95/tonegarden/src/infra/watcher"
	"github.com/contre95/tonegarden/src/music"
)

// maxConcurrentReads bounds how many files are tag-parsed at once
// while a walk is in flight.
const maxConcurrentReads = 10

var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".wav":  true,
	".m4a":  true,
}

func isAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// TagReader parses the metadata embedded in an audio file.
type TagReader interface {
	Read(ctx context.Context, path string) (*music.TrackMetadata, error)
}

// Service keeps the index in sync with the filesystem, by full
// reconcile walks and by live watcher events.
type Service struct {
	library music.Library
	health  music.HealthStore
	reader  TagReader
	config  *config.Manager

	mu  sync.Mutex
	job *ScanJob
}

// NewService creates a new scanning service.
func NewService(library music.Library, health music.HealthStore, reader TagReader, cfg *config.Manager) *Service {
	return &Service{
		library: library,
		health:  health,
		reader:  reader,
		config:  cfg,
	}
}

// Reconcile walks root and joins what it finds against the index. The
// returned stream reports one event per added, updated or removed
// track; unchanged files pass silently. The channel closes when the
// walk and all pending reads are done.
func (s *Service) Reconcile(ctx context.Context, root string) <-chan Event {
	events := make(chan Event, 64)

	go func() {
		defer close(events)

		known, err := s.library.GetTrackPathsWithMtime(ctx)
		if err != nil {
			events <- Event{Type: EventError, Err: err}
			return
		}

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			seen = make(map[string]bool, len(known))
			sem  = make(chan struct{}, maxConcurrentReads)
		)

		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				events <- Event{Type: EventError, Path: path, Err: err}
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() || !isAudioFile(path) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				events <- Event{Type: EventError, Path: path, Err: err}
				return nil
			}
			mtime := info.ModTime()

			mu.Lock()
			seen[path] = true
			mu.Unlock()

			indexedMtime, indexed := known[path]
			if indexed && indexedMtime != nil && indexedMtime.Equal(mtime) {
				return nil
			}

			eventType := EventAdded
			if indexed {
				eventType = EventUpdated
			}

			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				if err := s.indexFile(ctx, path, mtime); err != nil {
					events <- Event{Type: EventError, Path: path, Err: err}
					return
				}
				events <- Event{Type: eventType, Path: path}
			}()
			return nil
		})
		wg.Wait()

		if walkErr != nil {
			if !errors.Is(walkErr, context.Canceled) {
				events <- Event{Type: EventError, Path: root, Err: walkErr}
			}
			return
		}

		for path := range known {
			if seen[path] {
				continue
			}
			if err := s.library.DeleteTrackByPath(ctx, path); err != nil {
				events <- Event{Type: EventError, Path: path, Err: err}
				continue
			}
			events <- Event{Type: EventRemoved, Path: path}
		}
	}()

	return events
}

// indexFile reads a file's tags and writes the row, linking artist and
// album on the way.
func (s *Service) indexFile(ctx context.Context, path string, mtime time.Time) error {
	meta, err := s.reader.Read(ctx, path)
	if err != nil {
		return err
	}
	meta.EnsureDefaults()

	artistID, err := s.library.GetOrCreateArtist(ctx, meta.Artist)
	if err != nil {
		return err
	}
	albumID, err := s.library.GetOrCreateAlbum(ctx, meta.Album, &artistID)
	if err != nil {
		return err
	}
	if _, err := s.library.UpsertTrack(ctx, meta, path, &artistID, &albumID); err != nil {
		return err
	}
	return s.library.UpdateTrackMtime(ctx, path, mtime)
}

// HandleFileEvents applies live watcher events to the index. It
// returns when the stream closes or the context is cancelled.
func (s *Service) HandleFileEvents(ctx context.Context, events <-chan watcher.FileEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			s.applyFileEvent(ctx, event)
		}
	}
}

func (s *Service) applyFileEvent(ctx context.Context, event watcher.FileEvent) {
	switch event.EventType {
	case watcher.FileCreated, watcher.FileModified:
		info, err := os.Stat(event.Path)
		if err != nil {
			slog.Warn("watched file vanished before indexing", "path", event.Path, "error", err)
			return
		}
		if err := s.indexFile(ctx, event.Path, info.ModTime()); err != nil {
			slog.Warn("could not index watched file", "path", event.Path, "error", err)
			return
		}
		// A rewrite voids any prior health verdict on the file.
		if event.EventType == watcher.FileModified && s.health != nil {
			if err := s.health.InvalidateFileHealth(ctx, event.Path); err != nil {
				slog.Warn("could not invalidate file health", "path", event.Path, "error", err)
			}
		}
		slog.Debug("watched file indexed", "path", event.Path, "event", event.EventType)
	case watcher.FileRemoved:
		if err := s.library.DeleteTrackByPath(ctx, event.Path); err != nil {
			slog.Warn("could not remove watched file from index", "path", event.Path, "error", err)
			return
		}
		slog.Debug("watched file removed from index", "path", event.Path)
	}
}
