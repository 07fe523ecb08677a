package health

import (
	"context"
	"time"

	"github.com/contre95/tonegarden/src/music"
)

// Service maintains the per-file health records: what the last
// identification attempt concluded, and whether the file has changed
// since.
type Service struct {
	store music.HealthStore
}

// NewService creates a new health service.
func NewService(store music.HealthStore) *Service {
	return &Service{store: store}
}

// Record stores the outcome of one identification attempt, stamping
// the file's current size and content hash when missing.
func (s *Service) Record(ctx context.Context, health *music.FileHealth) error {
	if health.ContentHash == "" {
		hash, size, err := ContentHash(health.Path)
		if err != nil {
			return err
		}
		health.ContentHash = hash
		health.FileSize = size
	}
	if health.CheckedAt.IsZero() {
		health.CheckedAt = time.Now()
	}
	return s.store.UpsertFileHealth(ctx, health)
}

// Check returns the stored record for path. A record whose content
// hash no longer matches the file is invalidated and nil is returned,
// as for a file never checked; the second return reports that the
// content changed under an existing record.
func (s *Service) Check(ctx context.Context, path string) (*music.FileHealth, bool, error) {
	stored, err := s.store.GetFileHealth(ctx, path)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return nil, false, nil
	}

	hash, _, err := ContentHash(path)
	if err != nil {
		return nil, false, err
	}
	if hash != stored.ContentHash {
		if err := s.store.InvalidateFileHealth(ctx, path); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}
	return stored, false, nil
}

// List returns the records with the given status; empty status means
// every record.
func (s *Service) List(ctx context.Context, status music.HealthStatus) ([]music.FileHealth, error) {
	return s.store.ListFileHealth(ctx, status)
}
