package music

import (
	"context"
	"time"
)

// PathUpdate is one entry of a batch path rewrite.
type PathUpdate struct {
	TrackID int64
	NewPath string
}

// Library is the track index port. All mutation goes through here; the
// implementation is transactional and batch operations commit as one.
type Library interface {
	UpsertTrack(ctx context.Context, meta *TrackMetadata, path string, artistID, albumID *int64) (int64, error)
	GetOrCreateArtist(ctx context.Context, name string) (int64, error)
	GetOrCreateAlbum(ctx context.Context, title string, artistID *int64) (int64, error)

	GetTrack(ctx context.Context, id int64) (*Track, error)
	GetTrackByPath(ctx context.Context, path string) (*Track, error)
	GetTrackPathsWithMtime(ctx context.Context) (map[string]*time.Time, error)
	GetAllTracksWithMetadata(ctx context.Context) ([]TrackWithMetadata, error)
	GetTrackWithMetadata(ctx context.Context, id int64) (*TrackWithMetadata, error)
	GetTracksNeedingQualityCheck(ctx context.Context, limit int) ([]TrackWithMetadata, error)
	CountTracksNeedingQualityCheck(ctx context.Context) (int, error)

	UpdateTrackPath(ctx context.Context, id int64, newPath string) error
	BatchUpdateTrackPaths(ctx context.Context, updates []PathUpdate) (int, error)
	UpdateTrackMtime(ctx context.Context, path string, mtime time.Time) error
	UpdateTrackQuality(ctx context.Context, id int64, score int, flags QualityFlags) error
	DeleteTrackByPath(ctx context.Context, path string) error
}

// HealthStore is the per-file health record port.
type HealthStore interface {
	GetFileHealth(ctx context.Context, path string) (*FileHealth, error)
	UpsertFileHealth(ctx context.Context, health *FileHealth) error
	InvalidateFileHealth(ctx context.Context, path string) error
	ListFileHealth(ctx context.Context, status HealthStatus) ([]FileHealth, error)
}
