package library

import (
	"context"
	"log/slog"

	"github.com/contre95/tonegarden/src/music"
)

// Service is the domain service for the library feature.
type Service struct {
	library music.Library
}

// NewService creates a new library service.
func NewService(lib music.Library) *Service {
	return &Service{library: lib}
}

// GetTracks returns every track with its joined artist and album.
func (s *Service) GetTracks(ctx context.Context) ([]music.TrackWithMetadata, error) {
	slog.Debug("GetTracks service called")
	tracks, err := s.library.GetAllTracksWithMetadata(ctx)
	if err != nil {
		slog.Error("GetTracks failed", "error", err)
		return nil, err
	}
	slog.Debug("GetTracks completed", "count", len(tracks))
	return tracks, nil
}

// GetTrack returns one track with its joined metadata.
func (s *Service) GetTrack(ctx context.Context, id int64) (*music.TrackWithMetadata, error) {
	slog.Debug("GetTrack service called", "id", id)
	track, err := s.library.GetTrackWithMetadata(ctx, id)
	if err != nil {
		slog.Error("GetTrack failed", "id", id, "error", err)
		return nil, err
	}
	return track, nil
}

// GetTracksNeedingReview returns the tracks whose quality flags ask
// for a human look.
func (s *Service) GetTracksNeedingReview(ctx context.Context) ([]music.TrackWithMetadata, error) {
	slog.Debug("GetTracksNeedingReview service called")
	tracks, err := s.library.GetAllTracksWithMetadata(ctx)
	if err != nil {
		slog.Error("GetTracksNeedingReview failed", "error", err)
		return nil, err
	}

	review := make([]music.TrackWithMetadata, 0)
	for _, track := range tracks {
		if track.QualityFlags != nil && track.QualityFlags.HasAny(music.FlagNeedsReview) {
			review = append(review, track)
		}
	}
	slog.Debug("GetTracksNeedingReview completed", "count", len(review))
	return review, nil
}
