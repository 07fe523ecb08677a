package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/contre95/tonegarden/src/features/gardening"
	"github.com/contre95/tonegarden/src/music"
)

// refreshInterval is how often the library-derived gauges are
// recomputed.
const refreshInterval = 30 * time.Second

// Service keeps the prometheus gauges in step with the gardener and
// the index.
type Service struct {
	library  music.Library
	gardener *gardening.Service
}

// NewService creates a new metrics service.
func NewService(library music.Library, gardener *gardening.Service) *Service {
	return &Service{library: library, gardener: gardener}
}

// Run refreshes the gauges until the context is cancelled. It returns
// immediately; the loop runs in its own goroutine.
func (s *Service) Run(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		s.refresh(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.refresh(ctx)
			}
		}
	}()
}

func (s *Service) refresh(ctx context.Context) {
	if s.gardener != nil {
		stats := s.gardener.Stats()
		gardenerProcessed.Set(float64(stats.Processed))
		gardenerVerified.Set(float64(stats.Verified))
		gardenerMismatched.Set(float64(stats.Mismatched))
		gardenerUnidentified.Set(float64(stats.Unidentified))
		gardenerErrors.Set(float64(stats.Errors))
		gardenerAverageScore.Set(stats.AverageScore)
	}

	tracks, err := s.library.GetAllTracksWithMetadata(ctx)
	if err != nil {
		slog.Warn("could not refresh library metrics", "error", err)
		return
	}
	pending := 0
	for _, track := range tracks {
		if track.QualityFlags != nil && track.QualityFlags.HasAny(music.FlagNeedsReview) {
			pending++
		}
	}
	tracksPendingReview.Set(float64(pending))
}
