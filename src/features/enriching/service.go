package enriching

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/contre95/tonegarden/src/features/config"
	"github.com/contre95/tonegarden/src/features/metrics"
	"github.com/contre95/tonegarden/src/music"
)

// musicBrainzDelay is how long to wait before hitting MusicBrainz.
// Their rate limit is one request per second; a small margin keeps the
// client out of 429 territory.
const musicBrainzDelay = 1100 * time.Millisecond

// batchDelay spaces out the tracks of a batch identification.
const batchDelay = 100 * time.Millisecond

// Service orchestrates the identification pipeline: fingerprint,
// AcoustID lookup, smart-match candidate selection, and an optional
// MusicBrainz enrichment pass.
type Service struct {
	fingerprinter Fingerprinter
	identifier    Identifier
	metadata      MetadataSource
	covers        CoverSource
	tags          TagReader
	writer        TagWriter
	art           CoverNormalizer
	config        *config.Manager

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewService creates a new enrichment service.
func NewService(
	fingerprinter Fingerprinter,
	identifier Identifier,
	metadata MetadataSource,
	covers CoverSource,
	tags TagReader,
	writer TagWriter,
	art CoverNormalizer,
	cfg *config.Manager,
) *Service {
	return &Service{
		fingerprinter: fingerprinter,
		identifier:    identifier,
		metadata:      metadata,
		covers:        covers,
		tags:          tags,
		writer:        writer,
		art:           art,
		config:        cfg,
		sleep:         time.Sleep,
	}
}

// Identify runs the full pipeline for one file and returns the best
// candidate. ErrNoMatches when nothing survives the confidence filter.
func (s *Service) Identify(ctx context.Context, path string) (*music.Identification, error) {
	start := time.Now()
	defer func() { metrics.ObserveIdentify(time.Since(start)) }()

	fingerprint, duration, err := s.fingerprinter.Fingerprint(ctx, path)
	if err != nil {
		return nil, err
	}

	candidates, err := s.identifier.Lookup(ctx, fingerprint, duration)
	if err != nil {
		metrics.RecordLookup("acoustid", "error")
		return nil, err
	}
	metrics.RecordLookup("acoustid", "ok")

	// Existing tags only sharpen candidate ranking; a file that cannot
	// be read still gets identified.
	existing, err := s.tags.ReadExisting(ctx, path)
	if err != nil {
		slog.Debug("could not read existing tags", "path", path, "error", err)
		existing = nil
	}

	best := s.selectCandidate(candidates, existing, path)
	if best == nil {
		return nil, music.ErrNoMatches
	}

	cfg := s.config.Get().Enrichment
	if cfg.UseMusicBrainz && best.Track.RecordingID != "" {
		s.sleep(musicBrainzDelay)
		mbTrack, err := s.metadata.LookupRecording(ctx, best.Track.RecordingID)
		if err != nil {
			// AcoustID already produced a usable result; a MusicBrainz
			// hiccup must not throw it away.
			slog.Warn("MusicBrainz enrichment failed", "path", path, "recording", best.Track.RecordingID, "error", err)
			metrics.RecordLookup("musicbrainz", "error")
		} else {
			best.Track.Merge(*mbTrack)
			metrics.RecordLookup("musicbrainz", "ok")
		}
	}

	slog.Info("track identified", "path", path, "title", best.Track.Title, "score", best.Score)
	return best, nil
}

// BatchResult pairs one batch path with its outcome.
type BatchResult struct {
	Path           string
	Identification *music.Identification
	Err            error
}

// IdentifyBatch identifies paths sequentially with a pacing delay
// between tracks. One failed path does not stop the batch.
func (s *Service) IdentifyBatch(ctx context.Context, paths []string) []BatchResult {
	results := make([]BatchResult, 0, len(paths))
	for i, path := range paths {
		if i > 0 {
			s.sleep(batchDelay)
		}
		if err := ctx.Err(); err != nil {
			results = append(results, BatchResult{Path: path, Err: err})
			continue
		}
		id, err := s.Identify(ctx, path)
		results = append(results, BatchResult{Path: path, Identification: id, Err: err})
	}
	return results
}

// IdentifyWithAlternatives returns every fingerprint candidate with
// its releases, plus the file's existing tags, for the verifier.
func (s *Service) IdentifyWithAlternatives(ctx context.Context, path string) ([]music.FingerprintMatch, *music.ExistingMetadata, error) {
	fingerprint, duration, err := s.fingerprinter.Fingerprint(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	matches, err := s.identifier.LookupMatches(ctx, fingerprint, duration)
	if err != nil {
		return nil, nil, err
	}

	existing, err := s.tags.ReadExisting(ctx, path)
	if err != nil {
		slog.Debug("could not read existing tags", "path", path, "error", err)
		existing = &music.ExistingMetadata{}
	}
	return matches, existing, nil
}

// CoverFor fetches the front cover of a release at the configured
// size.
func (s *Service) CoverFor(ctx context.Context, releaseID string) (*music.CoverArt, error) {
	return s.covers.FetchFront(ctx, releaseID, s.coverSize())
}

// selectCandidate filters by the confidence floor and picks the
// highest smart-match score. The adjusted score only orders the
// candidates; the returned identification keeps its raw AcoustID
// confidence, which is what the floor was checked against.
func (s *Service) selectCandidate(candidates []music.Identification, existing *music.ExistingMetadata, path string) *music.Identification {
	minConfidence := s.config.Get().Enrichment.MinConfidence

	var best *music.Identification
	var bestScore float64
	for i := range candidates {
		if candidates[i].Score < minConfidence {
			continue
		}
		adjusted := smartMatchScore(candidates[i], existing, path)
		if best == nil || adjusted > bestScore {
			best = &candidates[i]
			bestScore = adjusted
		}
	}
	if best == nil {
		return nil
	}

	picked := *best
	return &picked
}

func (s *Service) coverSize() music.CoverSize {
	switch s.config.Get().Enrichment.CoverSize {
	case "small":
		return music.CoverSizeSmall
	case "large":
		return music.CoverSizeLarge
	case "original":
		return music.CoverSizeOriginal
	default:
		return music.CoverSizeMedium
	}
}

// IsNoMatch reports whether an identification error just means the
// service had nothing, as opposed to a real failure.
func IsNoMatch(err error) bool {
	return errors.Is(err, music.ErrNoMatches)
}
