package gardening

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/contre95/tonegarden/src/features/config"
	"github.com/contre95/tonegarden/src/features/quality"
	"github.com/contre95/tonegarden/src/features/verifying"
	"github.com/contre95/tonegarden/src/music"
)

// Enricher resolves a file to ranked fingerprint candidates plus the
// tags currently embedded in it.
type Enricher interface {
	IdentifyWithAlternatives(ctx context.Context, path string) ([]music.FingerprintMatch, *music.ExistingMetadata, error)
}

// HealthTracker records per-file identification outcomes and detects
// content changes since the last one.
type HealthTracker interface {
	Record(ctx context.Context, health *music.FileHealth) error
	Check(ctx context.Context, path string) (*music.FileHealth, bool, error)
}

// Service is the background quality worker. It sweeps the index on a
// timer, scores each track's metadata, optionally verifies it against
// its audio fingerprint, and persists the verdict.
type Service struct {
	library  music.Library
	enricher Enricher
	health   HealthTracker
	config   *config.Manager

	commands chan Command
	events   chan Event

	mu    sync.Mutex
	stats Stats

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewService creates a gardener. The enricher may be nil when
// fingerprinting is disabled in the config; health may be nil when
// outcomes need not be recorded.
func NewService(library music.Library, enricher Enricher, health HealthTracker, cfg *config.Manager) *Service {
	return &Service{
		library:  library,
		enricher: enricher,
		health:   health,
		config:   cfg,
		commands: make(chan Command, 16),
		events:   make(chan Event, 64),
		sleep:    time.Sleep,
	}
}

// Events is the gardener's notification stream. Slow consumers lose
// events rather than stalling the worker.
func (s *Service) Events() <-chan Event { return s.events }

// Stats returns a copy of the accumulated counters.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Pause suspends the periodic sweep. On-demand commands still run.
func (s *Service) Pause() { s.send(Command{Type: CommandPause}) }

// Resume restarts the periodic sweep after a pause.
func (s *Service) Resume() { s.send(Command{Type: CommandResume}) }

// Stop shuts the worker down. The events channel is closed once the
// loop exits.
func (s *Service) Stop() { s.send(Command{Type: CommandStop}) }

// ProcessTracks queues specific tracks for immediate assessment,
// bypassing the sweep order.
func (s *Service) ProcessTracks(ids []int64) {
	s.send(Command{Type: CommandProcessBatch, TrackIDs: ids})
}

// send never blocks the caller. Once the loop has exited the buffer
// fills up and further commands are dropped with a warning instead of
// hanging an API handler.
func (s *Service) send(cmd Command) {
	select {
	case s.commands <- cmd:
	default:
		slog.Warn("gardener is not accepting commands", "command", cmd.Type)
	}
}

// Start runs the gardener loop until Stop is called or the context is
// cancelled. It returns immediately; the loop runs in its own
// goroutine.
func (s *Service) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	defer close(s.events)

	interval := s.config.Get().Gardener.CheckInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("gardener started", "interval", interval)
	paused := false

	for {
		select {
		case <-ctx.Done():
			slog.Info("gardener stopped", "reason", "context cancelled")
			s.emit(Event{Type: EventStopped})
			return

		case cmd := <-s.commands:
			switch cmd.Type {
			case CommandPause:
				if !paused {
					paused = true
					slog.Info("gardener paused")
					s.emit(Event{Type: EventPaused})
				}
			case CommandResume:
				if paused {
					paused = false
					slog.Info("gardener resumed")
					s.emit(Event{Type: EventResumed})
				}
			case CommandStop:
				slog.Info("gardener stopped")
				s.emit(Event{Type: EventStopped})
				return
			case CommandProcessTrack, CommandProcessBatch:
				s.processIDs(ctx, cmd.TrackIDs)
			}

		case <-ticker.C:
			if paused {
				continue
			}
			s.sweep(ctx)
		}
	}
}

// sweep assesses one batch of the tracks most in need of a check.
func (s *Service) sweep(ctx context.Context) {
	batchSize := s.config.Get().Gardener.BatchSize
	rows, err := s.library.GetTracksNeedingQualityCheck(ctx, batchSize)
	if err != nil {
		slog.Error("gardener could not load batch", "error", err)
		s.countError()
		return
	}
	if len(rows) == 0 {
		return
	}

	processed := 0
	for i, row := range rows {
		if i > 0 {
			s.sleep(s.config.Get().Gardener.TrackDelay())
		}
		if ctx.Err() != nil {
			break
		}
		s.processTrack(ctx, row)
		processed++
	}

	s.emit(Event{Type: EventBatchComplete, Processed: processed, Remaining: s.remaining(ctx)})
	stats := s.Stats()
	s.emit(Event{Type: EventStatsUpdated, Stats: &stats})
}

// remaining counts the tracks still waiting for a first assessment.
func (s *Service) remaining(ctx context.Context) int {
	n, err := s.library.CountTracksNeedingQualityCheck(ctx)
	if err != nil {
		slog.Warn("could not count pending tracks", "error", err)
		return 0
	}
	return n
}

// processIDs handles an on-demand request for specific tracks.
func (s *Service) processIDs(ctx context.Context, ids []int64) {
	processed := 0
	for i, id := range ids {
		if i > 0 {
			s.sleep(s.config.Get().Gardener.TrackDelay())
		}
		row, err := s.library.GetTrackWithMetadata(ctx, id)
		if err != nil {
			slog.Warn("gardener could not load track", "track", id, "error", err)
			s.countError()
			continue
		}
		s.processTrack(ctx, *row)
		processed++
	}
	s.emit(Event{Type: EventBatchComplete, Processed: processed, Remaining: s.remaining(ctx)})
}

// processTrack runs the full assessment for one index row: verify
// against the fingerprint when enabled, score the metadata, fold the
// verification verdict into the score, and persist.
func (s *Service) processTrack(ctx context.Context, row music.TrackWithMetadata) {
	cfg := s.config.Get().Gardener

	fileChanged := false
	if s.health != nil {
		if _, changed, err := s.health.Check(ctx, row.Path); err != nil {
			slog.Debug("file health check failed", "path", row.Path, "error", err)
		} else {
			fileChanged = changed
		}
	}

	var confidence *float64
	var verification *verifying.Result
	if cfg.Fingerprinting && s.enricher != nil {
		matches, existing, err := s.enricher.IdentifyWithAlternatives(ctx, row.Path)
		if err != nil {
			// The metadata score still stands on its own; verification
			// just could not happen this round.
			slog.Warn("fingerprint verification failed", "path", row.Path, "error", err)
			s.countError()
			s.recordHealth(ctx, &music.FileHealth{
				Path:      row.Path,
				Status:    music.HealthError,
				ErrorKind: music.HealthErrAPI,
				ErrorMsg:  err.Error(),
			})
		} else {
			result := verifying.Verify(*existing, matches)
			verification = &result
			if result.BestMatch != nil {
				c := result.BestMatch.Score
				confidence = &c
			}
			s.recordHealth(ctx, healthFor(row.Path, result))
		}
	}

	assessment := quality.Assess(quality.Input{
		Title:       row.Title,
		Artist:      row.Artist,
		Album:       row.Album,
		Year:        row.Year,
		TrackNumber: row.TrackNumber,
		Filename:    filepath.Base(row.Path),
		RecordingID: derefString(row.RecordingID),
		Confidence:  confidence,
	})

	score, flags := assessment.Score, assessment.Flags
	if verification != nil {
		score, flags = applyVerification(score, flags, *verification)
	}
	if fileChanged {
		flags |= music.FlagFileChanged
	}

	if err := s.library.UpdateTrackQuality(ctx, row.ID, score, flags); err != nil {
		slog.Error("could not persist quality verdict", "track", row.ID, "error", err)
		s.countError()
		return
	}

	s.mu.Lock()
	s.stats.record(score)
	if verification != nil {
		switch verification.Status {
		case verifying.StatusVerified:
			s.stats.Verified++
		case verifying.StatusMismatch:
			s.stats.Mismatched++
		case verifying.StatusNoMatch:
			s.stats.Unidentified++
		}
	}
	s.mu.Unlock()

	slog.Debug("track assessed", "track", row.ID, "score", score, "flags", flags)
	s.emit(Event{Type: EventTrackAssessed, TrackID: row.ID, Score: score, Flags: flags})
}

// recordHealth persists an identification outcome. Failures only warn;
// health is bookkeeping, not part of the verdict.
func (s *Service) recordHealth(ctx context.Context, h *music.FileHealth) {
	if s.health == nil {
		return
	}
	if err := s.health.Record(ctx, h); err != nil {
		slog.Warn("could not record file health", "path", h.Path, "error", err)
	}
}

// healthFor maps a verification outcome onto a health record.
func healthFor(path string, v verifying.Result) *music.FileHealth {
	if v.Status == verifying.StatusNoMatch || v.BestMatch == nil {
		return &music.FileHealth{Path: path, Status: music.HealthNoMatch}
	}
	c := v.BestMatch.Score
	return &music.FileHealth{
		Path:        path,
		Status:      music.HealthOK,
		Confidence:  &c,
		RecordingID: v.BestMatch.RecordingID,
	}
}

// applyVerification folds the verifier's verdict into the metadata
// score and flags.
func applyVerification(score int, flags music.QualityFlags, v verifying.Result) (int, music.QualityFlags) {
	switch v.Status {
	case verifying.StatusVerified:
		score += 10
		flags |= music.FlagVerified
	case verifying.StatusMismatch:
		score -= 20
		flags |= music.FlagPossiblyMislabeled
	case verifying.StatusNoMatch:
		flags |= music.FlagUnidentified
	}

	for _, issue := range v.Issues {
		switch issue.Type {
		case verifying.IssueTitleMismatch:
			flags |= music.FlagTitleMismatch
		case verifying.IssueArtistMismatch:
			flags |= music.FlagArtistMismatch
		case verifying.IssueAlbumMismatch:
			flags |= music.FlagAlbumMismatch
		case verifying.IssueRecordingIDMismatch:
			flags |= music.FlagRecordingIDMismatch
		case verifying.IssueBetterAlbumAvailable:
			flags |= music.FlagBetterMatchAvailable
		case verifying.IssueLowConfidence:
			flags |= music.FlagLowConfidence
		}
	}

	if v.BestMatch != nil && len(v.BestMatch.Releases) > 1 {
		flags |= music.FlagMultiAlbum
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, flags
}

func (s *Service) countError() {
	s.mu.Lock()
	s.stats.Errors++
	s.mu.Unlock()
}

// emit sends an event without ever blocking the loop.
func (s *Service) emit(event Event) {
	select {
	case s.events <- event:
	default:
		slog.Warn("gardener event dropped", "type", event.Type)
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
