package organizing

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/contre95/tonegarden/src/features/config"
	"github.com/contre95/tonegarden/src/infra/files"
	"github.com/contre95/tonegarden/src/music"
)

// ErrNoUndo means there is no undo log to apply.
var ErrNoUndo = errors.New("no organize batch to undo")

// Service plans and applies library re-organizations, and can roll the
// last batch back.
type Service struct {
	library music.Library
	mover   *files.Mover
	config  *config.Manager
	logPath string
}

// NewService creates a new organize service. logPath is where the undo
// log of the last batch lives.
func NewService(library music.Library, mover *files.Mover, cfg *config.Manager, logPath string) *Service {
	return &Service{
		library: library,
		mover:   mover,
		config:  cfg,
		logPath: logPath,
	}
}

// PreviewAll plans every track of the library against the pattern.
// Empty pattern or destRoot fall back to the configured values. Tracks
// already at their destination are left out.
func (s *Service) PreviewAll(ctx context.Context, pattern, destRoot string) ([]Preview, error) {
	pattern, destRoot = s.resolve(pattern, destRoot)

	tracks, err := s.library.GetAllTracksWithMetadata(ctx)
	if err != nil {
		return nil, err
	}

	asciiFold := s.config.Get().Organize.AsciiFold
	previews := make([]Preview, 0, len(tracks))
	for _, track := range tracks {
		preview := Plan(track, pattern, destRoot, asciiFold)
		if preview.Destination == preview.Source {
			continue
		}
		previews = append(previews, preview)
	}
	return previews, nil
}

// MoveError is one failed move of a batch.
type MoveError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// ExecuteResult summarizes one applied batch.
type ExecuteResult struct {
	BatchID string      `json:"batch_id"`
	Moved   int         `json:"moved"`
	Errors  []MoveError `json:"errors,omitempty"`
}

// Execute applies previews in order. A failed move is recorded and the
// batch continues; every successful move lands in the undo log, which
// is serialized once at the end.
func (s *Service) Execute(ctx context.Context, previews []Preview) (*ExecuteResult, error) {
	log := newUndoLog()
	result := &ExecuteResult{BatchID: log.BatchID}

	for _, preview := range previews {
		if err := s.mover.Move(preview.Source, preview.Destination); err != nil {
			slog.Warn("organize move failed", "source", preview.Source, "error", err)
			result.Errors = append(result.Errors, MoveError{Source: preview.Source, Error: err.Error()})
			continue
		}

		// The file is already at its new home, so the move is recorded
		// for undo even if the index update fails.
		log.Records = append(log.Records, MoveRecord{
			Source:      preview.Source,
			Destination: preview.Destination,
			TrackID:     preview.TrackID,
		})
		if err := s.library.UpdateTrackPath(ctx, preview.TrackID, preview.Destination); err != nil {
			slog.Error("organize index update failed", "track", preview.TrackID, "error", err)
			result.Errors = append(result.Errors, MoveError{Source: preview.Source, Error: err.Error()})
		}
	}

	result.Moved = len(log.Records)
	if len(log.Records) > 0 {
		if err := saveUndoLog(s.logPath, log); err != nil {
			return result, err
		}
	}

	slog.Info("organize batch applied", "batch", log.BatchID, "moved", result.Moved, "errors", len(result.Errors))
	return result, nil
}

// UndoResult summarizes one rollback pass.
type UndoResult struct {
	BatchID  string      `json:"batch_id"`
	Restored int         `json:"restored"`
	Errors   []MoveError `json:"errors,omitempty"`
}

// Undo walks the last batch's records in reverse, moving each file back
// and pruning directories the batch left empty. The log file is removed
// only after a clean pass, so a partial undo can be retried.
func (s *Service) Undo(ctx context.Context) (*UndoResult, error) {
	log, err := loadUndoLog(s.logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoUndo
		}
		return nil, err
	}

	_, destRoot := s.resolve("", "")
	result := &UndoResult{BatchID: log.BatchID}

	for i := len(log.Records) - 1; i >= 0; i-- {
		record := log.Records[i]
		if err := s.mover.Move(record.Destination, record.Source); err != nil {
			slog.Warn("undo move failed", "destination", record.Destination, "error", err)
			result.Errors = append(result.Errors, MoveError{Source: record.Destination, Error: err.Error()})
			continue
		}
		if err := s.mover.RemoveEmptyDirectories(filepath.Dir(record.Destination), destRoot); err != nil {
			slog.Warn("could not prune emptied directories", "dir", filepath.Dir(record.Destination), "error", err)
		}
		if err := s.library.UpdateTrackPath(ctx, record.TrackID, record.Source); err != nil {
			slog.Error("undo index update failed", "track", record.TrackID, "error", err)
			result.Errors = append(result.Errors, MoveError{Source: record.Destination, Error: err.Error()})
			continue
		}
		result.Restored++
	}

	if len(result.Errors) == 0 {
		if err := os.Remove(s.logPath); err != nil && !os.IsNotExist(err) {
			slog.Warn("could not remove undo log", "path", s.logPath, "error", err)
		}
	}

	slog.Info("organize batch undone", "batch", log.BatchID, "restored", result.Restored, "errors", len(result.Errors))
	return result, nil
}

// UndoAvailable reports whether an undo log exists.
func (s *Service) UndoAvailable() bool {
	_, err := os.Stat(s.logPath)
	return err == nil
}

func (s *Service) resolve(pattern, destRoot string) (string, string) {
	cfg := s.config.Get()
	if pattern == "" {
		pattern = cfg.Organize.Pattern
	}
	if destRoot == "" {
		destRoot = cfg.Organize.DestRoot
	}
	if destRoot == "" {
		destRoot = cfg.LibraryPath
	}
	return pattern, destRoot
}
