package organizing

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// MoveRecord is one completed move, enough to put the file back.
type MoveRecord struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	TrackID     int64  `json:"track_id"`
}

// UndoLog records one organize batch. The file existing at the
// well-known path means an undo is available.
type UndoLog struct {
	BatchID   string       `json:"batch_id"`
	CreatedAt time.Time    `json:"created_at"`
	Records   []MoveRecord `json:"records"`
}

func newUndoLog() *UndoLog {
	return &UndoLog{BatchID: uuid.NewString(), CreatedAt: time.Now()}
}

// DefaultUndoLogPath is where the executor serializes its batch log.
func DefaultUndoLogPath() string {
	return filepath.Join(xdg.DataHome, "tonegarden", "undo.json")
}

// saveUndoLog writes the log under an advisory lock, holding the
// single-writer rule even across processes.
func saveUndoLog(path string, log *UndoLog) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create undo log directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock undo log: %w", err)
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func loadUndoLog(path string) (*UndoLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var log UndoLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("undo log is corrupt: %w", err)
	}
	return &log, nil
}
