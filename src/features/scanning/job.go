package scanning

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ScanStatus is the lifecycle state of a scan job.
type ScanStatus string

const (
	ScanStatusRunning   ScanStatus = "running"
	ScanStatusCompleted ScanStatus = "completed"
)

// ErrScanRunning means a scan was requested while one is in flight.
var ErrScanRunning = errors.New("a scan is already running")

// ErrNoScan means no scan has been started yet.
var ErrNoScan = errors.New("no scan has run")

// ScanJob tracks one reconcile run and its progress counts.
type ScanJob struct {
	ID         string     `json:"id"`
	Root       string     `json:"root"`
	Status     ScanStatus `json:"status"`
	Added      int        `json:"added"`
	Updated    int        `json:"updated"`
	Removed    int        `json:"removed"`
	Errors     int        `json:"errors"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// StartScan kicks off a background reconcile of root. Only one scan
// runs at a time. Empty root means the configured library path.
func (s *Service) StartScan(root string) (string, error) {
	if root == "" {
		root = s.config.Get().LibraryPath
	}

	s.mu.Lock()
	if s.job != nil && s.job.Status == ScanStatusRunning {
		s.mu.Unlock()
		return "", ErrScanRunning
	}
	job := &ScanJob{
		ID:        uuid.NewString(),
		Root:      root,
		Status:    ScanStatusRunning,
		StartedAt: time.Now(),
	}
	s.job = job
	s.mu.Unlock()

	go func() {
		for event := range s.Reconcile(context.Background(), root) {
			s.mu.Lock()
			switch event.Type {
			case EventAdded:
				job.Added++
			case EventUpdated:
				job.Updated++
			case EventRemoved:
				job.Removed++
			case EventError:
				job.Errors++
			}
			s.mu.Unlock()
		}
		now := time.Now()
		s.mu.Lock()
		job.Status = ScanStatusCompleted
		job.FinishedAt = &now
		s.mu.Unlock()
	}()

	return job.ID, nil
}

// ScanStatus returns a copy of the latest scan job.
func (s *Service) ScanStatus() (ScanJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return ScanJob{}, ErrNoScan
	}
	return *s.job, nil
}
