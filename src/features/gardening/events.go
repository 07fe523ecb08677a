package gardening

import (
	"time"

	"github.com/contre95/tonegarden/src/music"
)

// CommandType enumerates what the gardener can be told to do.
type CommandType string

const (
	CommandProcessTrack CommandType = "process_track"
	CommandProcessBatch CommandType = "process_batch"
	CommandPause        CommandType = "pause"
	CommandResume       CommandType = "resume"
	CommandStop         CommandType = "stop"
)

// Command is one instruction sent to the gardener loop.
type Command struct {
	Type     CommandType
	TrackIDs []int64
}

// EventType enumerates what the gardener reports back.
type EventType string

const (
	EventTrackAssessed EventType = "track_assessed"
	EventBatchComplete EventType = "batch_complete"
	EventStatsUpdated  EventType = "stats_updated"
	EventPaused        EventType = "paused"
	EventResumed       EventType = "resumed"
	EventStopped       EventType = "stopped"
)

// Event is one gardener notification. Only the fields relevant to the
// event type are set.
type Event struct {
	Type      EventType
	TrackID   int64
	Score     int
	Flags     music.QualityFlags
	Processed int
	Remaining int
	Stats     *Stats
}

// Stats accumulates what the gardener has done since start.
type Stats struct {
	Processed    int64     `json:"processed"`
	Verified     int64     `json:"verified"`
	Mismatched   int64     `json:"mismatched"`
	Unidentified int64     `json:"unidentified"`
	Errors       int64     `json:"errors"`
	AverageScore float64   `json:"average_score"`
	LastRun      time.Time `json:"last_run"`

	totalScore int64
}

func (s *Stats) record(score int) {
	s.Processed++
	s.totalScore += int64(score)
	s.AverageScore = float64(s.totalScore) / float64(s.Processed)
	s.LastRun = time.Now()
}
