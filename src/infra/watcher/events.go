package watcher

import (
	"time"
)

// FileEventType represents the type of file system event
type FileEventType string

const (
	FileCreated  FileEventType = "created"
	FileModified FileEventType = "modified"
	FileRemoved  FileEventType = "removed"
)

// FileEvent represents a change to one audio file under the watch root
type FileEvent struct {
	Path      string
	EventType FileEventType
	Timestamp time.Time
}
