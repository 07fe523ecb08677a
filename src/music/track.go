package music

import (
	"fmt"
	"strings"
	"time"
)

// Track is a persisted index row. Paths are absolute and unique.
type Track struct {
	ID           int64
	Path         string
	Title        string
	ArtistID     *int64
	AlbumID      *int64
	Duration     int // seconds
	TrackNumber  *int
	ModifiedAt   *time.Time
	QualityScore *int
	QualityFlags *QualityFlags
	RecordingID  *string
}

// TrackWithMetadata is the presentation row produced by joining tracks
// against artists and albums. Artist and Album are empty when unlinked.
type TrackWithMetadata struct {
	ID           int64
	Path         string
	Title        string
	Artist       string
	Album        string
	Duration     int
	TrackNumber  *int
	Year         *int
	QualityScore *int
	QualityFlags *QualityFlags
	RecordingID  *string
}

// TrackMetadata is what the tag reader extracts from an audio file.
type TrackMetadata struct {
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Genre       string
	Year        int
	TrackNumber int
	DiscNumber  int
	Duration    int // seconds
	RecordingID string
}

// Validate checks the fields the index refuses to store without.
func (t *Track) Validate() error {
	if strings.TrimSpace(t.Path) == "" {
		return fmt.Errorf("track path is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("track title is required")
	}
	return nil
}

// EnsureDefaults fills placeholder values for fields the reader could
// not extract, so downstream code never deals with empty strings.
func (m *TrackMetadata) EnsureDefaults() {
	if strings.TrimSpace(m.Title) == "" {
		m.Title = "Unknown Title"
	}
	if strings.TrimSpace(m.Artist) == "" {
		m.Artist = "Unknown Artist"
	}
	if strings.TrimSpace(m.Album) == "" {
		m.Album = "Unknown Album"
	}
}
