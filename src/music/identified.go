package music

import "time"

// ReleaseType is the MusicBrainz release-group primary type.
type ReleaseType string

const (
	ReleaseTypeAlbum       ReleaseType = "Album"
	ReleaseTypeSingle      ReleaseType = "Single"
	ReleaseTypeEP          ReleaseType = "EP"
	ReleaseTypeCompilation ReleaseType = "Compilation"
	ReleaseTypeLive        ReleaseType = "Live"
	ReleaseTypeRemix       ReleaseType = "Remix"
)

// IdentifiedTrack is the merged enrichment result for one file. Zero
// values mean "unknown"; Merge only ever fills zero fields.
type IdentifiedTrack struct {
	Title          string
	Artist         string
	AlbumArtist    string
	Album          string
	TrackNumber    int
	TotalTracks    int
	DiscNumber     int
	TotalDiscs     int
	Year           int
	Duration       time.Duration
	Genres         []string
	RecordingID    string
	ArtistID       string
	ReleaseID      string
	ReleaseGroupID string
	ReleaseType    ReleaseType
	SecondaryTypes []string
}

// Merge fills absent fields of t from other. First writer wins: fields
// already set on t are never overwritten, which is what lets AcoustID
// data survive a later MusicBrainz pass.
func (t *IdentifiedTrack) Merge(other IdentifiedTrack) {
	if t.Title == "" {
		t.Title = other.Title
	}
	if t.Artist == "" {
		t.Artist = other.Artist
	}
	if t.AlbumArtist == "" {
		t.AlbumArtist = other.AlbumArtist
	}
	if t.Album == "" {
		t.Album = other.Album
	}
	if t.TrackNumber == 0 {
		t.TrackNumber = other.TrackNumber
	}
	if t.TotalTracks == 0 {
		t.TotalTracks = other.TotalTracks
	}
	if t.DiscNumber == 0 {
		t.DiscNumber = other.DiscNumber
	}
	if t.TotalDiscs == 0 {
		t.TotalDiscs = other.TotalDiscs
	}
	if t.Year == 0 {
		t.Year = other.Year
	}
	if t.Duration == 0 {
		t.Duration = other.Duration
	}
	if len(t.Genres) == 0 {
		t.Genres = other.Genres
	}
	if t.RecordingID == "" {
		t.RecordingID = other.RecordingID
	}
	if t.ArtistID == "" {
		t.ArtistID = other.ArtistID
	}
	if t.ReleaseID == "" {
		t.ReleaseID = other.ReleaseID
	}
	if t.ReleaseGroupID == "" {
		t.ReleaseGroupID = other.ReleaseGroupID
	}
	if t.ReleaseType == "" {
		t.ReleaseType = other.ReleaseType
	}
	if len(t.SecondaryTypes) == 0 {
		t.SecondaryTypes = other.SecondaryTypes
	}
}

// Identification is one scored candidate for a file.
type Identification struct {
	Score  float64
	Track  IdentifiedTrack
	Source string
}

// Identification sources.
const (
	SourceAcoustID    = "acoustid"
	SourceMusicBrainz = "musicbrainz"
)
