package tag

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/contre95/tonegarden/src/music"
	"github.com/dhowden/tag"
)

// Reader extracts metadata from audio files using the dhowden/tag
// library. It never mutates files.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read parses the file at path and returns its embedded metadata.
func (r *Reader) Read(ctx context.Context, filePath string) (*music.TrackMetadata, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, &music.MetadataError{Path: filePath, Msg: "failed to open file", Err: err}
	}
	defer file.Close()

	tags, err := tag.ReadFrom(file)
	if err != nil {
		return nil, &music.MetadataError{Path: filePath, Msg: "failed to read tags", Err: err}
	}

	trackNumber, _ := tags.Track()
	discNumber, _ := tags.Disc()

	albumArtist := tags.AlbumArtist()
	if albumArtist == "" {
		albumArtist = tags.Artist()
	}

	meta := &music.TrackMetadata{
		Title:       strings.TrimSpace(tags.Title()),
		Artist:      strings.TrimSpace(tags.Artist()),
		AlbumArtist: strings.TrimSpace(albumArtist),
		Album:       strings.TrimSpace(tags.Album()),
		Genre:       tags.Genre(),
		Year:        tags.Year(),
		TrackNumber: trackNumber,
		DiscNumber:  discNumber,
		RecordingID: recordingID(tags),
	}
	meta.Duration = estimateDuration(filePath)
	return meta, nil
}

// ReadExisting returns the subset of tags the verifier compares
// fingerprint candidates against.
func (r *Reader) ReadExisting(ctx context.Context, filePath string) (*music.ExistingMetadata, error) {
	meta, err := r.Read(ctx, filePath)
	if err != nil {
		return nil, err
	}
	return &music.ExistingMetadata{
		Title:       meta.Title,
		Artist:      meta.Artist,
		Album:       meta.Album,
		RecordingID: meta.RecordingID,
	}, nil
}

// HasFrontCover reports whether the file has any embedded picture.
func (r *Reader) HasFrontCover(ctx context.Context, filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, &music.MetadataError{Path: filePath, Msg: "failed to open file", Err: err}
	}
	defer file.Close()

	tags, err := tag.ReadFrom(file)
	if err != nil {
		return false, &music.MetadataError{Path: filePath, Msg: "failed to read tags", Err: err}
	}
	return tags.Picture() != nil, nil
}

// recordingID digs the MusicBrainz recording id out of the raw tags.
// Taggers disagree on where it lives: Vorbis comments use
// MUSICBRAINZ_TRACKID, ID3 uses either a UFID frame owned by
// musicbrainz.org or a TXXX frame described "MusicBrainz Track Id".
func recordingID(tags tag.Metadata) string {
	raw := tags.Raw()
	if raw == nil {
		return ""
	}

	for _, key := range []string{"musicbrainz_trackid", "MUSICBRAINZ_TRACKID"} {
		if value, ok := raw[key].(string); ok && value != "" {
			return strings.TrimSpace(value)
		}
	}

	for _, value := range raw {
		switch v := value.(type) {
		case *tag.UFID:
			if strings.Contains(v.Provider, "musicbrainz") {
				return strings.TrimSpace(string(v.Identifier))
			}
		case *tag.Comm:
			if strings.EqualFold(v.Description, "MusicBrainz Track Id") {
				return strings.TrimSpace(v.Text)
			}
		}
	}
	return ""
}

// estimateDuration guesses the duration of a FLAC file from its size.
// Tag containers do not carry duration and decoding every file during a
// scan is too slow, so a typical FLAC bitrate of 1000 kbps is assumed.
// Other formats report 0 and rely on the fingerprinter's exact value.
func estimateDuration(filePath string) int {
	if strings.ToLower(filepath.Ext(filePath)) != ".flac" {
		return 0
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return 0
	}
	const estimatedBitrateKbps = 1000
	return int(info.Size() * 8 / (estimatedBitrateKbps * 1000))
}
