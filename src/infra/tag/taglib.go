package tag

import (
	"fmt"
	"strconv"

	"github.com/contre95/tonegarden/src/music"
	"go.senan.xyz/taglib"
)

// applyTaglib covers the containers the dedicated libraries do not:
// Vorbis comments in OGG, MP4 atoms in M4A and RIFF INFO in WAV all go
// through the taglib binding, which resolves the container from the
// file extension.
func (w *Writer) applyTaglib(filePath string, track music.IdentifiedTrack, opts WriteOptions) (*WriteResult, error) {
	current, err := taglib.ReadTags(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags for writing: %w", err)
	}

	result := &WriteResult{}
	pending := map[string][]string{}

	set := func(field, key, value string) {
		if value == "" {
			return
		}
		existing := ""
		if values := current[key]; len(values) > 0 {
			existing = values[0]
		}
		if opts.OnlyFillEmpty && !isPlaceholder(existing) {
			result.FieldsSkipped = append(result.FieldsSkipped, field)
			return
		}
		pending[key] = []string{value}
		result.FieldsUpdated = append(result.FieldsUpdated, field)
	}

	set("title", taglib.Title, track.Title)
	set("artist", taglib.Artist, track.Artist)
	set("album", taglib.Album, track.Album)
	set("album_artist", taglib.AlbumArtist, track.AlbumArtist)
	if len(track.Genres) > 0 {
		set("genre", taglib.Genre, track.Genres[0])
	}
	if track.Year > 0 {
		set("year", taglib.Date, strconv.Itoa(track.Year))
	}
	if track.TrackNumber > 0 {
		set("track_number", taglib.TrackNumber, strconv.Itoa(track.TrackNumber))
	}
	if track.DiscNumber > 0 {
		set("disc_number", taglib.DiscNumber, strconv.Itoa(track.DiscNumber))
	}

	if opts.WriteMusicBrainzIDs {
		set("musicbrainz_recording_id", "MUSICBRAINZ_TRACKID", track.RecordingID)
		set("musicbrainz_artist_id", "MUSICBRAINZ_ARTISTID", track.ArtistID)
		set("musicbrainz_release_id", "MUSICBRAINZ_ALBUMID", track.ReleaseID)
		set("musicbrainz_release_group_id", "MUSICBRAINZ_RELEASEGROUPID", track.ReleaseGroupID)
	}

	if len(pending) == 0 {
		return result, nil
	}
	if err := taglib.WriteTags(filePath, pending, 0); err != nil {
		return nil, fmt.Errorf("failed to write tags: %w", err)
	}
	return result, nil
}
