package tag

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/contre95/tonegarden/src/music"
	"github.com/dhowden/tag"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
	"go.senan.xyz/taglib"
)

// WriteOptions controls which fields a write touches.
type WriteOptions struct {
	// OnlyFillEmpty skips fields whose existing value is non-empty and
	// not one of the "Unknown Title/Artist/Album" placeholders.
	OnlyFillEmpty bool
	// WriteMusicBrainzIDs also writes the MusicBrainz ids into
	// format-appropriate frames.
	WriteMusicBrainzIDs bool
}

// WriteResult names the fields a write updated and the ones it skipped
// because OnlyFillEmpty found an existing value.
type WriteResult struct {
	FieldsUpdated []string
	FieldsSkipped []string
}

// Writer writes tags into audio files: MP3 through id3v2, FLAC through
// go-flac, and OGG, M4A and WAV through the taglib binding. Every
// write goes through an atomic replace: mutations land in a sibling
// temp file which is re-parsed before it replaces the original, so a
// crash at any point leaves either the old file or the new one, never
// a half-written mess.
type Writer struct {
	reader *Reader
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{reader: NewReader()}
}

// Write applies the identified track's fields to the file at path.
func (w *Writer) Write(ctx context.Context, filePath string, track music.IdentifiedTrack, opts WriteOptions) (*WriteResult, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".mp3", ".flac", ".ogg", ".m4a", ".wav":
	default:
		return nil, fmt.Errorf("unsupported format for tag writing: %s", ext)
	}

	tmpPath := stagePath(filePath, ext)
	if err := copyFile(filePath, tmpPath); err != nil {
		return nil, fmt.Errorf("failed to stage tag write: %w", err)
	}

	var result *WriteResult
	var err error
	switch ext {
	case ".mp3":
		result, err = w.applyMP3(tmpPath, track, opts)
	case ".flac":
		result, err = w.applyFLAC(tmpPath, track, opts)
	default:
		result, err = w.applyTaglib(tmpPath, track, opts)
	}
	if err != nil {
		os.Remove(tmpPath)
		return nil, err
	}

	if err := w.replaceAtomically(filePath, tmpPath); err != nil {
		return nil, err
	}
	slog.Info("tags written", "path", filePath, "updated", result.FieldsUpdated, "skipped", result.FieldsSkipped)
	return result, nil
}

// WriteCoverArt embeds a front cover. With onlyIfMissing set, a file
// that already has any front cover is left alone and ErrUnchanged is
// returned. Otherwise existing front covers are removed and the new
// image becomes the only one.
func (w *Writer) WriteCoverArt(ctx context.Context, filePath string, data []byte, mimeType string, onlyIfMissing bool) error {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".mp3", ".flac":
	default:
		return fmt.Errorf("unsupported format for cover art: %s", ext)
	}

	if onlyIfMissing {
		has, err := w.reader.HasFrontCover(ctx, filePath)
		if err != nil {
			return err
		}
		if has {
			return music.ErrUnchanged
		}
	}

	tmpPath := filePath + ".tmp"
	if err := copyFile(filePath, tmpPath); err != nil {
		return fmt.Errorf("failed to stage cover write: %w", err)
	}

	var err error
	switch ext {
	case ".mp3":
		err = embedCoverMP3(tmpPath, data, mimeType)
	case ".flac":
		err = embedCoverFLAC(tmpPath, data, mimeType)
	}
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := w.replaceAtomically(filePath, tmpPath); err != nil {
		return err
	}
	slog.Info("cover art embedded", "path", filePath, "bytes", len(data), "mime", mimeType)
	return nil
}

// replaceAtomically swaps tmpPath into place at filePath:
//
//  1. re-parse tmpPath; on failure delete it and report
//     ErrValidationFailed, leaving the original untouched
//  2. rename filePath to filePath.bak
//  3. rename tmpPath to filePath, restoring the backup on failure
//  4. delete the backup
//
// A failed backup delete is only a warning; the write itself succeeded.
func (w *Writer) replaceAtomically(filePath, tmpPath string) error {
	if err := verifyParses(tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", music.ErrValidationFailed, err)
	}

	bakPath := filePath + ".bak"
	if err := os.Rename(filePath, bakPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move original aside: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		if restoreErr := os.Rename(bakPath, filePath); restoreErr != nil {
			slog.Error("failed to restore backup after rename failure", "path", filePath, "error", restoreErr)
		}
		return fmt.Errorf("failed to replace original: %w", err)
	}

	if err := os.Remove(bakPath); err != nil {
		slog.Warn("failed to delete backup after write", "path", bakPath, "error", err)
	}
	return nil
}

// stagePath returns the sibling temp path mutations land in. Formats
// written through taglib keep their extension so the container stays
// resolvable; the id3v2 and go-flac libraries parse by content and do
// not care.
func stagePath(filePath, ext string) string {
	switch ext {
	case ".ogg", ".m4a", ".wav":
		return strings.TrimSuffix(filePath, ext) + ".tmp" + ext
	default:
		return filePath + ".tmp"
	}
}

// verifyParses re-reads a freshly written file with the tag reader.
// WAV is the one container the reader cannot probe, so it is re-read
// through taglib instead.
func verifyParses(filePath string) error {
	if strings.ToLower(filepath.Ext(filePath)) == ".wav" {
		_, err := taglib.ReadTags(filePath)
		return err
	}
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = tag.ReadFrom(file)
	return err
}

func (w *Writer) applyMP3(filePath string, track music.IdentifiedTrack, opts WriteOptions) (*WriteResult, error) {
	id3, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 for tagging: %w", err)
	}
	defer id3.Close()

	result := &WriteResult{}

	setText := func(field, existing, value string, set func(string)) {
		if value == "" {
			return
		}
		if opts.OnlyFillEmpty && !isPlaceholder(existing) {
			result.FieldsSkipped = append(result.FieldsSkipped, field)
			return
		}
		set(value)
		result.FieldsUpdated = append(result.FieldsUpdated, field)
	}

	setText("title", id3.Title(), track.Title, id3.SetTitle)
	setText("artist", id3.Artist(), track.Artist, id3.SetArtist)
	setText("album", id3.Album(), track.Album, id3.SetAlbum)
	albumArtistID := id3.CommonID("Band/Orchestra/Accompaniment")
	setText("album_artist", id3.GetTextFrame(albumArtistID).Text, track.AlbumArtist, func(v string) {
		id3.AddTextFrame(albumArtistID, id3v2.EncodingUTF8, v)
	})
	if len(track.Genres) > 0 {
		setText("genre", id3.Genre(), track.Genres[0], id3.SetGenre)
	}
	if track.Year > 0 {
		setText("year", id3.Year(), strconv.Itoa(track.Year), id3.SetYear)
	}

	if track.TrackNumber > 0 {
		existing := id3.GetTextFrame(id3.CommonID("Track number/Position in set")).Text
		if opts.OnlyFillEmpty && existing != "" {
			result.FieldsSkipped = append(result.FieldsSkipped, "track_number")
		} else {
			id3.AddTextFrame(id3.CommonID("Track number/Position in set"), id3v2.EncodingUTF8, positionInSet(track.TrackNumber, track.TotalTracks))
			result.FieldsUpdated = append(result.FieldsUpdated, "track_number")
		}
	}
	if track.DiscNumber > 0 {
		existing := id3.GetTextFrame(id3.CommonID("Part of a set")).Text
		if opts.OnlyFillEmpty && existing != "" {
			result.FieldsSkipped = append(result.FieldsSkipped, "disc_number")
		} else {
			id3.AddTextFrame(id3.CommonID("Part of a set"), id3v2.EncodingUTF8, positionInSet(track.DiscNumber, track.TotalDiscs))
			result.FieldsUpdated = append(result.FieldsUpdated, "disc_number")
		}
	}

	if opts.WriteMusicBrainzIDs {
		for _, id := range []struct {
			field, description, value string
		}{
			{"musicbrainz_recording_id", "MusicBrainz Track Id", track.RecordingID},
			{"musicbrainz_artist_id", "MusicBrainz Artist Id", track.ArtistID},
			{"musicbrainz_release_id", "MusicBrainz Album Id", track.ReleaseID},
			{"musicbrainz_release_group_id", "MusicBrainz Release Group Id", track.ReleaseGroupID},
		} {
			if id.value == "" {
				continue
			}
			id3.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
				Encoding:    id3v2.EncodingUTF8,
				Description: id.description,
				Value:       id.value,
			})
			result.FieldsUpdated = append(result.FieldsUpdated, id.field)
		}
	}

	if err := id3.Save(); err != nil {
		return nil, fmt.Errorf("failed to save MP3 tags: %w", err)
	}
	return result, nil
}

func (w *Writer) applyFLAC(filePath string, track music.IdentifiedTrack, opts WriteOptions) (*WriteResult, error) {
	f, err := goflac.ParseFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FLAC for tagging: %w", err)
	}

	comment, commentIndex, err := vorbisCommentBlock(f)
	if err != nil {
		return nil, err
	}

	result := &WriteResult{}

	setField := func(field, vorbisName, value string) {
		if value == "" {
			return
		}
		if opts.OnlyFillEmpty && !isPlaceholder(firstComment(comment, vorbisName)) {
			result.FieldsSkipped = append(result.FieldsSkipped, field)
			return
		}
		setVorbisField(comment, vorbisName, value)
		result.FieldsUpdated = append(result.FieldsUpdated, field)
	}

	setField("title", flacvorbis.FIELD_TITLE, track.Title)
	setField("artist", flacvorbis.FIELD_ARTIST, track.Artist)
	setField("album_artist", "ALBUMARTIST", track.AlbumArtist)
	setField("album", flacvorbis.FIELD_ALBUM, track.Album)
	if len(track.Genres) > 0 {
		setField("genre", flacvorbis.FIELD_GENRE, strings.Join(track.Genres, "; "))
	}
	if track.Year > 0 {
		setField("year", flacvorbis.FIELD_DATE, strconv.Itoa(track.Year))
	}
	if track.TrackNumber > 0 {
		setField("track_number", flacvorbis.FIELD_TRACKNUMBER, strconv.Itoa(track.TrackNumber))
	}
	if track.TotalTracks > 0 {
		setField("total_tracks", "TRACKTOTAL", strconv.Itoa(track.TotalTracks))
	}
	if track.DiscNumber > 0 {
		setField("disc_number", "DISCNUMBER", strconv.Itoa(track.DiscNumber))
	}
	if track.TotalDiscs > 0 {
		setField("total_discs", "DISCTOTAL", strconv.Itoa(track.TotalDiscs))
	}

	if opts.WriteMusicBrainzIDs {
		for _, id := range []struct {
			field, vorbisName, value string
		}{
			{"musicbrainz_recording_id", "MUSICBRAINZ_TRACKID", track.RecordingID},
			{"musicbrainz_artist_id", "MUSICBRAINZ_ARTISTID", track.ArtistID},
			{"musicbrainz_release_id", "MUSICBRAINZ_ALBUMID", track.ReleaseID},
			{"musicbrainz_release_group_id", "MUSICBRAINZ_RELEASEGROUPID", track.ReleaseGroupID},
		} {
			if id.value == "" {
				continue
			}
			setVorbisField(comment, id.vorbisName, id.value)
			result.FieldsUpdated = append(result.FieldsUpdated, id.field)
		}
	}

	commentMeta := comment.Marshal()
	if commentIndex >= 0 {
		f.Meta[commentIndex] = &commentMeta
	} else {
		f.Meta = append(f.Meta, &commentMeta)
	}

	if err := f.Save(filePath); err != nil {
		return nil, fmt.Errorf("failed to save FLAC tags: %w", err)
	}
	return result, nil
}

func embedCoverMP3(filePath string, data []byte, mimeType string) error {
	id3, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open MP3 for cover embedding: %w", err)
	}
	defer id3.Close()

	// Keep non-cover pictures (liner scans, back covers) but drop any
	// existing front cover so exactly one remains.
	pictureID := id3.CommonID("Attached picture")
	var keep []id3v2.PictureFrame
	for _, frame := range id3.GetFrames(pictureID) {
		pic, ok := frame.(id3v2.PictureFrame)
		if !ok || pic.PictureType == id3v2.PTFrontCover {
			continue
		}
		keep = append(keep, pic)
	}
	id3.DeleteFrames(pictureID)
	for _, pic := range keep {
		id3.AddAttachedPicture(pic)
	}

	id3.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    mimeType,
		PictureType: id3v2.PTFrontCover,
		Description: "",
		Picture:     data,
	})

	if err := id3.Save(); err != nil {
		return fmt.Errorf("failed to save MP3 cover: %w", err)
	}
	return nil
}

func embedCoverFLAC(filePath string, data []byte, mimeType string) error {
	f, err := goflac.ParseFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to parse FLAC for cover embedding: %w", err)
	}

	meta := f.Meta[:0]
	for _, block := range f.Meta {
		if block.Type == goflac.Picture {
			pic, err := flacpicture.ParseFromMetaDataBlock(*block)
			if err == nil && pic.PictureType == flacpicture.PictureTypeFrontCover {
				continue
			}
		}
		meta = append(meta, block)
	}
	f.Meta = meta

	pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "", data, mimeType)
	if err != nil {
		return fmt.Errorf("failed to build FLAC picture block: %w", err)
	}
	marshaled := pic.Marshal()
	f.Meta = append(f.Meta, &marshaled)

	if err := f.Save(filePath); err != nil {
		return fmt.Errorf("failed to save FLAC cover: %w", err)
	}
	return nil
}

// vorbisCommentBlock finds the existing Vorbis comment block, or makes
// a fresh one when the file has none. The index is -1 for a fresh block.
func vorbisCommentBlock(f *goflac.File) (*flacvorbis.MetaDataBlockVorbisComment, int, error) {
	for idx, meta := range f.Meta {
		if meta.Type == goflac.VorbisComment {
			comment, err := flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return nil, -1, fmt.Errorf("failed to parse Vorbis comment: %w", err)
			}
			return comment, idx, nil
		}
	}
	return flacvorbis.New(), -1, nil
}

// setVorbisField replaces every existing NAME= comment with one value.
// flacvorbis.Add appends, which would leave duplicate fields behind.
func setVorbisField(comment *flacvorbis.MetaDataBlockVorbisComment, name, value string) {
	prefix := strings.ToUpper(name) + "="
	kept := comment.Comments[:0]
	for _, c := range comment.Comments {
		if !strings.HasPrefix(strings.ToUpper(c), prefix) {
			kept = append(kept, c)
		}
	}
	comment.Comments = kept
	comment.Add(name, value)
}

func firstComment(comment *flacvorbis.MetaDataBlockVorbisComment, name string) string {
	values, err := comment.Get(name)
	if err != nil || len(values) == 0 {
		return ""
	}
	return values[0]
}

// isPlaceholder reports whether an existing tag value counts as empty
// for OnlyFillEmpty purposes.
func isPlaceholder(value string) bool {
	switch strings.TrimSpace(value) {
	case "", "Unknown Title", "Unknown Artist", "Unknown Album":
		return true
	}
	return false
}

// positionInSet formats "4/12" style track and disc numbers, omitting
// the total when it is unknown.
func positionInSet(position, total int) string {
	if total > 0 {
		return fmt.Sprintf("%d/%d", position, total)
	}
	return strconv.Itoa(position)
}

// copyFile copies src to dst, preserving the source's permissions.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
