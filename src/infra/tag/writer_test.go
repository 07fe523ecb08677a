package tag

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/contre95/tonegarden/src/music"
	"github.com/go-flac/flacvorbis"
	"go.senan.xyz/taglib"
)

func newVorbisComment(t *testing.T, comments ...string) *flacvorbis.MetaDataBlockVorbisComment {
	t.Helper()
	comment := flacvorbis.New()
	comment.Comments = append(comment.Comments, comments...)
	return comment
}

// newTestMP3 creates a file with junk audio bytes and no tag. The
// id3v2 library prepends a tag on save, so this is enough to exercise
// the full write and re-parse cycle.
func newTestMP3(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "track.mp3")
	if err := os.WriteFile(path, bytes.Repeat([]byte{0xff}, 64), 0o644); err != nil {
		t.Fatalf("failed to seed test file: %v", err)
	}
	return path
}

// tagTestMP3 pre-tags the file so the reader has something to find.
func tagTestMP3(t *testing.T, path, title string) {
	t.Helper()
	id3, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("failed to open test file: %v", err)
	}
	id3.SetTitle(title)
	if err := id3.Save(); err != nil {
		t.Fatalf("failed to pre-tag test file: %v", err)
	}
	id3.Close()
}

func assertNoLeftovers(t *testing.T, path string) {
	t.Helper()
	for _, suffix := range []string{".tmp", ".bak"} {
		if _, err := os.Stat(path + suffix); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("leftover %s file after write", suffix)
		}
	}
}

func TestWriteMP3RoundTrip(t *testing.T) {
	path := newTestMP3(t)
	writer := NewWriter()

	track := music.IdentifiedTrack{
		Title:       "Bohemian Rhapsody",
		Artist:      "Queen",
		Album:       "A Night at the Opera",
		TrackNumber: 11,
		TotalTracks: 12,
		Genres:      []string{"Rock"},
	}
	result, err := writer.Write(context.Background(), path, track, WriteOptions{})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if len(result.FieldsUpdated) == 0 {
		t.Errorf("expected updated fields, got %+v", result)
	}
	assertNoLeftovers(t, path)

	meta, err := NewReader().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read after write failed: %v", err)
	}
	if meta.Title != "Bohemian Rhapsody" || meta.Artist != "Queen" || meta.Album != "A Night at the Opera" {
		t.Errorf("tags did not survive the round trip: %+v", meta)
	}
	if meta.TrackNumber != 11 {
		t.Errorf("expected track number 11, got %d", meta.TrackNumber)
	}
}

func TestWriteOnlyFillEmptySkipsTaggedFields(t *testing.T) {
	path := newTestMP3(t)
	tagTestMP3(t, path, "Handwritten Title")
	writer := NewWriter()

	track := music.IdentifiedTrack{Title: "Service Title", Album: "Service Album"}
	result, err := writer.Write(context.Background(), path, track, WriteOptions{OnlyFillEmpty: true})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if !contains(result.FieldsSkipped, "title") {
		t.Errorf("title should be skipped, got %+v", result)
	}
	if !contains(result.FieldsUpdated, "album") {
		t.Errorf("empty album should be filled, got %+v", result)
	}

	meta, err := NewReader().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read after write failed: %v", err)
	}
	if meta.Title != "Handwritten Title" {
		t.Errorf("existing title should survive, got %q", meta.Title)
	}
	if meta.Album != "Service Album" {
		t.Errorf("album should be written, got %q", meta.Album)
	}
}

func TestWritePlaceholderCountsAsEmpty(t *testing.T) {
	path := newTestMP3(t)
	tagTestMP3(t, path, "Unknown Title")
	writer := NewWriter()

	track := music.IdentifiedTrack{Title: "Real Title"}
	result, err := writer.Write(context.Background(), path, track, WriteOptions{OnlyFillEmpty: true})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !contains(result.FieldsUpdated, "title") {
		t.Errorf("placeholder title should be overwritten, got %+v", result)
	}
}

func TestReplaceAtomicallyRejectsUnparseableResult(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "track.mp3")
	if err := os.WriteFile(path, []byte("original audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte("this is not audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := NewWriter().replaceAtomically(path, tmpPath)
	if !errors.Is(err, music.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "original audio" {
		t.Errorf("original must be untouched after validation failure, got %q err %v", data, err)
	}
	assertNoLeftovers(t, path)
}

func TestReplaceAtomicallySwapsValidResult(t *testing.T) {
	path := newTestMP3(t)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, bytes.Repeat([]byte{0xff}, 64), 0o644); err != nil {
		t.Fatal(err)
	}
	tagTestMP3(t, tmpPath, "Staged Title")

	if err := NewWriter().replaceAtomically(path, tmpPath); err != nil {
		t.Fatalf("replaceAtomically failed: %v", err)
	}
	assertNoLeftovers(t, path)

	meta, err := NewReader().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read after swap failed: %v", err)
	}
	if meta.Title != "Staged Title" {
		t.Errorf("expected staged content at original path, got %q", meta.Title)
	}
}

func TestWriteCoverArtOnlyIfMissing(t *testing.T) {
	path := newTestMP3(t)
	tagTestMP3(t, path, "Some Title")
	writer := NewWriter()
	ctx := context.Background()
	cover := []byte{0xff, 0xd8, 0xff, 0xe0, 0x01, 0x02}

	if err := writer.WriteCoverArt(ctx, path, cover, "image/jpeg", true); err != nil {
		t.Fatalf("first cover write failed: %v", err)
	}

	has, err := NewReader().HasFrontCover(ctx, path)
	if err != nil {
		t.Fatalf("HasFrontCover failed: %v", err)
	}
	if !has {
		t.Fatal("expected a front cover after embedding")
	}

	err = writer.WriteCoverArt(ctx, path, cover, "image/jpeg", true)
	if !errors.Is(err, music.ErrUnchanged) {
		t.Errorf("second only-if-missing write should report ErrUnchanged, got %v", err)
	}
	assertNoLeftovers(t, path)
}

func TestWriteUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.aiff")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewWriter().Write(context.Background(), path, music.IdentifiedTrack{Title: "T"}, WriteOptions{}); err == nil {
		t.Error("aiff writing is not supported and must error")
	}
}

// newTestWAV writes a minimal PCM wav: RIFF header, fmt chunk, a short
// run of silence.
func newTestWAV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "track.wav")

	samples := bytes.Repeat([]byte{0x80}, 32)
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(4+24+8+len(samples)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(8000))
	binary.Write(&buf, binary.LittleEndian, uint32(8000))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(8))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(samples)))
	buf.Write(samples)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to seed test file: %v", err)
	}
	return path
}

func TestWriteWAVRoundTrip(t *testing.T) {
	path := newTestWAV(t)

	result, err := NewWriter().Write(context.Background(), path, music.IdentifiedTrack{
		Title:  "Ambient One",
		Artist: "Brian Eno",
		Year:   1978,
	}, WriteOptions{})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if len(result.FieldsUpdated) == 0 {
		t.Error("expected updated fields to be reported")
	}

	tags, err := taglib.ReadTags(path)
	if err != nil {
		t.Fatalf("re-read failed: %v", err)
	}
	if got := tags[taglib.Title]; len(got) == 0 || got[0] != "Ambient One" {
		t.Errorf("title not written: %v", got)
	}
	if got := tags[taglib.Artist]; len(got) == 0 || got[0] != "Brian Eno" {
		t.Errorf("artist not written: %v", got)
	}

	for _, leftover := range []string{
		strings.TrimSuffix(path, ".wav") + ".tmp.wav",
		path + ".bak",
	} {
		if _, err := os.Stat(leftover); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("leftover %s after write", leftover)
		}
	}
}

func TestPreviewWriteRespectsOnlyFillEmpty(t *testing.T) {
	path := newTestMP3(t)
	tagTestMP3(t, path, "Handwritten Title")
	writer := NewWriter()

	track := music.IdentifiedTrack{Title: "Service Title", Artist: "Queen", Year: 1975}
	preview, err := writer.PreviewWrite(context.Background(), path, track, WriteOptions{OnlyFillEmpty: true})
	if err != nil {
		t.Fatalf("PreviewWrite failed: %v", err)
	}

	fields := make([]string, 0, len(preview.Changes))
	for _, change := range preview.Changes {
		fields = append(fields, change.Field)
	}
	if contains(fields, "title") {
		t.Errorf("existing title must not appear in preview, got %v", fields)
	}
	if !contains(fields, "artist") || !contains(fields, "year") {
		t.Errorf("empty artist and year should appear in preview, got %v", fields)
	}
}

func TestPreviewWriteNonAudioFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.mp3")
	if err := os.WriteFile(path, []byte("just text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewWriter().PreviewWrite(context.Background(), path, music.IdentifiedTrack{}, WriteOptions{}); err == nil {
		t.Error("previewing a non-audio file must error")
	}
}

func TestSetVorbisFieldReplacesDuplicates(t *testing.T) {
	comment := newVorbisComment(t, "TITLE=old one", "TITLE=old two", "ARTIST=Queen")
	setVorbisField(comment, "TITLE", "new")

	var titles []string
	for _, c := range comment.Comments {
		if len(c) >= 6 && c[:6] == "TITLE=" {
			titles = append(titles, c)
		}
	}
	if len(titles) != 1 || titles[0] != "TITLE=new" {
		t.Errorf("expected a single replaced TITLE comment, got %v", titles)
	}
	if firstComment(comment, "ARTIST") != "Queen" {
		t.Errorf("unrelated field must survive, got %v", comment.Comments)
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
