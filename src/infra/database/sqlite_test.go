package database

import (
	"context"
	"testing"
	"time"

	"github.com/contre95/tonegarden/src/music"
)

func newTestLibrary(t *testing.T) *SqliteLibrary {
	t.Helper()
	db, err := NewSqliteLibrary(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsertTrackInsertsAndUpdatesInPlace(t *testing.T) {
	db := newTestLibrary(t)
	ctx := context.Background()

	artistID, err := db.GetOrCreateArtist(ctx, "Queen")
	if err != nil {
		t.Fatalf("GetOrCreateArtist failed: %v", err)
	}
	albumID, err := db.GetOrCreateAlbum(ctx, "A Night at the Opera", &artistID)
	if err != nil {
		t.Fatalf("GetOrCreateAlbum failed: %v", err)
	}

	meta := &music.TrackMetadata{Title: "Bohemian Rhapsody", Duration: 354, TrackNumber: 11}
	id1, err := db.UpsertTrack(ctx, meta, "/music/queen/11.mp3", &artistID, &albumID)
	if err != nil {
		t.Fatalf("UpsertTrack insert failed: %v", err)
	}

	meta.Title = "Bohemian Rhapsody (Remastered)"
	id2, err := db.UpsertTrack(ctx, meta, "/music/queen/11.mp3", &artistID, &albumID)
	if err != nil {
		t.Fatalf("UpsertTrack update failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("upsert on the same path should keep the row id, got %d then %d", id1, id2)
	}

	track, err := db.GetTrack(ctx, id1)
	if err != nil {
		t.Fatalf("GetTrack failed: %v", err)
	}
	if track.Title != "Bohemian Rhapsody (Remastered)" {
		t.Errorf("expected updated title, got %q", track.Title)
	}
}

func TestGetOrCreateArtistDeduplicates(t *testing.T) {
	db := newTestLibrary(t)
	ctx := context.Background()

	id1, err := db.GetOrCreateArtist(ctx, "Daft Punk")
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	id2, err := db.GetOrCreateArtist(ctx, "Daft Punk")
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("same name should return the same id, got %d and %d", id1, id2)
	}
}

func TestGetOrCreateAlbumDistinguishesArtists(t *testing.T) {
	db := newTestLibrary(t)
	ctx := context.Background()

	a1, _ := db.GetOrCreateArtist(ctx, "Artist One")
	a2, _ := db.GetOrCreateArtist(ctx, "Artist Two")

	al1, err := db.GetOrCreateAlbum(ctx, "Greatest Hits", &a1)
	if err != nil {
		t.Fatalf("album for artist one failed: %v", err)
	}
	al2, err := db.GetOrCreateAlbum(ctx, "Greatest Hits", &a2)
	if err != nil {
		t.Fatalf("album for artist two failed: %v", err)
	}
	if al1 == al2 {
		t.Errorf("same title under different artists should be distinct albums")
	}

	al3, err := db.GetOrCreateAlbum(ctx, "Greatest Hits", &a1)
	if err != nil {
		t.Fatalf("repeat lookup failed: %v", err)
	}
	if al1 != al3 {
		t.Errorf("repeat lookup should deduplicate, got %d and %d", al1, al3)
	}
}

func TestBatchUpdateTrackPathsIsAtomic(t *testing.T) {
	db := newTestLibrary(t)
	ctx := context.Background()

	meta := &music.TrackMetadata{Title: "One"}
	id1, _ := db.UpsertTrack(ctx, meta, "/old/one.mp3", nil, nil)
	meta2 := &music.TrackMetadata{Title: "Two"}
	id2, _ := db.UpsertTrack(ctx, meta2, "/old/two.mp3", nil, nil)

	updated, err := db.BatchUpdateTrackPaths(ctx, []music.PathUpdate{
		{TrackID: id1, NewPath: "/new/one.mp3"},
		{TrackID: id2, NewPath: "/new/two.mp3"},
		{TrackID: 9999, NewPath: "/new/ghost.mp3"}, // no such row
	})
	if err != nil {
		t.Fatalf("BatchUpdateTrackPaths failed: %v", err)
	}
	if updated != 2 {
		t.Errorf("expected 2 rows updated, got %d", updated)
	}

	track, _ := db.GetTrack(ctx, id1)
	if track.Path != "/new/one.mp3" {
		t.Errorf("expected new path, got %q", track.Path)
	}
}

func TestGetTracksNeedingQualityCheck(t *testing.T) {
	db := newTestLibrary(t)
	ctx := context.Background()

	for _, p := range []string{"/m/a.mp3", "/m/b.mp3", "/m/c.mp3"} {
		meta := &music.TrackMetadata{Title: p}
		if _, err := db.UpsertTrack(ctx, meta, p, nil, nil); err != nil {
			t.Fatalf("UpsertTrack failed: %v", err)
		}
	}

	pending, err := db.GetTracksNeedingQualityCheck(ctx, 10)
	if err != nil {
		t.Fatalf("GetTracksNeedingQualityCheck failed: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 unchecked tracks, got %d", len(pending))
	}

	if err := db.UpdateTrackQuality(ctx, pending[0].ID, 85, music.FlagMissingYear); err != nil {
		t.Fatalf("UpdateTrackQuality failed: %v", err)
	}

	pending, err = db.GetTracksNeedingQualityCheck(ctx, 10)
	if err != nil {
		t.Fatalf("second GetTracksNeedingQualityCheck failed: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("scored track should drop out of the pending set, got %d", len(pending))
	}
}

func TestUpdateTrackQualityPersistsFlags(t *testing.T) {
	db := newTestLibrary(t)
	ctx := context.Background()

	meta := &music.TrackMetadata{Title: "Flagged"}
	id, _ := db.UpsertTrack(ctx, meta, "/m/flagged.mp3", nil, nil)

	flags := music.FlagMissingArtist | music.FlagPossiblyMislabeled | music.FlagMultiAlbum
	if err := db.UpdateTrackQuality(ctx, id, 40, flags); err != nil {
		t.Fatalf("UpdateTrackQuality failed: %v", err)
	}

	track, _ := db.GetTrack(ctx, id)
	if track.QualityScore == nil || *track.QualityScore != 40 {
		t.Fatalf("expected score 40, got %v", track.QualityScore)
	}
	if track.QualityFlags == nil || *track.QualityFlags != flags {
		t.Fatalf("expected flags %b, got %v", flags, track.QualityFlags)
	}
	if !track.QualityFlags.HasAny(music.FlagNeedsReview) {
		t.Errorf("mislabeled flag should roll up into needs-review")
	}
}

func TestDeleteTrackByPath(t *testing.T) {
	db := newTestLibrary(t)
	ctx := context.Background()

	meta := &music.TrackMetadata{Title: "Gone"}
	db.UpsertTrack(ctx, meta, "/m/gone.mp3", nil, nil)

	if err := db.DeleteTrackByPath(ctx, "/m/gone.mp3"); err != nil {
		t.Fatalf("DeleteTrackByPath failed: %v", err)
	}
	track, err := db.GetTrackByPath(ctx, "/m/gone.mp3")
	if err != nil {
		t.Fatalf("GetTrackByPath failed: %v", err)
	}
	if track != nil {
		t.Errorf("expected track gone, got %+v", track)
	}

	// Deleting a missing row is not an error.
	if err := db.DeleteTrackByPath(ctx, "/m/never-existed.mp3"); err != nil {
		t.Errorf("deleting a missing row should not fail: %v", err)
	}
}

func TestFileHealthRoundTripAndInvalidate(t *testing.T) {
	db := newTestLibrary(t)
	ctx := context.Background()

	conf := 0.93
	record := &music.FileHealth{
		Path:        "/m/ok.flac",
		Status:      music.HealthOK,
		Fingerprint: "AQADtEmi...",
		Confidence:  &conf,
		RecordingID: "b1a9c0e9",
		FileSize:    1 << 20,
		ContentHash: "deadbeef",
		CheckedAt:   time.Now(),
	}
	if err := db.UpsertFileHealth(ctx, record); err != nil {
		t.Fatalf("UpsertFileHealth failed: %v", err)
	}

	got, err := db.GetFileHealth(ctx, "/m/ok.flac")
	if err != nil {
		t.Fatalf("GetFileHealth failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a record")
	}
	if got.Status != music.HealthOK || got.Confidence == nil || *got.Confidence != conf {
		t.Errorf("round trip lost fields: %+v", got)
	}

	if err := db.InvalidateFileHealth(ctx, "/m/ok.flac"); err != nil {
		t.Fatalf("InvalidateFileHealth failed: %v", err)
	}
	got, _ = db.GetFileHealth(ctx, "/m/ok.flac")
	if got != nil {
		t.Errorf("expected record removed after invalidation")
	}
}

func TestListFileHealthFiltersByStatus(t *testing.T) {
	db := newTestLibrary(t)
	ctx := context.Background()

	db.UpsertFileHealth(ctx, &music.FileHealth{Path: "/m/1.mp3", Status: music.HealthError, ErrorKind: music.HealthErrDecode, CheckedAt: time.Now()})
	db.UpsertFileHealth(ctx, &music.FileHealth{Path: "/m/2.mp3", Status: music.HealthNoMatch, CheckedAt: time.Now()})

	errored, err := db.ListFileHealth(ctx, music.HealthError)
	if err != nil {
		t.Fatalf("ListFileHealth failed: %v", err)
	}
	if len(errored) != 1 || errored[0].ErrorKind != music.HealthErrDecode {
		t.Errorf("expected one decode_error record, got %+v", errored)
	}

	all, err := db.ListFileHealth(ctx, "")
	if err != nil {
		t.Fatalf("ListFileHealth all failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 records, got %d", len(all))
	}
}

func TestUpdateTrackMtimeKeepsSubsecondPrecision(t *testing.T) {
	db := newTestLibrary(t)
	ctx := context.Background()

	meta := &music.TrackMetadata{Title: "Song"}
	if _, err := db.UpsertTrack(ctx, meta, "/m/song.mp3", nil, nil); err != nil {
		t.Fatalf("UpsertTrack failed: %v", err)
	}

	mtime := time.Date(2026, 3, 14, 9, 26, 53, 123456789, time.UTC)
	if err := db.UpdateTrackMtime(ctx, "/m/song.mp3", mtime); err != nil {
		t.Fatalf("UpdateTrackMtime failed: %v", err)
	}

	known, err := db.GetTrackPathsWithMtime(ctx)
	if err != nil {
		t.Fatalf("GetTrackPathsWithMtime failed: %v", err)
	}
	stored := known["/m/song.mp3"]
	if stored == nil {
		t.Fatal("mtime not stored")
	}
	// The scanner skips unchanged files by comparing the stored value
	// with the filesystem's nanosecond ModTime; any rounding here makes
	// every rescan re-read the whole library.
	if !stored.Equal(mtime) {
		t.Errorf("mtime lost precision: stored %v, want %v", stored, mtime)
	}
}
