package musicbrainz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/contre95/tonegarden/src/music"
)

func TestPreferredReleasePrefersOfficialAlbum(t *testing.T) {
	releases := []release{
		{ID: "r-single", Status: "Official", ReleaseGroup: releaseGroup{PrimaryType: "Single"}},
		{ID: "r-album", Status: "Official", ReleaseGroup: releaseGroup{PrimaryType: "Album"}},
	}
	got := preferredRelease(releases)
	if got == nil || got.ID != "r-album" {
		t.Errorf("expected the official Album release, got %+v", got)
	}
}

func TestPreferredReleaseFallsBackToOfficial(t *testing.T) {
	releases := []release{
		{ID: "r-bootleg", Status: "Bootleg", ReleaseGroup: releaseGroup{PrimaryType: "Album"}},
		{ID: "r-official", Status: "Official", ReleaseGroup: releaseGroup{PrimaryType: "Single"}},
	}
	got := preferredRelease(releases)
	if got == nil || got.ID != "r-official" {
		t.Errorf("expected the official release, got %+v", got)
	}
}

func TestPreferredReleaseFallsBackToFirst(t *testing.T) {
	releases := []release{
		{ID: "r-1", Status: "Bootleg"},
		{ID: "r-2", Status: "Promotion"},
	}
	got := preferredRelease(releases)
	if got == nil || got.ID != "r-1" {
		t.Errorf("expected the first release, got %+v", got)
	}
	if preferredRelease(nil) != nil {
		t.Errorf("no releases should give nil")
	}
}

func TestDisplayArtistJoinsWithJoinPhrase(t *testing.T) {
	credits := []artistCredit{
		{Name: "Queen", JoinPhrase: " & "},
		{Name: "David Bowie"},
	}
	if got := displayArtist(credits); got != "Queen & David Bowie" {
		t.Errorf("expected joined credit, got %q", got)
	}
}

func TestYearFromDate(t *testing.T) {
	if got := yearFromDate("1975-11-21"); got != 1975 {
		t.Errorf("expected 1975, got %d", got)
	}
	if got := yearFromDate("1982"); got != 1982 {
		t.Errorf("expected 1982, got %d", got)
	}
	if got := yearFromDate(""); got != 0 {
		t.Errorf("empty date should give 0, got %d", got)
	}
	if got := yearFromDate("??"); got != 0 {
		t.Errorf("malformed date should give 0, got %d", got)
	}
}

func TestTopGenresVotedSortedTitleCased(t *testing.T) {
	tags := []tagEntry{
		{Name: "progressive rock", Count: 7},
		{Name: "rock", Count: 12},
		{Name: "spam tag", Count: 0},
		{Name: "pop", Count: 3},
		{Name: "glam rock", Count: 5},
		{Name: "hard rock", Count: 4},
		{Name: "arena rock", Count: 2},
	}
	got := topGenres(tags)
	want := []string{"Rock", "Progressive Rock", "Glam Rock", "Hard Rock", "Pop"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestToIdentifiedTrackOmitsDiscForSingleDisc(t *testing.T) {
	rec := recordingResponse{
		ID:    "rec-1",
		Title: "Song",
		Releases: []release{{
			ID:     "rel-1",
			Title:  "Album",
			Status: "Official",
			Date:   "1999-05-01",
			ReleaseGroup: releaseGroup{
				ID:          "rg-1",
				PrimaryType: "Album",
			},
			Media: []medium{{
				Position:   1,
				TrackCount: 12,
				Tracks:     []trackInfo{{Position: 4}},
			}},
		}},
	}

	track := toIdentifiedTrack(rec)
	if track.TrackNumber != 4 || track.TotalTracks != 12 {
		t.Errorf("track position lost: %+v", track)
	}
	if track.DiscNumber != 0 || track.TotalDiscs != 0 {
		t.Errorf("disc fields should be omitted for a single-disc release: %+v", track)
	}
	if track.Year != 1999 {
		t.Errorf("expected year 1999, got %d", track.Year)
	}
}

func TestToIdentifiedTrackMultiDisc(t *testing.T) {
	rec := recordingResponse{
		ID: "rec-1",
		Releases: []release{{
			Status:       "Official",
			ReleaseGroup: releaseGroup{PrimaryType: "Album"},
			Media: []medium{
				{Position: 1, TrackCount: 10},
				{Position: 2, TrackCount: 9, Tracks: []trackInfo{{Position: 3}}},
			},
		}},
	}

	track := toIdentifiedTrack(rec)
	if track.DiscNumber != 2 || track.TotalDiscs != 2 {
		t.Errorf("expected disc 2 of 2, got %+v", track)
	}
	if track.TrackNumber != 3 || track.TotalTracks != 9 {
		t.Errorf("expected track 3 of 9, got %+v", track)
	}
}

func TestLookupRecordingStatusMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("request must carry a descriptive User-Agent")
		}
		switch r.URL.Path {
		case "/recording/gone":
			w.WriteHeader(http.StatusNotFound)
		case "/recording/limited":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.Write([]byte(`{"id":"rec-1","title":"Song"}`))
		}
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	ctx := context.Background()

	if _, err := client.LookupRecording(ctx, "gone"); !errors.Is(err, music.ErrNoMatches) {
		t.Errorf("404 should map to ErrNoMatches, got %v", err)
	}
	if _, err := client.LookupRecording(ctx, "limited"); !errors.Is(err, music.ErrRateLimited) {
		t.Errorf("429 should map to ErrRateLimited, got %v", err)
	}
	track, err := client.LookupRecording(ctx, "rec-1")
	if err != nil {
		t.Fatalf("LookupRecording failed: %v", err)
	}
	if track.Title != "Song" {
		t.Errorf("expected title from response, got %+v", track)
	}
}
