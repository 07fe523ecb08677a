package musicbrainz

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/contre95/tonegarden/src/music"
)

// toIdentifiedTrack converts a recording response into the domain
// type, picking the preferred release and extracting the recording's
// position on it.
func toIdentifiedTrack(rec recordingResponse) music.IdentifiedTrack {
	track := music.IdentifiedTrack{
		Title:       rec.Title,
		RecordingID: rec.ID,
		Artist:      displayArtist(rec.ArtistCredit),
		Genres:      topGenres(rec.Tags),
	}
	if len(rec.ArtistCredit) > 0 {
		track.ArtistID = rec.ArtistCredit[0].Artist.ID
	}
	if rec.Length > 0 {
		track.Duration = time.Duration(rec.Length) * time.Millisecond
	}

	rel := preferredRelease(rec.Releases)
	if rel == nil {
		return track
	}

	track.Album = rel.Title
	track.ReleaseID = rel.ID
	track.ReleaseGroupID = rel.ReleaseGroup.ID
	track.ReleaseType = music.ReleaseType(rel.ReleaseGroup.PrimaryType)
	track.SecondaryTypes = rel.ReleaseGroup.SecondaryTypes
	track.Year = yearFromDate(rel.Date)

	totalDiscs := len(rel.Media)
	for _, medium := range rel.Media {
		if len(medium.Tracks) == 0 {
			continue
		}
		track.TrackNumber = medium.Tracks[0].Position
		track.TotalTracks = medium.TrackCount
		// Disc numbers carry no information on single-disc releases.
		if totalDiscs > 1 {
			track.DiscNumber = medium.Position
			track.TotalDiscs = totalDiscs
		}
		break
	}

	return track
}

// preferredRelease applies the release-preference rule: an Official
// release whose release group is an Album, then any Official release,
// then the first release. Nil when there are no releases.
func preferredRelease(releases []release) *release {
	if len(releases) == 0 {
		return nil
	}
	for i := range releases {
		if releases[i].Status == "Official" && releases[i].ReleaseGroup.PrimaryType == "Album" {
			return &releases[i]
		}
	}
	for i := range releases {
		if releases[i].Status == "Official" {
			return &releases[i]
		}
	}
	return &releases[0]
}

// displayArtist builds the display name by concatenating credits with
// their join phrases, e.g. "Queen" + " & " + "David Bowie".
func displayArtist(credits []artistCredit) string {
	var b strings.Builder
	for _, credit := range credits {
		b.WriteString(credit.Name)
		b.WriteString(credit.JoinPhrase)
	}
	return b.String()
}

// yearFromDate parses the leading YYYY of a release date string.
// Returns 0 when the date is absent or malformed.
func yearFromDate(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// topGenres keeps the five most voted tags with positive votes and
// title-cases each word.
func topGenres(tags []tagEntry) []string {
	voted := make([]tagEntry, 0, len(tags))
	for _, t := range tags {
		if t.Count > 0 {
			voted = append(voted, t)
		}
	}
	sort.SliceStable(voted, func(i, j int) bool { return voted[i].Count > voted[j].Count })

	if len(voted) > 5 {
		voted = voted[:5]
	}
	genres := make([]string, 0, len(voted))
	for _, t := range voted {
		genres = append(genres, titleCase(t.Name))
	}
	if len(genres) == 0 {
		return nil
	}
	return genres
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
