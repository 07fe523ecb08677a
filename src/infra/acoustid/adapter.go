package acoustid

import (
	"time"

	"github.com/contre95/tonegarden/src/music"
)

// toIdentifications converts a lookup response to domain
// identifications. Each recording fans out into one identification per
// release group so the smart matcher can rank album evidence; a
// recording without release groups yields a single identification with
// no album fields. An empty result list is not an error.
func toIdentifications(response lookupResponse) ([]music.Identification, error) {
	if response.Status != "ok" {
		msg := "unknown error"
		if response.Error != nil {
			msg = response.Error.Message
		}
		return nil, &music.APIError{Msg: msg}
	}

	var identifications []music.Identification
	for _, result := range response.Results {
		for _, rec := range result.Recordings {
			identifications = append(identifications, recordingToIdentifications(rec, result.Score)...)
		}
	}
	return identifications, nil
}

func recordingToIdentifications(rec recording, score float64) []music.Identification {
	var artistName, artistID string
	if len(rec.Artists) > 0 {
		artistName = rec.Artists[0].Name
		artistID = rec.Artists[0].ID
	}

	base := music.IdentifiedTrack{
		Title:       rec.Title,
		Artist:      artistName,
		ArtistID:    artistID,
		RecordingID: rec.ID,
		Duration:    time.Duration(rec.Duration) * time.Second,
	}

	if len(rec.ReleaseGroups) == 0 {
		return []music.Identification{{Score: score, Track: base, Source: music.SourceAcoustID}}
	}

	identifications := make([]music.Identification, 0, len(rec.ReleaseGroups))
	for _, rg := range rec.ReleaseGroups {
		track := base
		track.Album = rg.Title
		track.ReleaseGroupID = rg.ID
		track.ReleaseType = music.ReleaseType(rg.Type)
		track.SecondaryTypes = rg.SecondaryTypes
		identifications = append(identifications, music.Identification{
			Score:  score,
			Track:  track,
			Source: music.SourceAcoustID,
		})
	}
	return identifications
}

// toMatches converts a lookup response into per-recording matches for
// the verifier, keeping every release group together.
func toMatches(response lookupResponse) ([]music.FingerprintMatch, error) {
	if response.Status != "ok" {
		msg := "unknown error"
		if response.Error != nil {
			msg = response.Error.Message
		}
		return nil, &music.APIError{Msg: msg}
	}

	var matches []music.FingerprintMatch
	for _, result := range response.Results {
		for _, rec := range result.Recordings {
			match := music.FingerprintMatch{
				Score:       result.Score,
				RecordingID: rec.ID,
				Title:       rec.Title,
			}
			if len(rec.Artists) > 0 {
				match.Artist = rec.Artists[0].Name
			}
			for _, rg := range rec.ReleaseGroups {
				match.Releases = append(match.Releases, music.ReleaseInfo{
					ID:             rg.ID,
					Title:          rg.Title,
					ReleaseType:    music.ReleaseType(rg.Type),
					SecondaryTypes: rg.SecondaryTypes,
				})
			}
			if len(match.Releases) > 0 {
				match.BestRelease = &match.Releases[0]
			}
			matches = append(matches, match)
		}
	}
	return matches, nil
}
