package quality

import (
	"path/filepath"
	"strings"

	"github.com/contre95/tonegarden/src/music"
)

// Input is everything the scorer looks at for one track. Nil pointers
// mean the value is absent, which is scored differently from zero.
type Input struct {
	Title       string
	Artist      string
	Album       string
	Year        *int
	TrackNumber *int
	// Filename is the base name of the file, extension included.
	Filename    string
	RecordingID string
	// Confidence is the best identification confidence seen so far,
	// nil when the track has never been checked.
	Confidence *float64
}

// Assessment is the scorer's verdict.
type Assessment struct {
	Score int
	Flags music.QualityFlags
	Tier  music.QualityTier
}

// genericValues are strings rippers and phones leave behind instead of
// real metadata.
var genericValues = []string{
	"unknown artist",
	"unknown album",
	"various artists",
	"track ",
	"audio track",
	"untitled",
	"new recording",
}

// Assess scores a track's metadata completeness from 100 downward.
// It is a pure function: same input, same verdict.
func Assess(in Input) Assessment {
	score := 100
	var flags music.QualityFlags

	if strings.TrimSpace(in.Artist) == "" {
		score -= 25
		flags |= music.FlagMissingArtist
	}
	if strings.TrimSpace(in.Album) == "" {
		score -= 15
		flags |= music.FlagMissingAlbum
	}
	if in.Year == nil || *in.Year == 0 {
		score -= 5
		flags |= music.FlagMissingYear
	}
	if in.TrackNumber == nil || *in.TrackNumber == 0 {
		score -= 5
		flags |= music.FlagMissingTrackNum
	}

	if titleIsFilename(in.Title, in.Filename) {
		score -= 20
		flags |= music.FlagTitleIsFilename
	}
	if hasGenericMetadata(in.Title, in.Artist, in.Album) {
		score -= 15
		flags |= music.FlagGenericMetadata
	}

	if in.RecordingID == "" {
		score -= 10
		flags |= music.FlagNoMusicBrainzID
	}

	switch {
	case in.Confidence == nil:
		score -= 10
		flags |= music.FlagNeverChecked
	case *in.Confidence < 0.7:
		score -= 10
		flags |= music.FlagLowConfidence
	case *in.Confidence < 0.9:
		score -= 5
		flags |= music.FlagBetterMatchAvailable
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return Assessment{Score: score, Flags: flags, Tier: music.TierForScore(score)}
}

// titleIsFilename reports whether the title was obviously derived from
// the filename: equal to the stem outright, or equal once spaces are
// turned into underscores or dashes.
func titleIsFilename(title, filename string) bool {
	title = strings.ToLower(strings.TrimSpace(title))
	if title == "" || filename == "" {
		return false
	}
	stem := strings.ToLower(strings.TrimSuffix(filename, filepath.Ext(filename)))

	return title == stem ||
		strings.ReplaceAll(title, " ", "_") == stem ||
		strings.ReplaceAll(title, " ", "-") == stem
}

func hasGenericMetadata(values ...string) bool {
	for _, value := range values {
		lowered := strings.ToLower(value)
		for _, generic := range genericValues {
			if strings.Contains(lowered, generic) {
				return true
			}
		}
	}
	return false
}
