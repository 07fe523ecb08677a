package verifying

import (
	"log/slog"

	"github.com/contre95/tonegarden/src/music"
)

// Status is the verifier's overall verdict for one track.
type Status string

const (
	StatusVerified     Status = "verified"
	StatusPartialMatch Status = "partial_match"
	StatusMismatch     Status = "mismatch"
	StatusNoMatch      Status = "no_match"
)

// IssueType names one specific disagreement between the file's tags
// and the fingerprint candidates.
type IssueType string

const (
	IssueTitleMismatch        IssueType = "title_mismatch"
	IssueArtistMismatch       IssueType = "artist_mismatch"
	IssueAlbumMismatch        IssueType = "album_mismatch"
	IssueBetterAlbumAvailable IssueType = "better_album_available"
	IssueRecordingIDMismatch  IssueType = "recording_id_mismatch"
	IssueLowConfidence        IssueType = "low_confidence"
	IssueAmbiguousMatch       IssueType = "ambiguous_match"
)

// Issue is one raised problem. Similarity is set for the mismatch
// kinds, Count for AmbiguousMatch.
type Issue struct {
	Type       IssueType `json:"type"`
	Similarity float64   `json:"similarity,omitempty"`
	Count      int       `json:"count,omitempty"`
}

// IsCritical reports whether this issue alone makes the track a
// mismatch: a title or artist that barely resembles the candidate.
func (i Issue) IsCritical() bool {
	switch i.Type {
	case IssueTitleMismatch, IssueArtistMismatch:
		return i.Similarity < 0.5
	}
	return false
}

// Result is the verifier output for one track.
type Result struct {
	Status       Status                   `json:"status"`
	BestMatch    *music.FingerprintMatch  `json:"best_match,omitempty"`
	Alternatives []music.FingerprintMatch `json:"alternatives,omitempty"`
	Issues       []Issue                  `json:"issues,omitempty"`
}

// Similarity thresholds below which a field counts as mismatched.
const (
	titleThreshold  = 0.8
	artistThreshold = 0.7
	albumThreshold  = 0.7
)

// Verify compares the file's embedded tags against a ranked list of
// fingerprint candidates. The first candidate is taken as the best
// match; the rest are reported as alternatives.
func Verify(existing music.ExistingMetadata, matches []music.FingerprintMatch) Result {
	if len(matches) == 0 {
		return Result{Status: StatusNoMatch}
	}

	best := matches[0]
	result := Result{
		BestMatch:    &best,
		Alternatives: matches[1:],
	}

	if normalize(existing.Title) != "" && best.Title != "" {
		if sim := similarity(existing.Title, best.Title); sim < titleThreshold {
			result.Issues = append(result.Issues, Issue{Type: IssueTitleMismatch, Similarity: sim})
		}
	}
	if normalize(existing.Artist) != "" && best.Artist != "" {
		if sim := similarity(existing.Artist, best.Artist); sim < artistThreshold {
			result.Issues = append(result.Issues, Issue{Type: IssueArtistMismatch, Similarity: sim})
		}
	}

	result.Issues = append(result.Issues, albumIssues(existing, best)...)

	if existing.RecordingID != "" && existing.RecordingID != best.RecordingID {
		result.Issues = append(result.Issues, Issue{Type: IssueRecordingIDMismatch})
	}
	if best.Score < 0.5 {
		result.Issues = append(result.Issues, Issue{Type: IssueLowConfidence})
	}

	confident := 0
	for _, m := range matches {
		if m.Score > 0.8 {
			confident++
		}
	}
	if confident >= 2 {
		result.Issues = append(result.Issues, Issue{Type: IssueAmbiguousMatch, Count: confident})
	}

	result.Status = rollup(result.Issues)
	slog.Debug("verification complete", "status", result.Status, "issues", len(result.Issues))
	return result
}

// albumIssues compares the existing album tag against the best match's
// preferred release, and looks through the other releases of the same
// recording for a clearly better fit.
func albumIssues(existing music.ExistingMetadata, best music.FingerprintMatch) []Issue {
	if normalize(existing.Album) == "" || best.BestRelease == nil {
		return nil
	}

	var issues []Issue
	betterAvailable := false

	albumSim := similarity(existing.Album, best.BestRelease.Title)
	if albumSim < albumThreshold {
		issues = append(issues, Issue{Type: IssueAlbumMismatch, Similarity: albumSim})
		for _, release := range best.Releases {
			if release.ID == best.BestRelease.ID {
				continue
			}
			if similarity(existing.Album, release.Title) >= albumSim+0.2 {
				betterAvailable = true
				break
			}
		}
	}

	if best.BestRelease.ReleaseType == music.ReleaseTypeCompilation {
		for _, release := range best.Releases {
			if release.ID != best.BestRelease.ID && release.ReleaseType == music.ReleaseTypeAlbum {
				betterAvailable = true
				break
			}
		}
	}

	if betterAvailable {
		issues = append(issues, Issue{Type: IssueBetterAlbumAvailable})
	}
	return issues
}

func rollup(issues []Issue) Status {
	if len(issues) == 0 {
		return StatusVerified
	}
	for _, issue := range issues {
		if issue.IsCritical() {
			return StatusMismatch
		}
	}
	return StatusPartialMatch
}
