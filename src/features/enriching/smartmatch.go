package enriching

import (
	"strings"

	"github.com/contre95/tonegarden/src/music"
)

// compilationPathHints are path fragments that make a compilation
// release plausible rather than suspicious.
var compilationPathHints = []string{"greatest", "hits", "best", "collection"}

// smartMatchScore starts from the AcoustID confidence and adjusts it
// with evidence from the file's path and existing tags. The result is
// only used to rank candidates against each other, so it is not
// clamped to [0, 1].
func smartMatchScore(id music.Identification, existing *music.ExistingMetadata, path string) float64 {
	score := id.Score
	loweredPath := strings.ToLower(path)

	if album := strings.ToLower(id.Track.Album); album != "" && strings.Contains(loweredPath, album) {
		score += 0.15
	}

	if existing != nil {
		if eitherContains(id.Track.Album, existing.Album) {
			score += 0.20
		}
		if eitherContains(id.Track.Artist, existing.Artist) {
			score += 0.10
		}
	}

	for _, secondary := range id.Track.SecondaryTypes {
		switch strings.ToLower(secondary) {
		case "karaoke":
			score -= 0.25
		case "compilation":
			if containsAny(loweredPath, compilationPathHints) {
				score += 0.10
			} else {
				score -= 0.05
			}
		case "live":
			if !strings.Contains(loweredPath, "live") && !strings.Contains(loweredPath, "concert") {
				score -= 0.10
			}
		case "remix":
			if !strings.Contains(loweredPath, "remix") {
				score -= 0.15
			}
		}
	}

	if id.Track.ReleaseType == music.ReleaseTypeAlbum && len(id.Track.SecondaryTypes) == 0 {
		score += 0.05
	}

	return score
}

// eitherContains reports whether one string contains the other,
// case-insensitively. Both must be non-empty.
func eitherContains(a, b string) bool {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
