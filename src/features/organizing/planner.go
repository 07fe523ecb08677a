package organizing

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/contre95/tonegarden/src/music"
	"github.com/gosimple/unidecode"
)

// Preview is one planned move, not yet applied.
type Preview struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	TrackID     int64  `json:"track_id"`
}

// pathHostile replaces every character a filesystem might choke on.
// One character in, one character out, so lengths never change.
var pathHostile = strings.NewReplacer(
	"/", "_",
	`\`, "_",
	":", "_",
	"*", "_",
	"?", "_",
	`"`, "_",
	"<", "_",
	">", "_",
	"|", "_",
)

func sanitize(s string) string { return pathHostile.Replace(s) }

// Plan expands the naming pattern for one track. The pattern is literal
// text plus the tokens {Artist}, {Album}, {Title}, {TrackNum} and
// {ext}; path separators in it create directories under destRoot.
func Plan(track music.TrackWithMetadata, pattern, destRoot string, asciiFold bool) Preview {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(track.Path)), ".")
	if ext == "" {
		ext = "mp3"
	}
	trackNum := 0
	if track.TrackNumber != nil {
		trackNum = *track.TrackNumber
	}

	field := func(s string) string {
		if asciiFold {
			s = unidecode.Unidecode(s)
		}
		return sanitize(s)
	}

	expanded := strings.NewReplacer(
		"{Artist}", field(track.Artist),
		"{Album}", field(track.Album),
		"{Title}", field(track.Title),
		"{TrackNum}", fmt.Sprintf("%02d", trackNum),
		"{ext}", ext,
	).Replace(pattern)

	return Preview{
		Source:      track.Path,
		Destination: filepath.Join(destRoot, expanded),
		TrackID:     track.ID,
	}
}
