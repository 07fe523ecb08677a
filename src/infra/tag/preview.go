package tag

import (
	"context"
	"strconv"

	"github.com/contre95/tonegarden/src/music"
)

// FieldChange is one pending tag edit shown to the user before a write.
type FieldChange struct {
	Field        string `json:"field"`
	CurrentValue string `json:"current_value"`
	NewValue     string `json:"new_value"`
}

// WritePreview lists the changes a Write call would make.
type WritePreview struct {
	Changes []FieldChange `json:"changes"`
}

// PreviewWrite computes what Write would change without touching the
// file. The same OnlyFillEmpty rule applies, so a preview followed by a
// write with identical options never surprises.
func (w *Writer) PreviewWrite(ctx context.Context, filePath string, track music.IdentifiedTrack, opts WriteOptions) (*WritePreview, error) {
	current, err := w.reader.Read(ctx, filePath)
	if err != nil {
		return nil, err
	}

	preview := &WritePreview{}
	addChange := func(field, currentValue, newValue string) {
		if newValue == "" || newValue == currentValue {
			return
		}
		if opts.OnlyFillEmpty && !isPlaceholder(currentValue) {
			return
		}
		preview.Changes = append(preview.Changes, FieldChange{
			Field:        field,
			CurrentValue: currentValue,
			NewValue:     newValue,
		})
	}

	addChange("title", current.Title, track.Title)
	addChange("artist", current.Artist, track.Artist)
	addChange("album", current.Album, track.Album)
	if len(track.Genres) > 0 {
		addChange("genre", current.Genre, track.Genres[0])
	}
	if track.Year > 0 {
		addChange("year", nonZero(current.Year), strconv.Itoa(track.Year))
	}
	if track.TrackNumber > 0 {
		addChange("track_number", nonZero(current.TrackNumber), strconv.Itoa(track.TrackNumber))
	}
	if track.DiscNumber > 0 {
		addChange("disc_number", nonZero(current.DiscNumber), strconv.Itoa(track.DiscNumber))
	}
	return preview, nil
}

func nonZero(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
