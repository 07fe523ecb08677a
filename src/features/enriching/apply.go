package enriching

import (
	"context"
	"log/slog"

	"github.com/contre95/tonegarden/src/infra/tag"
	"github.com/contre95/tonegarden/src/music"
)

// ApplyOptions controls how an identification is written back into the
// file.
type ApplyOptions struct {
	OnlyFillEmpty bool
	WriteIDs      bool
	EmbedCover    bool
}

// ApplyResult reports what Apply changed.
type ApplyResult struct {
	Identification *music.Identification `json:"identification"`
	FieldsUpdated  []string              `json:"fields_updated"`
	FieldsSkipped  []string              `json:"fields_skipped"`
	CoverEmbedded  bool                  `json:"cover_embedded"`
}

// ApplyPreview shows what Apply would change without touching the file.
type ApplyPreview struct {
	Identification *music.Identification `json:"identification"`
	Changes        []tag.FieldChange     `json:"changes"`
}

// Apply identifies the file and writes the winning candidate's tags
// into it. Cover embedding is best effort: a failed fetch or embed is
// logged but does not fail the apply, since the tags already landed.
func (s *Service) Apply(ctx context.Context, path string, opts ApplyOptions) (*ApplyResult, error) {
	id, err := s.Identify(ctx, path)
	if err != nil {
		return nil, err
	}

	written, err := s.writer.Write(ctx, path, id.Track, tag.WriteOptions{
		OnlyFillEmpty:       opts.OnlyFillEmpty,
		WriteMusicBrainzIDs: opts.WriteIDs,
	})
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{
		Identification: id,
		FieldsUpdated:  written.FieldsUpdated,
		FieldsSkipped:  written.FieldsSkipped,
	}

	if opts.EmbedCover && id.Track.ReleaseID != "" {
		result.CoverEmbedded = s.embedCover(ctx, path, id.Track.ReleaseID)
	}
	return result, nil
}

// PreviewApply identifies the file and lists the tag changes an Apply
// with the same options would make.
func (s *Service) PreviewApply(ctx context.Context, path string, opts ApplyOptions) (*ApplyPreview, error) {
	id, err := s.Identify(ctx, path)
	if err != nil {
		return nil, err
	}

	preview, err := s.writer.PreviewWrite(ctx, path, id.Track, tag.WriteOptions{
		OnlyFillEmpty:       opts.OnlyFillEmpty,
		WriteMusicBrainzIDs: opts.WriteIDs,
	})
	if err != nil {
		return nil, err
	}
	return &ApplyPreview{Identification: id, Changes: preview.Changes}, nil
}

func (s *Service) embedCover(ctx context.Context, path, releaseID string) bool {
	cover, err := s.CoverFor(ctx, releaseID)
	if err != nil {
		slog.Warn("cover fetch failed", "path", path, "release", releaseID, "error", err)
		return false
	}

	data, mimeType, err := s.art.Normalize(cover.Data, cover.MimeType)
	if err != nil {
		slog.Warn("cover not embeddable", "path", path, "release", releaseID, "error", err)
		return false
	}

	// Existing embedded art wins; the fetched cover only fills a gap.
	if err := s.writer.WriteCoverArt(ctx, path, data, mimeType, true); err != nil {
		slog.Warn("cover embed failed", "path", path, "error", err)
		return false
	}
	return true
}
