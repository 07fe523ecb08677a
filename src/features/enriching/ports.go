package enriching

import (
	"context"

	"github.com/contre95/tonegarden/src/infra/tag"
	"github.com/contre95/tonegarden/src/music"
)

// Fingerprinter computes an audio fingerprint and the file's duration
// in seconds.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, path string) (string, int, error)
}

// Identifier resolves a fingerprint to scored candidates.
type Identifier interface {
	Lookup(ctx context.Context, fingerprint string, duration int) ([]music.Identification, error)
	LookupMatches(ctx context.Context, fingerprint string, duration int) ([]music.FingerprintMatch, error)
}

// MetadataSource fetches the full record for a known recording id.
type MetadataSource interface {
	LookupRecording(ctx context.Context, recordingID string) (*music.IdentifiedTrack, error)
}

// CoverSource fetches front covers by release id.
type CoverSource interface {
	FetchFront(ctx context.Context, releaseID string, size music.CoverSize) (*music.CoverArt, error)
}

// TagReader reads the tags currently embedded in a file.
type TagReader interface {
	ReadExisting(ctx context.Context, path string) (*music.ExistingMetadata, error)
}

// TagWriter persists identified metadata and cover art into a file.
type TagWriter interface {
	Write(ctx context.Context, path string, track music.IdentifiedTrack, opts tag.WriteOptions) (*tag.WriteResult, error)
	PreviewWrite(ctx context.Context, path string, track music.IdentifiedTrack, opts tag.WriteOptions) (*tag.WritePreview, error)
	WriteCoverArt(ctx context.Context, path string, data []byte, mimeType string, onlyIfMissing bool) error
}

// CoverNormalizer prepares fetched artwork for embedding.
type CoverNormalizer interface {
	Normalize(data []byte, declaredMime string) ([]byte, string, error)
}
