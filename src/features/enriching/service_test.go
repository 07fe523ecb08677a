package enriching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/contre95/tonegarden/src/features/config"
	"github.com/contre95/tonegarden/src/infra/tag"
	"github.com/contre95/tonegarden/src/music"
)

// MockFingerprinter returns a canned fingerprint.
type MockFingerprinter struct {
	err error
}

func (m *MockFingerprinter) Fingerprint(ctx context.Context, path string) (string, int, error) {
	if m.err != nil {
		return "", 0, m.err
	}
	return "FINGERPRINT", 355, nil
}

// MockIdentifier returns canned candidates.
type MockIdentifier struct {
	candidates []music.Identification
	matches    []music.FingerprintMatch
	err        error
}

func (m *MockIdentifier) Lookup(ctx context.Context, fingerprint string, duration int) ([]music.Identification, error) {
	return m.candidates, m.err
}

func (m *MockIdentifier) LookupMatches(ctx context.Context, fingerprint string, duration int) ([]music.FingerprintMatch, error) {
	return m.matches, m.err
}

// MockMetadataSource records lookups and returns a canned track.
type MockMetadataSource struct {
	track   *music.IdentifiedTrack
	err     error
	lookups int
}

func (m *MockMetadataSource) LookupRecording(ctx context.Context, recordingID string) (*music.IdentifiedTrack, error) {
	m.lookups++
	if m.err != nil {
		return nil, m.err
	}
	if m.track == nil {
		return &music.IdentifiedTrack{}, nil
	}
	return m.track, nil
}

// MockCoverSource records the requested size.
type MockCoverSource struct {
	requestedSize music.CoverSize
}

func (m *MockCoverSource) FetchFront(ctx context.Context, releaseID string, size music.CoverSize) (*music.CoverArt, error) {
	m.requestedSize = size
	return &music.CoverArt{Data: []byte("img"), MimeType: "image/jpeg"}, nil
}

// MockTagReader returns canned existing tags.
type MockTagReader struct {
	existing *music.ExistingMetadata
	err      error
}

func (m *MockTagReader) ReadExisting(ctx context.Context, path string) (*music.ExistingMetadata, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.existing, nil
}

// MockTagWriter records writes instead of touching files.
type MockTagWriter struct {
	writes    int
	covers    int
	lastTrack music.IdentifiedTrack
	lastOpts  tag.WriteOptions
	writeErr  error
	coverErr  error
}

func (m *MockTagWriter) Write(ctx context.Context, path string, track music.IdentifiedTrack, opts tag.WriteOptions) (*tag.WriteResult, error) {
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	m.writes++
	m.lastTrack = track
	m.lastOpts = opts
	return &tag.WriteResult{FieldsUpdated: []string{"title", "artist"}}, nil
}

func (m *MockTagWriter) PreviewWrite(ctx context.Context, path string, track music.IdentifiedTrack, opts tag.WriteOptions) (*tag.WritePreview, error) {
	return &tag.WritePreview{Changes: []tag.FieldChange{
		{Field: "title", CurrentValue: "", NewValue: track.Title},
	}}, nil
}

func (m *MockTagWriter) WriteCoverArt(ctx context.Context, path string, data []byte, mimeType string, onlyIfMissing bool) error {
	if m.coverErr != nil {
		return m.coverErr
	}
	m.covers++
	return nil
}

// MockNormalizer passes image bytes through untouched.
type MockNormalizer struct{}

func (m *MockNormalizer) Normalize(data []byte, declaredMime string) ([]byte, string, error) {
	return data, declaredMime, nil
}

func testConfig(t *testing.T, mutate func(*config.Config)) *config.Manager {
	t.Helper()
	cfg := &config.Config{
		LibraryPath: t.TempDir(),
		Enrichment: config.Enrichment{
			MinConfidence:  0.5,
			UseMusicBrainz: true,
			CoverSize:      "medium",
		},
	}
	if mutate != nil {
		mutate(cfg)
	}
	return config.NewManager(cfg, "", nil)
}

func newTestService(cfg *config.Manager, identifier *MockIdentifier, metadata *MockMetadataSource, tags *MockTagReader, covers *MockCoverSource) *Service {
	if metadata == nil {
		metadata = &MockMetadataSource{}
	}
	if tags == nil {
		tags = &MockTagReader{existing: &music.ExistingMetadata{}}
	}
	if covers == nil {
		covers = &MockCoverSource{}
	}
	s := NewService(&MockFingerprinter{}, identifier, metadata, covers, tags, &MockTagWriter{}, &MockNormalizer{}, cfg)
	s.sleep = func(time.Duration) {}
	return s
}

func candidate(score float64, album string, releaseType music.ReleaseType, secondary ...string) music.Identification {
	return music.Identification{
		Score:  score,
		Source: music.SourceAcoustID,
		Track: music.IdentifiedTrack{
			Title:          "Song",
			Artist:         "Band",
			Album:          album,
			RecordingID:    "rec-" + album,
			ReleaseType:    releaseType,
			SecondaryTypes: secondary,
		},
	}
}

func TestIdentifyFiltersBelowMinConfidence(t *testing.T) {
	identifier := &MockIdentifier{candidates: []music.Identification{
		candidate(0.3, "Too Weak", music.ReleaseTypeAlbum),
	}}
	service := newTestService(testConfig(t, nil), identifier, nil, nil, nil)

	_, err := service.Identify(context.Background(), "/music/song.mp3")
	if !errors.Is(err, music.ErrNoMatches) {
		t.Errorf("expected ErrNoMatches, got %v", err)
	}
}

// A compilation on a greatest-hits path must beat a higher-confidence
// karaoke match.
func TestIdentifyPrefersPathConsistentCompilationOverKaraoke(t *testing.T) {
	identifier := &MockIdentifier{candidates: []music.Identification{
		candidate(0.95, "Sing Along Vol 3", music.ReleaseTypeAlbum, "Karaoke"),
		candidate(0.90, "Greatest Hits", music.ReleaseTypeCompilation, "Compilation"),
	}}
	service := newTestService(testConfig(t, func(c *config.Config) {
		c.Enrichment.UseMusicBrainz = false
	}), identifier, nil, nil, nil)

	got, err := service.Identify(context.Background(), "/music/Queen/Greatest Hits/song.mp3")
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if got.Track.Album != "Greatest Hits" {
		t.Errorf("expected the compilation to win, got %q", got.Track.Album)
	}
	// Path and release-type adjustments decide the ordering, but the
	// winner keeps its raw AcoustID confidence.
	if got.Score != 0.90 {
		t.Errorf("expected the winner's raw confidence 0.90, got %v", got.Score)
	}
}

// Smart-match penalties must not leak into the returned score: a
// candidate that cleared the confidence floor stays above it even when
// its ranking value was pushed below.
func TestIdentifyReturnsRawConfidenceAfterPenalties(t *testing.T) {
	identifier := &MockIdentifier{candidates: []music.Identification{
		candidate(0.55, "Sing Along Vol 3", music.ReleaseTypeAlbum, "Karaoke"),
	}}
	service := newTestService(testConfig(t, func(c *config.Config) {
		c.Enrichment.UseMusicBrainz = false
	}), identifier, nil, nil, nil)

	got, err := service.Identify(context.Background(), "/music/song.mp3")
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if got.Score != 0.55 {
		t.Errorf("expected the raw confidence 0.55, got %v", got.Score)
	}
	if got.Score < 0.5 {
		t.Errorf("returned score %v fell below the configured floor", got.Score)
	}
}

func TestIdentifyMergesMusicBrainzWithoutOverwriting(t *testing.T) {
	identifier := &MockIdentifier{candidates: []music.Identification{
		candidate(0.9, "AcoustID Album", music.ReleaseTypeAlbum),
	}}
	metadata := &MockMetadataSource{track: &music.IdentifiedTrack{
		Album: "MusicBrainz Album",
		Year:  1975,
	}}
	service := newTestService(testConfig(t, nil), identifier, metadata, nil, nil)

	got, err := service.Identify(context.Background(), "/music/song.mp3")
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if metadata.lookups != 1 {
		t.Errorf("expected one MusicBrainz lookup, got %d", metadata.lookups)
	}
	if got.Track.Album != "AcoustID Album" {
		t.Errorf("first writer must win, got %q", got.Track.Album)
	}
	if got.Track.Year != 1975 {
		t.Errorf("absent field should be filled from MusicBrainz, got %d", got.Track.Year)
	}
}

func TestIdentifySurvivesMusicBrainzFailure(t *testing.T) {
	identifier := &MockIdentifier{candidates: []music.Identification{
		candidate(0.9, "Album", music.ReleaseTypeAlbum),
	}}
	metadata := &MockMetadataSource{err: music.ErrRateLimited}
	service := newTestService(testConfig(t, nil), identifier, metadata, nil, nil)

	got, err := service.Identify(context.Background(), "/music/song.mp3")
	if err != nil {
		t.Fatalf("a MusicBrainz failure must not fail the pipeline: %v", err)
	}
	if got.Track.Album != "Album" {
		t.Errorf("AcoustID data should be returned, got %+v", got.Track)
	}
}

func TestIdentifySkipsMusicBrainzWhenDisabled(t *testing.T) {
	identifier := &MockIdentifier{candidates: []music.Identification{
		candidate(0.9, "Album", music.ReleaseTypeAlbum),
	}}
	metadata := &MockMetadataSource{}
	service := newTestService(testConfig(t, func(c *config.Config) {
		c.Enrichment.UseMusicBrainz = false
	}), identifier, metadata, nil, nil)

	if _, err := service.Identify(context.Background(), "/music/song.mp3"); err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if metadata.lookups != 0 {
		t.Errorf("MusicBrainz disabled, expected no lookups, got %d", metadata.lookups)
	}
}

func TestIdentifyBatchContinuesPastFailures(t *testing.T) {
	identifier := &MockIdentifier{candidates: nil}
	service := newTestService(testConfig(t, nil), identifier, nil, nil, nil)

	results := service.IdentifyBatch(context.Background(), []string{"/a.mp3", "/b.mp3"})
	if len(results) != 2 {
		t.Fatalf("expected a result per path, got %d", len(results))
	}
	for _, r := range results {
		if !errors.Is(r.Err, music.ErrNoMatches) {
			t.Errorf("expected ErrNoMatches for %s, got %v", r.Path, r.Err)
		}
	}
}

func TestIdentifyWithAlternativesReturnsMatchesAndTags(t *testing.T) {
	identifier := &MockIdentifier{matches: []music.FingerprintMatch{
		{Score: 0.9, RecordingID: "rec-1", Title: "Song", Artist: "Band"},
	}}
	tags := &MockTagReader{existing: &music.ExistingMetadata{Title: "Song"}}
	service := newTestService(testConfig(t, nil), identifier, nil, tags, nil)

	matches, existing, err := service.IdentifyWithAlternatives(context.Background(), "/music/song.mp3")
	if err != nil {
		t.Fatalf("IdentifyWithAlternatives failed: %v", err)
	}
	if len(matches) != 1 || matches[0].RecordingID != "rec-1" {
		t.Errorf("matches lost: %+v", matches)
	}
	if existing.Title != "Song" {
		t.Errorf("existing tags lost: %+v", existing)
	}
}

func TestCoverForUsesConfiguredSize(t *testing.T) {
	covers := &MockCoverSource{}
	service := newTestService(testConfig(t, func(c *config.Config) {
		c.Enrichment.CoverSize = "large"
	}), &MockIdentifier{}, nil, nil, covers)

	if _, err := service.CoverFor(context.Background(), "rel-1"); err != nil {
		t.Fatalf("CoverFor failed: %v", err)
	}
	if covers.requestedSize != music.CoverSizeLarge {
		t.Errorf("expected large cover, got %q", covers.requestedSize)
	}
}

func TestApplyWritesWinningCandidate(t *testing.T) {
	match := candidate(0.9, "Album", music.ReleaseTypeAlbum)
	match.Track.ReleaseID = "rel-1"
	identifier := &MockIdentifier{candidates: []music.Identification{match}}
	writer := &MockTagWriter{}
	service := newTestService(testConfig(t, func(c *config.Config) {
		c.Enrichment.UseMusicBrainz = false
	}), identifier, nil, nil, nil)
	service.writer = writer

	result, err := service.Apply(context.Background(), "/music/song.mp3", ApplyOptions{
		OnlyFillEmpty: true,
		EmbedCover:    true,
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if writer.writes != 1 {
		t.Fatalf("expected one tag write, got %d", writer.writes)
	}
	if !writer.lastOpts.OnlyFillEmpty {
		t.Error("OnlyFillEmpty should reach the writer")
	}
	if writer.lastTrack.Album != "Album" {
		t.Errorf("winning candidate should be written, got %q", writer.lastTrack.Album)
	}
	if writer.covers != 1 || !result.CoverEmbedded {
		t.Errorf("cover should be embedded, writes=%d embedded=%v", writer.covers, result.CoverEmbedded)
	}
	if len(result.FieldsUpdated) == 0 {
		t.Error("updated fields should be reported")
	}
}

func TestApplySucceedsWhenCoverEmbedFails(t *testing.T) {
	match := candidate(0.9, "Album", music.ReleaseTypeAlbum)
	match.Track.ReleaseID = "rel-1"
	identifier := &MockIdentifier{candidates: []music.Identification{match}}
	writer := &MockTagWriter{coverErr: errors.New("no APIC room")}
	service := newTestService(testConfig(t, func(c *config.Config) {
		c.Enrichment.UseMusicBrainz = false
	}), identifier, nil, nil, nil)
	service.writer = writer

	result, err := service.Apply(context.Background(), "/music/song.mp3", ApplyOptions{EmbedCover: true})
	if err != nil {
		t.Fatalf("a cover failure must not fail the apply: %v", err)
	}
	if result.CoverEmbedded {
		t.Error("failed embed should be reported as not embedded")
	}
}

func TestApplySkipsCoverWithoutReleaseID(t *testing.T) {
	identifier := &MockIdentifier{candidates: []music.Identification{
		candidate(0.9, "Album", music.ReleaseTypeAlbum),
	}}
	writer := &MockTagWriter{}
	service := newTestService(testConfig(t, func(c *config.Config) {
		c.Enrichment.UseMusicBrainz = false
	}), identifier, nil, nil, nil)
	service.writer = writer

	result, err := service.Apply(context.Background(), "/music/song.mp3", ApplyOptions{EmbedCover: true})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if writer.covers != 0 || result.CoverEmbedded {
		t.Error("no release id, no cover fetch")
	}
}

func TestPreviewApplyDoesNotWrite(t *testing.T) {
	identifier := &MockIdentifier{candidates: []music.Identification{
		candidate(0.9, "Album", music.ReleaseTypeAlbum),
	}}
	writer := &MockTagWriter{}
	service := newTestService(testConfig(t, func(c *config.Config) {
		c.Enrichment.UseMusicBrainz = false
	}), identifier, nil, nil, nil)
	service.writer = writer

	preview, err := service.PreviewApply(context.Background(), "/music/song.mp3", ApplyOptions{})
	if err != nil {
		t.Fatalf("PreviewApply failed: %v", err)
	}
	if writer.writes != 0 {
		t.Errorf("preview must not write, got %d writes", writer.writes)
	}
	if len(preview.Changes) != 1 || preview.Changes[0].NewValue != "Song" {
		t.Errorf("unexpected preview: %+v", preview.Changes)
	}
}
