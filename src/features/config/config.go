package config

import (
	"time"
)

// Config is the full application configuration, stored as TOML in the
// platform config directory.
type Config struct {
	LibraryPath string     `toml:"library_path" json:"library_path" validate:"required"`
	Database    Database   `toml:"database" json:"database"`
	Logger      Logger     `toml:"logger" json:"logger"`
	Server      Server     `toml:"server" json:"server"`
	Enrichment  Enrichment `toml:"enrichment" json:"enrichment"`
	Gardener    Gardener   `toml:"gardener" json:"gardener"`
	Organize    Organize   `toml:"organize" json:"organize"`
}

// Database configures the track index.
type Database struct {
	Path string `toml:"path" json:"path" validate:"required"`
}

// Logger configures log output.
type Logger struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	Level   string `toml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format  string `toml:"format" json:"format" validate:"oneof=text json"`
}

// Server configures the control API.
type Server struct {
	Port        int  `toml:"port" json:"port" validate:"gt=0,lte=65535"`
	PrintRoutes bool `toml:"print_routes" json:"print_routes"`
}

// Enrichment configures the identification pipeline.
type Enrichment struct {
	// AcoustIDKey is the client key for the AcoustID web service. Can
	// also be provided through TONEGARDEN_ACOUSTID_KEY.
	AcoustIDKey    string  `toml:"acoustid_key" json:"-"`
	MinConfidence  float64 `toml:"min_confidence" json:"min_confidence" validate:"gte=0,lte=1"`
	UseMusicBrainz bool    `toml:"use_musicbrainz" json:"use_musicbrainz"`
	// CoverSize is one of small, medium, large, original.
	CoverSize string `toml:"cover_size" json:"cover_size" validate:"oneof=small medium large original"`
}

// Gardener configures the background quality worker.
type Gardener struct {
	CheckIntervalSeconds int  `toml:"check_interval_seconds" json:"check_interval_seconds" validate:"gt=0"`
	BatchSize            int  `toml:"batch_size" json:"batch_size" validate:"gt=0"`
	TrackDelayMillis     int  `toml:"track_delay_ms" json:"track_delay_ms" validate:"gte=0"`
	Fingerprinting       bool `toml:"fingerprinting" json:"fingerprinting"`
}

// Organize configures the file organizer.
type Organize struct {
	Pattern   string `toml:"pattern" json:"pattern" validate:"required"`
	DestRoot  string `toml:"dest_root" json:"dest_root"`
	AsciiFold bool   `toml:"ascii_fold" json:"ascii_fold"`
}

// CheckInterval is the pause between gardener batches.
func (g Gardener) CheckInterval() time.Duration {
	return time.Duration(g.CheckIntervalSeconds) * time.Second
}

// TrackDelay is the pause between tracks within a batch.
func (g Gardener) TrackDelay() time.Duration {
	return time.Duration(g.TrackDelayMillis) * time.Millisecond
}
