package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const appDirName = "tonegarden"

// DefaultPath is where the config file lives unless overridden:
// ~/.config/tonegarden/config.toml on Linux and the platform
// equivalent elsewhere.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appDirName, "config.toml")
}

// createDefaultConfig creates a new Config with sensible default values
func createDefaultConfig() *Config {
	musicDir := xdg.UserDirs.Music
	if musicDir == "" {
		musicDir = filepath.Join(xdg.Home, "Music")
	}
	return &Config{
		LibraryPath: musicDir,
		Database: Database{
			Path: filepath.Join(xdg.DataHome, appDirName, "library.db"),
		},
		Logger: Logger{
			Enabled: true,
			Level:   "info",
			Format:  "text",
		},
		Server: Server{
			Port:        3636,
			PrintRoutes: false,
		},
		Enrichment: Enrichment{
			AcoustIDKey:    "",
			MinConfidence:  0.5,
			UseMusicBrainz: true,
			CoverSize:      "medium",
		},
		Gardener: Gardener{
			CheckIntervalSeconds: 30,
			BatchSize:            10,
			TrackDelayMillis:     100,
			Fingerprinting:       false,
		},
		Organize: Organize{
			Pattern:   "{Artist}/{Album}/{TrackNum} {Title}.{ext}",
			DestRoot:  "",
			AsciiFold: false,
		},
	}
}
