package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Load reads a TOML file from the given path and returns a new Manager.
// A missing file produces the default configuration, written to disk so
// the user has something to edit. Keys the current version does not
// know are kept in the raw document and survive every save.
func Load(path string) (*Manager, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Info("config file not found, creating default configuration", "path", path)
		cfg := createDefaultConfig()
		applyEnvOverrides(cfg)

		manager := NewManager(cfg, path, map[string]any{})
		if err := manager.Save(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		if err := manager.EnsureDirectories(); err != nil {
			return nil, err
		}
		return manager, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Parse twice: once into the typed struct, once into a raw map that
	// keeps keys this version knows nothing about.
	cfg := createDefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	raw := map[string]any{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	manager := NewManager(cfg, path, raw)
	if err := manager.EnsureDirectories(); err != nil {
		return nil, err
	}
	return manager, nil
}

// applyEnvOverrides lets secrets come from the environment instead of
// the config file.
func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("TONEGARDEN_ACOUSTID_KEY"); key != "" {
		cfg.Enrichment.AcoustIDKey = key
	}
}

// EnsureDirectories creates the directories the configured paths need.
func (m *Manager) EnsureDirectories() error {
	cfg := m.Get()

	if err := os.MkdirAll(cfg.LibraryPath, 0755); err != nil {
		return fmt.Errorf("failed to create library directory %s: %w", cfg.LibraryPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	slog.Info("required directories created/verified", "library", cfg.LibraryPath, "database", cfg.Database.Path)
	return nil
}
