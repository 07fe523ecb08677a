package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Manager holds the application configuration and provides thread-safe
// access to it. It remembers the raw document it was loaded from so
// unknown keys survive a save.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	path   string
	raw    map[string]any
}

// NewManager creates a new Manager.
func NewManager(config *Config, path string, raw map[string]any) *Manager {
	if raw == nil {
		raw = map[string]any{}
	}
	return &Manager{config: config, path: path, raw: raw}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Update replaces the configuration.
func (m *Manager) Update(config *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldConfig := m.config
	m.config = config

	if oldConfig != nil {
		slog.Debug("configuration updated",
			"library_path_changed", oldConfig.LibraryPath != config.LibraryPath,
			"gardener_changed", oldConfig.Gardener != config.Gardener,
			"enrichment_changed", oldConfig.Enrichment != config.Enrichment,
		)
	}
}

// Save writes the configuration back to its file. The typed config is
// deep-merged over the raw document so keys written by newer versions
// or by hand are preserved, then the result replaces the file through a
// tmp sibling and a rename.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	typedDoc, err := tomlDocument(m.config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	merged := deepMerge(m.raw, typedDoc)

	data, err := toml.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	tmpPath := m.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmpPath, m.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace config: %w", err)
	}

	slog.Info("configuration saved", "path", m.path)
	return nil
}

// tomlDocument round-trips the typed config through TOML into a map so
// it can be merged with the raw document.
func tomlDocument(cfg *Config) (map[string]any, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	doc := map[string]any{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// deepMerge lays overlay over base. Tables merge recursively; every
// other value from the overlay wins. Base keys missing from the
// overlay, which is where unknown keys live, are kept.
func deepMerge(base, overlay map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		overlayTable, overlayOK := v.(map[string]any)
		baseTable, baseOK := merged[k].(map[string]any)
		if overlayOK && baseOK {
			merged[k] = deepMerge(baseTable, overlayTable)
			continue
		}
		merged[k] = v
	}
	return merged
}

// redactedCfg gets a copy of the Config safe to show over the API.
func (m *Manager) redactedCfg() Config {
	cfgCpy := *m.Get()
	if cfgCpy.Enrichment.AcoustIDKey != "" {
		cfgCpy.Enrichment.AcoustIDKey = "<redacted>"
	}
	return cfgCpy
}

// GetJSON returns the current configuration as a JSON string.
func (m *Manager) GetJSON() string {
	jsonBytes, err := json.Marshal(m.redactedCfg())
	if err != nil {
		slog.Error("failed to marshal config to JSON", "error", err)
		return err.Error()
	}
	return string(jsonBytes)
}

// GetTOML returns the current configuration as a TOML string.
func (m *Manager) GetTOML() string {
	tomlBytes, err := toml.Marshal(m.redactedCfg())
	if err != nil {
		slog.Error("failed to marshal config to TOML", "error", err)
		return err.Error()
	}
	return string(tomlBytes)
}
