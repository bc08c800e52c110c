package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds process-level configuration. Per-user behavior toggles
// (auto-save, pinned-tab capture, window focusing) live in the local store
// partition instead, because they are mutated at runtime by the settings
// surface; this file only configures how the process itself is wired.
type Config struct {
	// StoreDSN selects the durable store backend.
	// Supported schemes: sqlite:<path>, badger:<dir>, memory:.
	// Empty means sqlite at <baseDir>/workspaces.db.
	StoreDSN string `json:"store_dsn,omitempty"`

	// DebounceMillis is the snapshot-capture debounce delay in milliseconds.
	// Bursts of window mutation events within this delay collapse into a
	// single capture. 0 means the default (1500).
	DebounceMillis int `json:"debounce_millis,omitempty"`

	// ListenAddr is the bind address for the websocket bridge
	// (browser-extension host connection and UI event feed).
	// Empty disables the bridge server.
	ListenAddr string `json:"listen_addr,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultDebounce is the capture delay applied when DebounceMillis is unset.
const DefaultDebounce = 1500 * time.Millisecond

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DebounceMillis: int(DefaultDebounce / time.Millisecond),
	}
}

// Debounce returns the configured debounce delay as a duration.
func (c *Config) Debounce() time.Duration {
	if c.DebounceMillis <= 0 {
		return DefaultDebounce
	}
	return time.Duration(c.DebounceMillis) * time.Millisecond
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.workspaced.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.StoreDSN = overlay.StoreDSN
	if result.StoreDSN == "" {
		result.StoreDSN = base.StoreDSN
	}

	result.DebounceMillis = overlay.DebounceMillis
	if result.DebounceMillis == 0 {
		result.DebounceMillis = base.DebounceMillis
	}

	result.ListenAddr = overlay.ListenAddr
	if result.ListenAddr == "" {
		result.ListenAddr = base.ListenAddr
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
