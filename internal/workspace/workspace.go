// Package workspace defines the persisted data model: workspace records,
// tab descriptors, versioned snapshots, and user settings, plus the pure
// helpers (exclusion policy, descriptor codec, content fingerprint) that
// snapshot capture is built from.
package workspace

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Workspace is a registry entry: named, persisted, cross-device-synchronized
// grouping of tabs. Metadata only; tab contents live in the Snapshot.
type Workspace struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Pinned    bool   `json:"pinned"`
	Archived  bool   `json:"archived"`
	CreatedAt int64  `json:"created_at"` // epoch millis
	UpdatedAt int64  `json:"updated_at"` // epoch millis
	TabCount  int    `json:"tab_count"`  // denormalized snapshot length
}

// TabDescriptor is the compact persisted record of a live tab. Immutable once
// captured; snapshots replace descriptor sequences wholesale.
type TabDescriptor struct {
	URL    string `json:"url"`
	Title  string `json:"title,omitempty"`
	Pinned bool   `json:"pinned,omitempty"`
}

// Snapshot is the versioned tab set belonging to a workspace. Version starts
// at 1 and strictly increases on every persisted write.
type Snapshot struct {
	Tabs    []TabDescriptor `json:"tabs"`
	Version int64           `json:"version"`
}

// Settings are the local-only behavior toggles read by the engine.
type Settings struct {
	AutoSave            bool `json:"auto_save"`
	IncludePinnedTabs   bool `json:"include_pinned_tabs"`
	FocusExistingWindow bool `json:"focus_existing_window"`
	CaptureTitles       bool `json:"capture_titles"`
}

// DefaultSettings returns the out-of-box settings.
func DefaultSettings() Settings {
	return Settings{
		AutoSave:            true,
		FocusExistingWindow: true,
		CaptureTitles:       true,
	}
}

// Palette is the fixed set of workspace color tokens. Free-form colors are
// also accepted; the palette only feeds the random default.
var Palette = []string{
	"grey", "blue", "red", "yellow", "green", "pink", "purple", "cyan", "orange",
}

// NewID generates a workspace id: a ULID, globally unique across devices.
func NewID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// RandomColor picks a palette token using crypto/rand so concurrent devices
// don't correlate.
func RandomColor() string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(Palette))))
	if err != nil {
		return Palette[0]
	}
	return Palette[n.Int64()]
}

// CleanName trims a display name. Empty after trim means "generate a default".
func CleanName(name string) string {
	return strings.TrimSpace(name)
}
