package workspace

import (
	"testing"

	"github.com/lumiador/Workspace-Extension/internal/browser"
)

func TestNewIDUniqueAndWellFormed(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewID()
		if err != nil {
			t.Fatalf("NewID failed: %v", err)
		}
		if len(id) != 26 {
			t.Fatalf("len(id) = %d, want 26 (ULID)", len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestRandomColorFromPalette(t *testing.T) {
	valid := make(map[string]bool, len(Palette))
	for _, c := range Palette {
		valid[c] = true
	}
	for i := 0; i < 50; i++ {
		if c := RandomColor(); !valid[c] {
			t.Fatalf("RandomColor returned %q, not in palette", c)
		}
	}
}

func TestEncode(t *testing.T) {
	tab := browser.Tab{URL: "https://a.example", Title: "A", Pinned: true}

	d := Encode(tab, true)
	if d.URL != "https://a.example" || d.Title != "A" || !d.Pinned {
		t.Errorf("Encode with titles = %+v", d)
	}

	d = Encode(tab, false)
	if d.Title != "" {
		t.Errorf("Encode without titles kept title %q", d.Title)
	}
	if d.URL != "https://a.example" || !d.Pinned {
		t.Errorf("Encode without titles dropped url/pinned: %+v", d)
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if !s.AutoSave || !s.FocusExistingWindow || !s.CaptureTitles {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if s.IncludePinnedTabs {
		t.Error("pinned tabs should be excluded by default")
	}
}

func TestCleanName(t *testing.T) {
	if CleanName("  Research  ") != "Research" {
		t.Error("CleanName should trim")
	}
	if CleanName("   ") != "" {
		t.Error("whitespace-only name should clean to empty")
	}
}
