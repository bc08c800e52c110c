package engine

import (
	"context"
	"testing"
	"time"

	"github.com/lumiador/Workspace-Extension/internal/browser"
	"github.com/lumiador/Workspace-Extension/internal/workspace"
)

func TestDebounceCoalescesBursts(t *testing.T) {
	env := newTestEnv(t)
	win := env.host.OpenWindow(browser.Tab{URL: "https://go.dev"})
	ws, err := env.engine.Create(context.Background(), CreateInput{WindowID: win})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	env.host.AddTab(win, browser.Tab{URL: "https://pkg.go.dev"})
	calls := env.host.TabsCalls
	for i := 0; i < 5; i++ {
		env.engine.OnWindowMutated(win)
	}
	if got := env.host.TabsCalls - calls; got != 0 {
		t.Fatalf("capture ran %d times before the delay elapsed", got)
	}

	env.clock.Advance(testDebounce)
	if got := env.host.TabsCalls - calls; got != 1 {
		t.Errorf("capture ran %d times, want exactly 1", got)
	}

	snap := env.storedSnapshot(t, ws.ID)
	if snap.Version != 2 {
		t.Errorf("version = %d, want 2", snap.Version)
	}
	if len(snap.Tabs) != 2 {
		t.Errorf("snapshot tabs = %d, want 2", len(snap.Tabs))
	}
}

func TestDebounceRearmsOnLaterEvent(t *testing.T) {
	env := newTestEnv(t)
	win := env.host.OpenWindow(browser.Tab{URL: "https://go.dev"})
	if _, err := env.engine.Create(context.Background(), CreateInput{WindowID: win}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	env.host.AddTab(win, browser.Tab{URL: "https://pkg.go.dev"})

	calls := env.host.TabsCalls
	env.engine.OnWindowMutated(win)
	env.clock.Advance(testDebounce / 2)
	env.engine.OnWindowMutated(win) // resets the full delay

	env.clock.Advance(testDebounce / 2)
	if got := env.host.TabsCalls - calls; got != 0 {
		t.Fatalf("capture fired %d times before the rearmed delay elapsed", got)
	}
	env.clock.Advance(testDebounce / 2)
	if got := env.host.TabsCalls - calls; got != 1 {
		t.Errorf("capture ran %d times, want exactly 1", got)
	}
}

func TestCaptureSkipsUnchangedFingerprint(t *testing.T) {
	env := newTestEnv(t)
	win := env.host.OpenWindow(browser.Tab{URL: "https://go.dev"})
	ws, err := env.engine.Create(context.Background(), CreateInput{WindowID: win})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Nothing changed since the initial capture: the fire must not write.
	env.engine.OnWindowMutated(win)
	env.clock.Advance(testDebounce)

	snap := env.storedSnapshot(t, ws.ID)
	if snap.Version != 1 {
		t.Errorf("version = %d, want 1 (no-change capture suppressed)", snap.Version)
	}
}

func TestCaptureRevalidatesBindingAtFireTime(t *testing.T) {
	env := newTestEnv(t)
	win := env.host.OpenWindow(browser.Tab{URL: "https://go.dev"})
	ws, err := env.engine.Create(context.Background(), CreateInput{WindowID: win})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	env.host.AddTab(win, browser.Tab{URL: "https://pkg.go.dev"})

	env.engine.OnWindowMutated(win)
	env.engine.OnWindowRemoved(win)
	env.host.CloseWindow(win)
	env.clock.Advance(testDebounce)

	snap := env.storedSnapshot(t, ws.ID)
	if snap.Version != 1 {
		t.Errorf("version = %d, want 1 (unbound flush must not write)", snap.Version)
	}
}

func TestAutoSaveOffDisablesCapture(t *testing.T) {
	env := newTestEnv(t)
	win := env.host.OpenWindow(browser.Tab{URL: "https://go.dev"})
	if _, err := env.engine.Create(context.Background(), CreateInput{WindowID: win}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	settings := env.engine.Settings()
	settings.AutoSave = false
	if err := env.engine.SaveSettings(context.Background(), settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	env.engine.OnWindowMutated(win)
	if got := env.clock.Pending(); got != 0 {
		t.Errorf("%d timers armed with auto-save off, want 0", got)
	}
}

func TestUnboundWindowMutationIgnored(t *testing.T) {
	env := newTestEnv(t)
	win := env.host.OpenWindow(browser.Tab{URL: "https://go.dev"})

	env.engine.OnWindowMutated(win)
	if got := env.clock.Pending(); got != 0 {
		t.Errorf("%d timers armed for an unbound window, want 0", got)
	}
}

func TestPinnedTabsExcludedByDefault(t *testing.T) {
	env := newTestEnv(t)
	win := env.host.OpenWindow(
		browser.Tab{URL: "https://go.dev", Pinned: true},
		browser.Tab{URL: "https://pkg.go.dev"},
	)

	ws, err := env.engine.Create(context.Background(), CreateInput{WindowID: win})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	snap := env.storedSnapshot(t, ws.ID)
	if len(snap.Tabs) != 1 || snap.Tabs[0].URL != "https://pkg.go.dev" {
		t.Fatalf("snapshot tabs = %+v, want pinned tab excluded", snap.Tabs)
	}

	// Flip the setting and recapture: the pinned tab is now included.
	settings := env.engine.Settings()
	settings.IncludePinnedTabs = true
	if err := env.engine.SaveSettings(context.Background(), settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	env.engine.OnWindowMutated(win)
	env.clock.Advance(testDebounce)

	snap = env.storedSnapshot(t, ws.ID)
	if len(snap.Tabs) != 2 {
		t.Fatalf("snapshot tabs = %d, want 2 after including pinned", len(snap.Tabs))
	}
	if !snap.Tabs[0].Pinned {
		t.Errorf("pinned flag lost: %+v", snap.Tabs[0])
	}
}

func TestCaptureTitlesOff(t *testing.T) {
	env := newTestEnv(t)
	settings := workspace.DefaultSettings()
	settings.CaptureTitles = false
	win := env.host.OpenWindow(browser.Tab{URL: "https://go.dev", Title: "Go"})

	// Settings apply before the create so its initial capture honors them.
	if err := env.engine.SaveSettings(context.Background(), settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	ws, err := env.engine.Create(context.Background(), CreateInput{WindowID: win})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	snap := env.storedSnapshot(t, ws.ID)
	if snap.Tabs[0].Title != "" {
		t.Errorf("title captured despite setting: %q", snap.Tabs[0].Title)
	}
}

func TestCaptureTouchesRegistryEntry(t *testing.T) {
	env := newTestEnv(t)
	win := env.host.OpenWindow(browser.Tab{URL: "https://go.dev"})
	ws, err := env.engine.Create(context.Background(), CreateInput{WindowID: win})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	env.host.AddTab(win, browser.Tab{URL: "https://pkg.go.dev"})
	env.clock.Set(env.clock.Now().Add(time.Minute))
	env.engine.OnWindowMutated(win)
	env.clock.Advance(testDebounce)

	out, _ := env.engine.List(context.Background())
	got := out.Workspaces[0]
	if got.TabCount != 2 {
		t.Errorf("tabCount = %d, want 2", got.TabCount)
	}
	if got.UpdatedAt <= ws.UpdatedAt {
		t.Errorf("updatedAt not refreshed: %d -> %d", ws.UpdatedAt, got.UpdatedAt)
	}
}
