package engine

import (
	"context"
	"testing"

	"github.com/lumiador/Workspace-Extension/internal/browser"
	"github.com/lumiador/Workspace-Extension/internal/errors"
	"github.com/lumiador/Workspace-Extension/internal/workspace"
)

func TestMoveTabToBoundWorkspace(t *testing.T) {
	env := newTestEnv(t)
	source := env.host.OpenWindow(browser.Tab{URL: "https://go.dev"})
	moving := env.host.AddTab(source, browser.Tab{URL: "https://github.com", Title: "GitHub"})

	targetWin := env.host.OpenWindow(browser.Tab{URL: "https://pkg.go.dev"})
	target, err := env.engine.Create(context.Background(), CreateInput{Name: "Target", WindowID: targetWin})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := env.engine.MoveTab(context.Background(), moving.ID, target.ID); err != nil {
		t.Fatalf("MoveTab failed: %v", err)
	}

	tabs, err := env.host.Tabs(context.Background(), targetWin)
	if err != nil {
		t.Fatalf("Tabs failed: %v", err)
	}
	if len(tabs) != 2 || tabs[1].URL != "https://github.com" {
		t.Errorf("target window tabs = %+v", tabs)
	}

	// No direct snapshot write: the capture pipeline owns it.
	if snap := env.storedSnapshot(t, target.ID); snap.Version != 1 {
		t.Fatalf("version = %d, want 1 before the debounce fires", snap.Version)
	}
	env.clock.Advance(testDebounce)
	snap := env.storedSnapshot(t, target.ID)
	if snap.Version != 2 || len(snap.Tabs) != 2 {
		t.Errorf("snapshot after debounce = %+v, want version 2 with 2 tabs", snap)
	}
}

func TestMoveTabToClosedWorkspace(t *testing.T) {
	env := newTestEnv(t)
	source := env.host.OpenWindow(browser.Tab{URL: "https://go.dev"})
	moving := env.host.AddTab(source, browser.Tab{URL: "https://github.com", Title: "GitHub"})

	target, err := env.engine.CreateDetached(context.Background(), "Closed", "red", []workspace.TabDescriptor{
		{URL: "https://pkg.go.dev"},
	})
	if err != nil {
		t.Fatalf("CreateDetached failed: %v", err)
	}

	if err := env.engine.MoveTab(context.Background(), moving.ID, target.ID); err != nil {
		t.Fatalf("MoveTab failed: %v", err)
	}

	snap := env.storedSnapshot(t, target.ID)
	if snap.Version != 2 {
		t.Errorf("version = %d, want 2", snap.Version)
	}
	if len(snap.Tabs) != 2 || snap.Tabs[1].URL != "https://github.com" {
		t.Errorf("snapshot tabs = %+v", snap.Tabs)
	}

	// The live tab is gone from the source window.
	tabs, err := env.host.Tabs(context.Background(), source)
	if err != nil {
		t.Fatalf("Tabs failed: %v", err)
	}
	for _, tab := range tabs {
		if tab.ID == moving.ID {
			t.Errorf("moved tab still live in source window")
		}
	}

	out, _ := env.engine.List(context.Background())
	if out.Workspaces[0].TabCount != 2 {
		t.Errorf("tabCount = %d, want 2", out.Workspaces[0].TabCount)
	}
}

func TestMoveTabRejectsExcludedURL(t *testing.T) {
	env := newTestEnv(t)
	source := env.host.OpenWindow(browser.Tab{URL: "https://go.dev"})
	internal := env.host.AddTab(source, browser.Tab{URL: "chrome://settings"})

	target, err := env.engine.CreateDetached(context.Background(), "Closed", "", nil)
	if err != nil {
		t.Fatalf("CreateDetached failed: %v", err)
	}

	err = env.engine.MoveTab(context.Background(), internal.ID, target.ID)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("error = %v, want INVALID_REQUEST", err)
	}
	if snap := env.storedSnapshot(t, target.ID); len(snap.Tabs) != 0 {
		t.Errorf("excluded descriptor stored: %+v", snap.Tabs)
	}
}

func TestMoveTabErrors(t *testing.T) {
	env := newTestEnv(t)
	source := env.host.OpenWindow(browser.Tab{URL: "https://go.dev"})
	moving := env.host.AddTab(source, browser.Tab{URL: "https://github.com"})

	if err := env.engine.MoveTab(context.Background(), moving.ID, "missing"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("unknown workspace error = %v, want NOT_FOUND", err)
	}

	target, err := env.engine.CreateDetached(context.Background(), "Closed", "", nil)
	if err != nil {
		t.Fatalf("CreateDetached failed: %v", err)
	}
	if err := env.engine.MoveTab(context.Background(), 424242, target.ID); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("unknown tab error = %v, want INVALID_REQUEST", err)
	}
}
