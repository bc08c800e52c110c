package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumiador/Workspace-Extension/internal/browser"
	"github.com/lumiador/Workspace-Extension/internal/errors"
)

// TestFullWorkflow exercises the complete workspace lifecycle:
// create → mutate/capture → close → reopen → move tab → rename →
// pin → archive → delete → open (not found)
func TestFullWorkflow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	win := env.host.OpenWindow(
		browser.Tab{URL: "https://go.dev", Title: "Go"},
		browser.Tab{URL: "https://pkg.go.dev", Title: "Packages"},
	)

	// 1. Create from the open window.
	ws, err := env.engine.Create(ctx, CreateInput{Name: "Research", WindowID: win})
	require.NoError(t, err)
	require.NotEmpty(t, ws.ID)
	require.Equal(t, 2, ws.TabCount)
	id := ws.ID

	// 2. Add a tab and let the debounce fire.
	env.host.AddTab(win, browser.Tab{URL: "https://github.com", Title: "GitHub"})
	env.engine.OnWindowMutated(win)
	env.clock.Advance(testDebounce)

	snap, err := env.engine.Snapshot(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(2), snap.Version)
	require.Len(t, snap.Tabs, 3)

	// 3. Close the window; the binding goes away but the snapshot stays.
	env.host.CloseWindow(win)
	env.engine.OnWindowRemoved(win)
	require.Nil(t, env.engine.CurrentWorkspace(win))

	// 4. Reopen: a fresh window gets all three tabs back.
	reopened, err := env.engine.Open(ctx, id)
	require.NoError(t, err)
	require.NotEqual(t, win, reopened)
	tabs, err := env.host.Tabs(ctx, reopened)
	require.NoError(t, err)
	require.Len(t, tabs, 3)
	current := env.engine.CurrentWorkspace(reopened)
	require.NotNil(t, current)
	require.Equal(t, id, current.ID)

	// 5. Move a stray tab from another window into the bound workspace.
	other := env.host.OpenWindow(browser.Tab{URL: "https://news.ycombinator.com"})
	strays, err := env.host.Tabs(ctx, other)
	require.NoError(t, err)
	require.NoError(t, env.engine.MoveTab(ctx, strays[0].ID, id))
	env.clock.Advance(testDebounce)

	snap, err = env.engine.Snapshot(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(3), snap.Version)
	require.Len(t, snap.Tabs, 4)

	// 6. Rename, pin, archive.
	renamed, err := env.engine.Rename(ctx, id, "Deep Research")
	require.NoError(t, err)
	require.Equal(t, "Deep Research", renamed.Name)

	pinned, err := env.engine.TogglePin(ctx, id)
	require.NoError(t, err)
	require.True(t, pinned.Pinned)

	archived, err := env.engine.SetArchived(ctx, id, true)
	require.NoError(t, err)
	require.True(t, archived.Archived)

	// 7. List reflects every change and the live binding.
	listed, err := env.engine.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed.Workspaces, 1)
	require.Equal(t, "Deep Research", listed.Workspaces[0].Name)
	require.True(t, listed.Workspaces[0].Open)
	require.Equal(t, reopened, listed.Workspaces[0].WindowID)

	// 8. Delete: registry entry, snapshot, and binding all go.
	require.NoError(t, env.engine.Delete(ctx, id))
	require.Nil(t, env.engine.CurrentWorkspace(reopened))

	_, err = env.engine.Snapshot(ctx, id)
	var engErr *errors.EngineError
	require.ErrorAs(t, err, &engErr)
	require.Equal(t, errors.ErrNotFound, engErr.Code)

	_, err = env.engine.Open(ctx, id)
	require.ErrorAs(t, err, &engErr)
	require.Equal(t, errors.ErrNotFound, engErr.Code)
}
