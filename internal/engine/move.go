package engine

import (
	"context"

	"github.com/lumiador/Workspace-Extension/internal/browser"
	"github.com/lumiador/Workspace-Extension/internal/errors"
	"github.com/lumiador/Workspace-Extension/internal/store"
	"github.com/lumiador/Workspace-Extension/internal/workspace"
)

// MoveTab moves a live tab into a target workspace. When the target is bound
// to a window the tab is relocated there and the debounced capture pipeline
// picks up both windows' new shapes; no snapshot is written here. When the
// target is closed the tab's descriptor is appended to the stored snapshot
// directly and the live tab is closed.
func (e *Engine) MoveTab(ctx context.Context, tab browser.TabID, workspaceID string) error {
	e.mu.Lock()
	_, ok := e.findLocked(workspaceID)
	if !ok {
		e.mu.Unlock()
		return errors.NewNotFound(workspaceID)
	}
	target, bound := e.windowForLocked(workspaceID)
	captureTitles := e.settings.CaptureTitles
	e.mu.Unlock()

	if bound {
		if err := e.host.MoveTab(ctx, tab, target); err != nil {
			return hostErr(err)
		}
		e.OnWindowMutated(target)
		return nil
	}

	live, err := e.findTab(ctx, tab)
	if err != nil {
		return err
	}
	if workspace.IsExcluded(live.URL) {
		return errors.NewInvalidRequest("tab cannot be stored in a closed workspace")
	}

	snap, err := e.loadSnapshot(ctx, workspaceID)
	if err != nil {
		return errors.NewStorage(err)
	}
	next := workspace.Snapshot{
		Tabs:    append(snap.Tabs, workspace.Encode(live, captureTitles)),
		Version: snap.Version + 1,
	}
	if err := e.saveSnapshot(ctx, workspaceID, next); err != nil {
		return errors.NewStorage(err)
	}
	fp := workspace.Fingerprint(next.Tabs)
	if err := e.store.Set(ctx, store.Synced, fingerprintKey(workspaceID), []byte(fp)); err != nil {
		return errors.NewStorage(err)
	}
	e.touch(ctx, workspaceID, len(next.Tabs))

	// The descriptor is durable; losing the close only leaves the live tab
	// behind, which the user can close themselves.
	if err := e.host.RemoveTab(ctx, tab); err != nil {
		e.log.Warn("failed to close moved tab", "tab", tab, "err", err)
	}
	return nil
}

// findTab scans live windows for a tab id.
func (e *Engine) findTab(ctx context.Context, tab browser.TabID) (browser.Tab, error) {
	windows, err := e.host.Windows(ctx)
	if err != nil {
		return browser.Tab{}, hostErr(err)
	}
	for _, w := range windows {
		tabs, err := e.host.Tabs(ctx, w)
		if err != nil {
			continue
		}
		for _, t := range tabs {
			if t.ID == tab {
				return t, nil
			}
		}
	}
	return browser.Tab{}, errors.NewInvalidRequest("tab not found in any live window")
}
