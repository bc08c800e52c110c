package engine

import (
	"context"

	"github.com/lumiador/Workspace-Extension/internal/browser"
	"github.com/lumiador/Workspace-Extension/internal/errors"
	"github.com/lumiador/Workspace-Extension/internal/workspace"
)

// Open materializes a workspace in a window. If the workspace is already
// bound to a live window and focus-existing is enabled, that window is
// focused instead of opening a duplicate. Otherwise a new window is created:
// the first URL opens with the window, the rest are appended, and pinned
// flags are restored positionally by re-querying the created tabs.
func (e *Engine) Open(ctx context.Context, id string) (browser.WindowID, error) {
	e.mu.Lock()
	_, ok := e.findLocked(id)
	if !ok {
		e.mu.Unlock()
		return 0, errors.NewNotFound(id)
	}
	win, bound := e.windowForLocked(id)
	focusExisting := e.settings.FocusExistingWindow
	e.mu.Unlock()

	if bound && focusExisting {
		if err := e.host.FocusWindow(ctx, win); err == nil {
			return win, nil
		}
		// The window vanished between decision and action. Drop the stale
		// binding and fall through to opening a fresh window.
		e.log.Warn("focus target gone, reopening", "workspace", id, "window", win)
		e.unbind(ctx, win)
	}

	snap, err := e.loadSnapshot(ctx, id)
	if err != nil {
		return 0, errors.NewStorage(err)
	}

	var first string
	if len(snap.Tabs) > 0 {
		first = snap.Tabs[0].URL
	}
	newWin, err := e.host.CreateWindow(ctx, first)
	if err != nil {
		return 0, hostErr(err)
	}

	hasPinned := len(snap.Tabs) > 0 && snap.Tabs[0].Pinned
	for _, d := range snap.Tabs[min(1, len(snap.Tabs)):] {
		if _, err := e.host.CreateTab(ctx, newWin, d.URL); err != nil {
			e.log.Warn("failed to restore tab", "workspace", id, "url", d.URL, "err", err)
		}
		if d.Pinned {
			hasPinned = true
		}
	}

	if hasPinned {
		e.restorePins(ctx, newWin, snap.Tabs)
	}

	e.bind(ctx, newWin, id)
	return newWin, nil
}

// restorePins re-queries the created tabs and applies pinned flags by
// position. Restore failures are environment races, not errors.
func (e *Engine) restorePins(ctx context.Context, window browser.WindowID, tabs []workspace.TabDescriptor) {
	live, err := e.host.Tabs(ctx, window)
	if err != nil {
		e.log.Warn("failed to re-query tabs for pin restore", "window", window, "err", err)
		return
	}
	for i, d := range tabs {
		if !d.Pinned || i >= len(live) {
			continue
		}
		if err := e.host.PinTab(ctx, live[i].ID, true); err != nil {
			e.log.Warn("failed to restore pinned flag", "window", window, "index", i, "err", err)
		}
	}
}

// OnWindowRemoved handles a window-removal notification: the binding is
// deleted and the now-unbound state propagated outward. Any pending debounce
// timer for the workspace no-ops at fire time because the binding is gone.
func (e *Engine) OnWindowRemoved(window browser.WindowID) {
	e.unbind(context.Background(), window)
}

// bind associates a window with a workspace, replacing any other window
// previously bound to it: a workspace is bound to at most one window on a
// device.
func (e *Engine) bind(ctx context.Context, window browser.WindowID, id string) {
	var displaced []browser.WindowID

	e.mu.Lock()
	for w, ws := range e.bindings {
		if ws == id && w != window {
			delete(e.bindings, w)
			displaced = append(displaced, w)
		}
	}
	e.bindings[window] = id
	if err := e.saveBindingsLocked(ctx); err != nil {
		e.log.Warn("failed to persist bindings", "err", err)
	}
	e.mu.Unlock()

	for _, w := range displaced {
		e.notifyBinding(w, "")
	}
	e.notifyBinding(window, id)
}

// unbind removes a window's binding, if any.
func (e *Engine) unbind(ctx context.Context, window browser.WindowID) {
	e.mu.Lock()
	_, bound := e.bindings[window]
	if bound {
		delete(e.bindings, window)
		if err := e.saveBindingsLocked(ctx); err != nil {
			e.log.Warn("failed to persist bindings", "err", err)
		}
	}
	e.mu.Unlock()

	if bound {
		e.notifyBinding(window, "")
	}
}

// reap drops bindings whose window ids are no longer live. Recovers from an
// unclean shutdown where close events were never delivered. When the host
// cannot enumerate windows (no browser attached yet), bindings are kept:
// reaping blind would throw away state a reconnecting browser still has.
func (e *Engine) reap(ctx context.Context) {
	windows, err := e.host.Windows(ctx)
	if err != nil {
		e.log.Warn("skipping binding reap", "err", err)
		return
	}
	live := make(map[browser.WindowID]bool, len(windows))
	for _, w := range windows {
		live[w] = true
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	changed := false
	for w := range e.bindings {
		if !live[w] {
			delete(e.bindings, w)
			changed = true
		}
	}
	if !changed {
		return
	}
	if err := e.saveBindingsLocked(ctx); err != nil {
		e.log.Warn("failed to persist reaped bindings", "err", err)
	}
	e.log.Info("reaped stale window bindings")
}
