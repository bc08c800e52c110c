package engine

import (
	"context"

	"github.com/lumiador/Workspace-Extension/internal/browser"
	"github.com/lumiador/Workspace-Extension/internal/store"
	"github.com/lumiador/Workspace-Extension/internal/workspace"
)

// OnWindowMutated handles a window mutation event (tab open, close, move,
// navigate, attach, detach). It arms or re-arms the single-slot debounce
// timer for the window's bound workspace: bursts within the delay collapse
// into exactly one capture. Unbound windows and disabled auto-save no-op.
func (e *Engine) OnWindowMutated(window browser.WindowID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, bound := e.bindings[window]
	if !bound || !e.settings.AutoSave {
		return
	}

	if t, ok := e.timers[id]; ok {
		t.Stop()
	}
	e.timers[id] = e.clock.AfterFunc(e.debounce, func() {
		e.flush(id)
	})
}

// flush runs when a debounce timer fires. The binding is re-resolved at fire
// time: it may have moved to another window, or gone away entirely, since
// the events that armed the timer.
func (e *Engine) flush(id string) {
	e.mu.Lock()
	delete(e.timers, id)
	window, bound := e.windowForLocked(id)
	e.mu.Unlock()

	if !bound {
		return
	}

	if err := e.capture(context.Background(), id, window); err != nil {
		// Recoverable: the next mutation event retries via a fresh
		// debounce cycle.
		e.log.Warn("snapshot capture failed", "workspace", id, "window", window, "err", err)
	}
}

// capture snapshots a window's tabs into the workspace's stored snapshot.
// When the captured sequence fingerprints identically to the stored one, the
// write is skipped entirely; this is what keeps inconsequential events (tab
// focus, duplicate bursts, superseded timers) from amplifying into
// synchronized-partition writes.
func (e *Engine) capture(ctx context.Context, id string, window browser.WindowID) error {
	tabs, err := e.enumerate(ctx, window)
	if err != nil {
		return err
	}

	fp := workspace.Fingerprint(tabs)
	stored, err := e.store.Get(ctx, store.Synced, fingerprintKey(id))
	if err != nil {
		return err
	}
	if stored != nil && string(stored) == fp {
		return nil
	}

	// The tab query and fingerprint read suspend; the binding may have
	// changed underneath. Re-validate before committing.
	e.mu.Lock()
	current, bound := e.windowForLocked(id)
	e.mu.Unlock()
	if !bound || current != window {
		return nil
	}

	snap, err := e.loadSnapshot(ctx, id)
	if err != nil {
		return err
	}
	next := workspace.Snapshot{Tabs: tabs, Version: snap.Version + 1}
	if err := e.saveSnapshot(ctx, id, next); err != nil {
		return err
	}
	if err := e.store.Set(ctx, store.Synced, fingerprintKey(id), []byte(fp)); err != nil {
		return err
	}

	e.touch(ctx, id, len(tabs))
	return nil
}

// enumerate reads a window's live tabs and encodes the eligible ones, in
// host-reported order.
func (e *Engine) enumerate(ctx context.Context, window browser.WindowID) ([]workspace.TabDescriptor, error) {
	e.mu.Lock()
	settings := e.settings
	e.mu.Unlock()

	tabs, err := e.host.Tabs(ctx, window)
	if err != nil {
		return nil, err
	}

	descriptors := make([]workspace.TabDescriptor, 0, len(tabs))
	for _, tab := range tabs {
		if workspace.IsExcluded(tab.URL) {
			continue
		}
		if tab.Pinned && !settings.IncludePinnedTabs {
			continue
		}
		descriptors = append(descriptors, workspace.Encode(tab, settings.CaptureTitles))
	}
	return descriptors, nil
}

// touch refreshes a registry entry's updatedAt and tabCount after a snapshot
// write. Registry persistence failure here is logged, not surfaced: the
// snapshot itself is already durable.
func (e *Engine) touch(ctx context.Context, id string, tabCount int) {
	e.mu.Lock()
	idx, ok := e.findLocked(id)
	if !ok {
		e.mu.Unlock()
		return
	}
	next := make([]workspace.Workspace, len(e.registry))
	copy(next, e.registry)
	next[idx].TabCount = tabCount
	next[idx].UpdatedAt = e.nowMillis()
	err := e.saveRegistryLocked(ctx, next)
	e.mu.Unlock()

	if err != nil {
		e.log.Warn("failed to touch registry entry", "workspace", id, "err", err)
		return
	}
	e.notifyWorkspaces()
}
