package engine

import (
	"context"
	"fmt"

	"github.com/lumiador/Workspace-Extension/internal/browser"
	"github.com/lumiador/Workspace-Extension/internal/errors"
	"github.com/lumiador/Workspace-Extension/internal/store"
	"github.com/lumiador/Workspace-Extension/internal/workspace"
)

// WorkspaceStatus is a registry entry plus its live binding, if any.
type WorkspaceStatus struct {
	workspace.Workspace
	WindowID browser.WindowID `json:"window_id,omitempty"`
	Open     bool             `json:"open"`
}

// ListOutput is the result of List.
type ListOutput struct {
	Workspaces []WorkspaceStatus `json:"workspaces"`
}

// List returns all workspaces in registry order with their bindings.
func (e *Engine) List(ctx context.Context) (*ListOutput, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := &ListOutput{Workspaces: make([]WorkspaceStatus, 0, len(e.registry))}
	for _, ws := range e.registry {
		status := WorkspaceStatus{Workspace: ws}
		if win, bound := e.windowForLocked(ws.ID); bound {
			status.WindowID = win
			status.Open = true
		}
		out.Workspaces = append(out.Workspaces, status)
	}
	return out, nil
}

// CreateInput contains parameters for Create.
type CreateInput struct {
	Name  string // default: generated
	Color string // default: random palette token
	// WindowID, when non-zero, captures that window's tabs as the initial
	// snapshot and binds the window to the new workspace.
	WindowID browser.WindowID
}

// Create creates a workspace. When created from a window, the window is
// bound immediately, before the snapshot write completes, so mutation events
// arriving during creation already target the new workspace. The snapshot is
// always written (version 1), even when empty: a registry entry without a
// snapshot must never be observable.
func (e *Engine) Create(ctx context.Context, input CreateInput) (*workspace.Workspace, error) {
	id, err := workspace.NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	name := workspace.CleanName(input.Name)
	color := input.Color
	if color == "" {
		color = workspace.RandomColor()
	}

	e.mu.Lock()
	if name == "" {
		name = fmt.Sprintf("Workspace %d", len(e.registry)+1)
	}
	e.mu.Unlock()

	now := e.nowMillis()
	ws := workspace.Workspace{
		ID:        id,
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if input.WindowID != 0 {
		e.bind(ctx, input.WindowID, id)
	}

	var tabs []workspace.TabDescriptor
	if input.WindowID != 0 {
		tabs, err = e.enumerate(ctx, input.WindowID)
		if err != nil {
			// The source window vanished between decision and action; fall
			// through to an empty workspace rather than failing the create.
			e.log.Warn("source window gone during create", "workspace", id, "window", input.WindowID, "err", err)
			e.unbind(ctx, input.WindowID)
			tabs = nil
		}
	}
	ws.TabCount = len(tabs)

	if err := e.commitNew(ctx, ws, tabs); err != nil {
		if input.WindowID != 0 {
			e.unbind(ctx, input.WindowID)
		}
		return nil, err
	}

	e.notifyWorkspaces()
	return &ws, nil
}

// CreateDetached creates a workspace from descriptors without touching any
// window. Used by backup import.
func (e *Engine) CreateDetached(ctx context.Context, name, color string, tabs []workspace.TabDescriptor) (*workspace.Workspace, error) {
	id, err := workspace.NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	name = workspace.CleanName(name)
	e.mu.Lock()
	if name == "" {
		name = fmt.Sprintf("Workspace %d", len(e.registry)+1)
	}
	e.mu.Unlock()
	if color == "" {
		color = workspace.RandomColor()
	}

	now := e.nowMillis()
	ws := workspace.Workspace{
		ID:        id,
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
		TabCount:  len(tabs),
	}

	if err := e.commitNew(ctx, ws, tabs); err != nil {
		return nil, err
	}
	e.notifyWorkspaces()
	return &ws, nil
}

// commitNew writes the initial snapshot (version 1) and fingerprint, then
// appends the workspace to the registry. The registry is never committed to
// memory when the persisted write failed.
func (e *Engine) commitNew(ctx context.Context, ws workspace.Workspace, tabs []workspace.TabDescriptor) error {
	snap := workspace.Snapshot{Tabs: tabs, Version: 1}
	if err := e.saveSnapshot(ctx, ws.ID, snap); err != nil {
		return errors.NewStorage(err)
	}
	fp := workspace.Fingerprint(tabs)
	if err := e.store.Set(ctx, store.Synced, fingerprintKey(ws.ID), []byte(fp)); err != nil {
		return errors.NewStorage(err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	next := make([]workspace.Workspace, len(e.registry), len(e.registry)+1)
	copy(next, e.registry)
	next = append(next, ws)
	if err := e.saveRegistryLocked(ctx, next); err != nil {
		return errors.NewStorage(err)
	}
	return nil
}

// Delete removes a workspace, its snapshot material, and any binding.
func (e *Engine) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	idx, ok := e.findLocked(id)
	if !ok {
		e.mu.Unlock()
		return errors.NewNotFound(id)
	}

	next := make([]workspace.Workspace, 0, len(e.registry)-1)
	next = append(next, e.registry[:idx]...)
	next = append(next, e.registry[idx+1:]...)
	if err := e.saveRegistryLocked(ctx, next); err != nil {
		e.mu.Unlock()
		return errors.NewStorage(err)
	}

	if t, ok := e.timers[id]; ok {
		t.Stop()
		delete(e.timers, id)
	}

	win, bound := e.windowForLocked(id)
	if bound {
		delete(e.bindings, win)
		if err := e.saveBindingsLocked(ctx); err != nil {
			e.log.Warn("failed to persist binding removal", "workspace", id, "err", err)
		}
	}
	e.mu.Unlock()

	// Snapshot material is unreachable once the registry entry is gone;
	// removal failures only leak storage, so log and continue.
	if err := e.store.Delete(ctx, store.Synced, snapshotKey(id)); err != nil {
		e.log.Warn("failed to delete snapshot", "workspace", id, "err", err)
	}
	if err := e.store.Delete(ctx, store.Synced, fingerprintKey(id)); err != nil {
		e.log.Warn("failed to delete fingerprint", "workspace", id, "err", err)
	}

	if bound {
		e.notifyBinding(win, "")
	}
	e.notifyWorkspaces()
	return nil
}

// Rename sets a workspace's display name.
func (e *Engine) Rename(ctx context.Context, id, name string) (*workspace.Workspace, error) {
	name = workspace.CleanName(name)
	if name == "" {
		return nil, errors.NewInvalidRequest("name must not be empty")
	}
	return e.update(ctx, id, func(ws *workspace.Workspace) {
		ws.Name = name
	})
}

// TogglePin flips a workspace's pinned flag.
func (e *Engine) TogglePin(ctx context.Context, id string) (*workspace.Workspace, error) {
	return e.update(ctx, id, func(ws *workspace.Workspace) {
		ws.Pinned = !ws.Pinned
	})
}

// SetArchived sets a workspace's archived flag.
func (e *Engine) SetArchived(ctx context.Context, id string, archived bool) (*workspace.Workspace, error) {
	return e.update(ctx, id, func(ws *workspace.Workspace) {
		ws.Archived = archived
	})
}

// update applies fn to a registry entry, bumps updatedAt, and persists.
func (e *Engine) update(ctx context.Context, id string, fn func(*workspace.Workspace)) (*workspace.Workspace, error) {
	e.mu.Lock()
	idx, ok := e.findLocked(id)
	if !ok {
		e.mu.Unlock()
		return nil, errors.NewNotFound(id)
	}

	next := make([]workspace.Workspace, len(e.registry))
	copy(next, e.registry)
	fn(&next[idx])
	next[idx].UpdatedAt = e.nowMillis()

	if err := e.saveRegistryLocked(ctx, next); err != nil {
		e.mu.Unlock()
		return nil, errors.NewStorage(err)
	}
	updated := next[idx]
	e.mu.Unlock()

	e.notifyWorkspaces()
	return &updated, nil
}

// CurrentWorkspace returns the workspace bound to a window, or nil when the
// window is unbound.
func (e *Engine) CurrentWorkspace(window browser.WindowID) *workspace.Workspace {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, ok := e.bindings[window]
	if !ok {
		return nil
	}
	idx, ok := e.findLocked(id)
	if !ok {
		return nil
	}
	ws := e.registry[idx]
	return &ws
}
