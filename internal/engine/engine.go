// Package engine implements the workspace state synchronization engine:
// binding lifecycle, debounced snapshot capture, fingerprint-based change
// suppression, snapshot versioning, and reconciliation of remote deltas.
//
// The engine owns all mutable state (registry, binding table, settings,
// debounce timers) as private fields and is constructed once per process.
// Init loads state from the durable store and reaps stale bindings; every
// dependency (store, host, clock, notifier) is injected, so the engine is
// fully testable against fakes.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lumiador/Workspace-Extension/internal/browser"
	"github.com/lumiador/Workspace-Extension/internal/clock"
	"github.com/lumiador/Workspace-Extension/internal/errors"
	"github.com/lumiador/Workspace-Extension/internal/store"
	"github.com/lumiador/Workspace-Extension/internal/workspace"
)

// Store keys. The registry and per-workspace snapshot material live in the
// synchronized partition; bindings and settings are device-private.
const (
	registryKey = "workspaces"
	bindingsKey = "window_bindings"
	settingsKey = "settings"

	snapshotPrefix    = "tabs:"
	fingerprintPrefix = "hash:"
)

func snapshotKey(id string) string    { return snapshotPrefix + id }
func fingerprintKey(id string) string { return fingerprintPrefix + id }

// Notifier receives push notifications on state change. Implementations must
// not call back into the engine.
type Notifier interface {
	// WorkspacesChanged fires whenever the registry changes, locally or
	// from a remote delta.
	WorkspacesChanged(workspaces []workspace.Workspace)
	// BindingChanged fires when a window's workspace binding changes.
	// workspaceID is empty when the window became unbound.
	BindingChanged(window browser.WindowID, workspaceID string)
}

// Options configures a new Engine.
type Options struct {
	Store    store.Store
	Host     browser.Host
	Clock    clock.Clock   // defaults to the system clock
	Logger   *slog.Logger  // defaults to slog.Default()
	Notifier Notifier      // optional
	Debounce time.Duration // defaults to 1500ms
}

// Engine coordinates windows, the workspace registry, and per-workspace
// snapshots. Safe for concurrent use.
type Engine struct {
	store    store.Store
	host     browser.Host
	clock    clock.Clock
	log      *slog.Logger
	notifier Notifier
	debounce time.Duration

	mu       sync.Mutex
	registry []workspace.Workspace
	bindings map[browser.WindowID]string
	settings workspace.Settings
	timers   map[string]clock.Timer

	unwatch func()
}

// New creates an Engine. Call Init before use.
func New(opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = &clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 1500 * time.Millisecond
	}
	return &Engine{
		store:    opts.Store,
		host:     opts.Host,
		clock:    opts.Clock,
		log:      opts.Logger,
		notifier: opts.Notifier,
		debounce: opts.Debounce,
		bindings: make(map[browser.WindowID]string),
		settings: workspace.DefaultSettings(),
		timers:   make(map[string]clock.Timer),
	}
}

// Init loads registry, bindings, and settings from the store, reaps bindings
// whose windows are no longer live, and subscribes to store change
// notifications. Mid-session errors never require a restart: all of this
// state is rebuilt from the durable store on the next Init regardless.
func (e *Engine) Init(ctx context.Context) error {
	registry, err := e.loadRegistry(ctx)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}

	bindings, err := e.loadBindings(ctx)
	if err != nil {
		return fmt.Errorf("load bindings: %w", err)
	}

	settings, err := e.loadSettings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	e.mu.Lock()
	e.registry = registry
	e.bindings = bindings
	e.settings = settings
	e.mu.Unlock()

	e.reap(ctx)

	e.unwatch = e.store.Watch(e.onStoreChange)
	return nil
}

// Close stops pending debounce timers and unsubscribes from the store.
func (e *Engine) Close() error {
	e.mu.Lock()
	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}
	e.mu.Unlock()

	if e.unwatch != nil {
		e.unwatch()
		e.unwatch = nil
	}
	return nil
}

// Persistence helpers

func (e *Engine) loadRegistry(ctx context.Context) ([]workspace.Workspace, error) {
	data, err := e.store.Get(ctx, store.Synced, registryKey)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var registry []workspace.Workspace
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("corrupt registry: %w", err)
	}
	return registry, nil
}

// saveRegistryLocked persists the given registry and commits it to memory
// only when the write succeeded. Caller holds the lock.
func (e *Engine) saveRegistryLocked(ctx context.Context, registry []workspace.Workspace) error {
	data, err := json.Marshal(registry)
	if err != nil {
		return err
	}
	if err := e.store.Set(ctx, store.Synced, registryKey, data); err != nil {
		return err
	}
	e.registry = registry
	return nil
}

func (e *Engine) loadBindings(ctx context.Context) (map[browser.WindowID]string, error) {
	data, err := e.store.Get(ctx, store.Local, bindingsKey)
	if err != nil {
		return nil, err
	}
	bindings := make(map[browser.WindowID]string)
	if data == nil {
		return bindings, nil
	}
	if err := json.Unmarshal(data, &bindings); err != nil {
		return nil, fmt.Errorf("corrupt binding table: %w", err)
	}
	return bindings, nil
}

// saveBindingsLocked persists the binding table. Caller holds the lock.
func (e *Engine) saveBindingsLocked(ctx context.Context) error {
	data, err := json.Marshal(e.bindings)
	if err != nil {
		return err
	}
	return e.store.Set(ctx, store.Local, bindingsKey, data)
}

func (e *Engine) loadSettings(ctx context.Context) (workspace.Settings, error) {
	data, err := e.store.Get(ctx, store.Local, settingsKey)
	if err != nil {
		return workspace.Settings{}, err
	}
	if data == nil {
		return workspace.DefaultSettings(), nil
	}
	var s workspace.Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return workspace.Settings{}, fmt.Errorf("corrupt settings: %w", err)
	}
	return s, nil
}

func (e *Engine) loadSnapshot(ctx context.Context, id string) (workspace.Snapshot, error) {
	data, err := e.store.Get(ctx, store.Synced, snapshotKey(id))
	if err != nil {
		return workspace.Snapshot{}, err
	}
	if data == nil {
		return workspace.Snapshot{}, nil
	}
	var snap workspace.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return workspace.Snapshot{}, fmt.Errorf("corrupt snapshot for %s: %w", id, err)
	}
	return snap, nil
}

func (e *Engine) saveSnapshot(ctx context.Context, id string, snap workspace.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return e.store.Set(ctx, store.Synced, snapshotKey(id), data)
}

// Snapshot returns a workspace's stored snapshot.
func (e *Engine) Snapshot(ctx context.Context, id string) (workspace.Snapshot, error) {
	e.mu.Lock()
	_, ok := e.findLocked(id)
	e.mu.Unlock()
	if !ok {
		return workspace.Snapshot{}, errors.NewNotFound(id)
	}
	snap, err := e.loadSnapshot(ctx, id)
	if err != nil {
		return workspace.Snapshot{}, errors.NewStorage(err)
	}
	return snap, nil
}

// Lookup helpers. Callers hold the lock.

func (e *Engine) findLocked(id string) (int, bool) {
	for i := range e.registry {
		if e.registry[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

func (e *Engine) windowForLocked(id string) (browser.WindowID, bool) {
	for w, ws := range e.bindings {
		if ws == id {
			return w, true
		}
	}
	return 0, false
}

// Notification helpers. Called without the lock held.

func (e *Engine) notifyWorkspaces() {
	if e.notifier == nil {
		return
	}
	e.mu.Lock()
	snapshot := make([]workspace.Workspace, len(e.registry))
	copy(snapshot, e.registry)
	e.mu.Unlock()
	e.notifier.WorkspacesChanged(snapshot)
}

func (e *Engine) notifyBinding(window browser.WindowID, workspaceID string) {
	if e.notifier == nil {
		return
	}
	e.notifier.BindingChanged(window, workspaceID)
}

// hostErr maps host failures onto the error taxonomy.
func hostErr(err error) error {
	if err == browser.ErrNotConnected {
		return errors.NewNoBrowser()
	}
	return errors.NewInternal(err)
}

func (e *Engine) nowMillis() int64 {
	return e.clock.Now().UnixMilli()
}
