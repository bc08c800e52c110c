package engine

import (
	"encoding/json"
	"strings"

	"github.com/lumiador/Workspace-Extension/internal/store"
	"github.com/lumiador/Workspace-Extension/internal/workspace"
)

// onStoreChange receives every store change synchronously. Locally-originated
// changes are echoes of writes the engine already made under its own lock and
// must be ignored before any locking, or the watcher would deadlock against
// the writer.
func (e *Engine) onStoreChange(c store.Change) {
	if !c.Remote {
		return
	}
	if c.Partition != store.Synced {
		return
	}

	switch {
	case c.Key == registryKey:
		e.reconcileRegistry(c.New)
	case strings.HasPrefix(c.Key, snapshotPrefix):
		// Snapshot content is read on demand (open, export); nothing cached
		// to refresh. Remote fingerprint writes land the same way.
		e.log.Debug("remote snapshot delta", "key", c.Key)
	}
}

// reconcileRegistry replaces the in-memory registry with the remote value
// wholesale. The store's replication already resolved the conflict
// last-writer-wins; re-merging here would diverge devices from each other.
func (e *Engine) reconcileRegistry(data []byte) {
	var remote []workspace.Workspace
	if data != nil {
		if err := json.Unmarshal(data, &remote); err != nil {
			e.log.Warn("ignoring malformed remote registry", "err", err)
			return
		}
	}
	if remote == nil {
		remote = []workspace.Workspace{}
	}

	e.mu.Lock()
	e.registry = remote
	// Bindings to workspaces that no longer exist stay in place: the window
	// is still open on this device, and deleting its binding would silently
	// detach it mid-session. Registry touches for such ids no-op because the
	// lookup misses.
	e.mu.Unlock()

	e.notifyWorkspaces()
}
