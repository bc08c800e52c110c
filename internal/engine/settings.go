package engine

import (
	"context"
	"encoding/json"

	"github.com/lumiador/Workspace-Extension/internal/errors"
	"github.com/lumiador/Workspace-Extension/internal/store"
	"github.com/lumiador/Workspace-Extension/internal/workspace"
)

// Settings returns the current settings.
func (e *Engine) Settings() workspace.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// SaveSettings persists new settings and applies them to subsequent
// operations. In-flight captures keep the settings they started with.
func (e *Engine) SaveSettings(ctx context.Context, s workspace.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.NewInternal(err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.Set(ctx, store.Local, settingsKey, data); err != nil {
		return errors.NewStorage(err)
	}
	e.settings = s
	return nil
}

// UsageOutput reports approximate storage consumption per partition.
type UsageOutput struct {
	SyncedBytes int64 `json:"synced_bytes"`
	LocalBytes  int64 `json:"local_bytes"`
}

// Usage reports the store's approximate byte usage per partition.
func (e *Engine) Usage(ctx context.Context) (*UsageOutput, error) {
	synced, err := e.store.Usage(ctx, store.Synced)
	if err != nil {
		return nil, errors.NewStorage(err)
	}
	local, err := e.store.Usage(ctx, store.Local)
	if err != nil {
		return nil, errors.NewStorage(err)
	}
	return &UsageOutput{SyncedBytes: synced, LocalBytes: local}, nil
}
