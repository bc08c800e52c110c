// Package store provides the durable two-partition key/value store backing
// the engine: a `local` partition that is never replicated and a `synced`
// partition replicated across devices by an external layer with
// last-writer-wins semantics per key. Every mutation, local or remote,
// emits a change notification carrying the old and new value.
package store

import (
	"context"
	"sync"
)

// Partition names a storage partition.
type Partition string

const (
	// Local holds device-private state (window bindings, settings).
	Local Partition = "local"
	// Synced holds replicated state (registry, snapshots, fingerprints).
	// Capacity-constrained; writers keep values compact.
	Synced Partition = "synced"
)

// Change describes a single key mutation. Old and New are nil when the key
// was absent before or after the mutation respectively. Remote marks
// mutations injected by the replication layer rather than this process.
type Change struct {
	Partition Partition
	Key       string
	Old       []byte
	New       []byte
	Remote    bool
}

// WatchFunc receives change notifications. Invoked synchronously on the
// mutating goroutine after the write is durable; handlers must not block
// and must not mutate the store reentrantly.
type WatchFunc func(Change)

// Store is the durable key/value contract. A missing key reads as
// (nil, nil), not an error. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key, or nil when absent.
	Get(ctx context.Context, p Partition, key string) ([]byte, error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, p Partition, key string, value []byte) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, p Partition, key string) error

	// Keys lists keys in a partition with the given prefix.
	Keys(ctx context.Context, p Partition, prefix string) ([]string, error)

	// Usage reports the approximate stored bytes in a partition.
	Usage(ctx context.Context, p Partition) (int64, error)

	// Watch registers fn for change notifications from any origin and
	// returns a cancel function.
	Watch(fn WatchFunc) (cancel func())

	// ApplyRemote is the injection point for the external replication
	// layer: it writes (or deletes, when value is nil) a key and notifies
	// watchers with Remote set.
	ApplyRemote(ctx context.Context, p Partition, key string, value []byte) error

	// Close releases backend resources.
	Close() error
}

// watchHub fans change notifications out to registered watchers. Shared by
// the backends.
type watchHub struct {
	mu       sync.Mutex
	nextID   int
	watchers map[int]WatchFunc
}

func newWatchHub() *watchHub {
	return &watchHub{watchers: make(map[int]WatchFunc)}
}

func (h *watchHub) add(fn WatchFunc) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.watchers[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.watchers, id)
		h.mu.Unlock()
	}
}

func (h *watchHub) emit(c Change) {
	h.mu.Lock()
	fns := make([]WatchFunc, 0, len(h.watchers))
	for _, fn := range h.watchers {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
