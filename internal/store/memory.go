package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Store for tests and embedding. Remote deltas are
// simulated through ApplyRemote.
type Memory struct {
	mu   sync.Mutex
	data map[Partition]map[string][]byte
	hub  *watchHub
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data: map[Partition]map[string][]byte{
			Local:  {},
			Synced: {},
		},
		hub: newWatchHub(),
	}
}

// Get returns the value for key, or nil when absent.
func (m *Memory) Get(ctx context.Context, p Partition, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[p][key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set writes value under key and notifies watchers.
func (m *Memory) Set(ctx context.Context, p Partition, key string, value []byte) error {
	return m.write(p, key, value, false)
}

// Delete removes key and notifies watchers when it existed.
func (m *Memory) Delete(ctx context.Context, p Partition, key string) error {
	return m.write(p, key, nil, false)
}

// ApplyRemote injects a replicated mutation (value nil deletes) and notifies
// watchers with Remote set.
func (m *Memory) ApplyRemote(ctx context.Context, p Partition, key string, value []byte) error {
	return m.write(p, key, value, true)
}

func (m *Memory) write(p Partition, key string, value []byte, remote bool) error {
	m.mu.Lock()
	old, existed := m.data[p][key]
	if value == nil {
		if !existed {
			m.mu.Unlock()
			return nil
		}
		delete(m.data[p], key)
	} else {
		cp := make([]byte, len(value))
		copy(cp, value)
		m.data[p][key] = cp
	}
	m.mu.Unlock()

	m.hub.emit(Change{Partition: p, Key: key, Old: old, New: value, Remote: remote})
	return nil
}

// Keys lists keys with the given prefix in sorted order.
func (m *Memory) Keys(ctx context.Context, p Partition, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data[p] {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Usage reports stored bytes (keys plus values) in a partition.
func (m *Memory) Usage(ctx context.Context, p Partition) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, v := range m.data[p] {
		n += int64(len(k) + len(v))
	}
	return n, nil
}

// Watch registers a change watcher.
func (m *Memory) Watch(fn WatchFunc) (cancel func()) {
	return m.hub.add(fn)
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error {
	return nil
}
