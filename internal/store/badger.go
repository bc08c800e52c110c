package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Badger is a Store backed by BadgerDB. Partitions are encoded as key
// prefixes ("local/", "synced/").
type Badger struct {
	db  *badger.DB
	hub *watchHub
}

// OpenBadger opens (creating if needed) a Badger database in dirPath.
func OpenBadger(dirPath string) (*Badger, error) {
	opts := badger.DefaultOptions(dirPath).
		WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}

	return &Badger{db: db, hub: newWatchHub()}, nil
}

func badgerKey(p Partition, key string) []byte {
	return []byte(string(p) + "/" + key)
}

// Get returns the value for key, or nil when absent.
func (b *Badger) Get(ctx context.Context, p Partition, key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(p, key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", p, key, err)
	}
	return value, nil
}

// Set writes value under key and notifies watchers.
func (b *Badger) Set(ctx context.Context, p Partition, key string, value []byte) error {
	return b.write(p, key, value, false)
}

// Delete removes key and notifies watchers when it existed.
func (b *Badger) Delete(ctx context.Context, p Partition, key string) error {
	return b.write(p, key, nil, false)
}

// ApplyRemote injects a replicated mutation and notifies watchers with
// Remote set.
func (b *Badger) ApplyRemote(ctx context.Context, p Partition, key string, value []byte) error {
	return b.write(p, key, value, true)
}

func (b *Badger) write(p Partition, key string, value []byte, remote bool) error {
	k := badgerKey(p, key)
	var old []byte

	err := b.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err == nil {
			old, err = item.ValueCopy(nil)
			if err != nil {
				return err
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		if value == nil {
			if old == nil {
				return nil
			}
			return txn.Delete(k)
		}
		return txn.Set(k, value)
	})
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", p, key, err)
	}
	if value == nil && old == nil {
		return nil
	}

	b.hub.emit(Change{Partition: p, Key: key, Old: old, New: value, Remote: remote})
	return nil
}

// Keys lists keys with the given prefix in sorted order.
func (b *Badger) Keys(ctx context.Context, p Partition, prefix string) ([]string, error) {
	full := badgerKey(p, prefix)
	var keys []string

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = full

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			k := string(it.Item().Key())
			keys = append(keys, strings.TrimPrefix(k, string(p)+"/"))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("keys %s/%s*: %w", p, prefix, err)
	}
	return keys, nil
}

// Usage reports stored bytes (keys plus values) in a partition.
func (b *Badger) Usage(ctx context.Context, p Partition) (int64, error) {
	var n int64

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = badgerKey(p, "")

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			n += int64(len(item.Key())) + item.ValueSize()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("usage %s: %w", p, err)
	}
	return n, nil
}

// Watch registers a change watcher.
func (b *Badger) Watch(fn WatchFunc) (cancel func()) {
	return b.hub.add(fn)
}

// Close closes the underlying database.
func (b *Badger) Close() error {
	return b.db.Close()
}
