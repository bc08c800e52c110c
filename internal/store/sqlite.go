package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest SQLite schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// SQLite is a Store backed by a single SQLite database in WAL mode. Both
// partitions share one table keyed by (partition, key).
type SQLite struct {
	db  *sql.DB
	hub *watchHub
}

// OpenSQLite opens (creating if needed) the database at path. The parent
// directory is created with restricted permissions, matching the rest of the
// on-disk state.
func OpenSQLite(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	// Pragmas in the connection string apply to all pooled connections.
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrateSQLite(db); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions after the file exists (best-effort).
	_ = os.Chmod(path, 0600)

	return &SQLite{db: db, hub: newWatchHub()}, nil
}

// migrateSQLite applies schema migrations based on user_version.
func migrateSQLite(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return fmt.Errorf("failed to get user_version: %w", err)
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS kv (
		  partition TEXT NOT NULL,
		  key       TEXT NOT NULL,
		  value     BLOB NOT NULL,
		  PRIMARY KEY (partition, key)
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", 1)); err != nil {
			return fmt.Errorf("failed to set user_version: %w", err)
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// Get returns the value for key, or nil when absent.
func (s *SQLite) Get(ctx context.Context, p Partition, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM kv WHERE partition = ? AND key = ?", string(p), key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", p, key, err)
	}
	return value, nil
}

// Set writes value under key and notifies watchers.
func (s *SQLite) Set(ctx context.Context, p Partition, key string, value []byte) error {
	return s.write(ctx, p, key, value, false)
}

// Delete removes key and notifies watchers when it existed.
func (s *SQLite) Delete(ctx context.Context, p Partition, key string) error {
	return s.write(ctx, p, key, nil, false)
}

// ApplyRemote injects a replicated mutation and notifies watchers with
// Remote set.
func (s *SQLite) ApplyRemote(ctx context.Context, p Partition, key string, value []byte) error {
	return s.write(ctx, p, key, value, true)
}

func (s *SQLite) write(ctx context.Context, p Partition, key string, value []byte, remote bool) error {
	old, err := s.Get(ctx, p, key)
	if err != nil {
		return err
	}

	if value == nil {
		if old == nil {
			return nil
		}
		if _, err := s.db.ExecContext(ctx,
			"DELETE FROM kv WHERE partition = ? AND key = ?", string(p), key,
		); err != nil {
			return fmt.Errorf("delete %s/%s: %w", p, key, err)
		}
	} else {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO kv (partition, key, value) VALUES (?, ?, ?)
			 ON CONFLICT (partition, key) DO UPDATE SET value = excluded.value`,
			string(p), key, value,
		); err != nil {
			return fmt.Errorf("set %s/%s: %w", p, key, err)
		}
	}

	s.hub.emit(Change{Partition: p, Key: key, Old: old, New: value, Remote: remote})
	return nil
}

// Keys lists keys with the given prefix in sorted order.
func (s *SQLite) Keys(ctx context.Context, p Partition, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key FROM kv WHERE partition = ? AND key LIKE ? || '%' ORDER BY key",
		string(p), prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("keys %s/%s*: %w", p, prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Usage reports stored bytes (keys plus values) in a partition.
func (s *SQLite) Usage(ctx context.Context, p Partition) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(LENGTH(key) + LENGTH(value)), 0) FROM kv WHERE partition = ?",
		string(p),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("usage %s: %w", p, err)
	}
	return n, nil
}

// Watch registers a change watcher.
func (s *SQLite) Watch(fn WatchFunc) (cancel func()) {
	return s.hub.add(fn)
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
