package store

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Open selects a backend from a DSN. Supported forms:
//
//	""              sqlite at <baseDir>/workspaces.db
//	sqlite:<path>   sqlite at path (relative paths resolve under baseDir)
//	badger:<dir>    badger in dir (relative paths resolve under baseDir)
//	memory:         in-memory, volatile
func Open(dsn, baseDir string) (Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return OpenSQLite(filepath.Join(baseDir, "workspaces.db"))
	}

	scheme, rest, ok := strings.Cut(dsn, ":")
	if !ok {
		return nil, fmt.Errorf("invalid store DSN %q: missing scheme", dsn)
	}

	switch strings.ToLower(scheme) {
	case "sqlite", "file":
		if rest == "" {
			rest = filepath.Join(baseDir, "workspaces.db")
		}
		return OpenSQLite(resolve(rest, baseDir))
	case "badger":
		if rest == "" {
			rest = filepath.Join(baseDir, "badger")
		}
		return OpenBadger(resolve(rest, baseDir))
	case "memory", "mem", "inmem":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store DSN scheme %q", scheme)
	}
}

func resolve(path, baseDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
