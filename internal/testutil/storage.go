// Package testutil provides small test doubles shared across the engine's
// package tests, starting with an in-memory inifile.Storage so File Loader
// tests don't need to touch the real filesystem.
package testutil

import (
	"path/filepath"
	"sort"

	"github.com/pgguru/pgbackrest/internal/inifile"
)

// MemStorage is an in-memory inifile.Storage double. Files is keyed by
// full path; List synthesizes directory entries from the Files keys that
// share dir as their parent.
type MemStorage struct {
	Files map[string]string
	// Dirs lists directories that exist but may be empty, so List can
	// distinguish "directory exists, no *.conf entries" from "directory
	// does not exist at all."
	Dirs map[string]bool
}

// NewMemStorage returns an empty MemStorage.
func NewMemStorage() *MemStorage {
	return &MemStorage{Files: map[string]string{}, Dirs: map[string]bool{}}
}

// Read implements inifile.Storage.
func (m *MemStorage) Read(path string) ([]byte, error) {
	data, ok := m.Files[path]
	if !ok {
		return nil, inifile.ErrNotFound
	}
	return []byte(data), nil
}

// List implements inifile.Storage.
func (m *MemStorage) List(dir string) ([]string, error) {
	found := m.Dirs[dir]
	names := map[string]bool{}
	for path := range m.Files {
		if filepath.Dir(path) == dir {
			found = true
			names[filepath.Base(path)] = true
		}
	}
	if !found {
		return nil, inifile.ErrNotFound
	}

	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}
