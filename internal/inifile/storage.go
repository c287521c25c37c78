// Package inifile implements the File Loader: it resolves the main
// configuration file and include directory per the precedence matrix,
// concatenates their contents, and validates/parses the result into a
// Document consumed by internal/merge.
package inifile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"golang.org/x/sys/unix"
)

// ErrNotFound is returned by a Storage implementation when a path does not
// exist.
var ErrNotFound = errors.New("inifile: not found")

// Storage is the storage abstraction the File Loader reads through. The
// engine never calls os.ReadFile/os.ReadDir directly so tests can swap in
// an in-memory double.
type Storage interface {
	Read(path string) ([]byte, error)
	List(dir string) ([]string, error)
}

// LocalStorage reads real files from the local filesystem.
type LocalStorage struct{}

// Read returns a file's contents, or ErrNotFound if it does not exist.
func (LocalStorage) Read(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// List returns every entry name directly under dir, or ErrNotFound if the
// directory itself does not exist. An EPERM or EISDIR failure on the
// directory (e.g. a misconfigured include path that is actually a regular
// file, or unreadable due to permissions) is tolerated the same way,
// reporting ErrNotFound rather than propagating a raw OS error, so the
// caller falls back to its existing silent/fatal-missing rule instead of
// needing a third code path for this edge case.
func (LocalStorage) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || isTolerableDirError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func isTolerableDirError(err error) bool {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return false
	}
	return errno == unix.EPERM || errno == unix.EISDIR
}

// confSuffix matches the include-directory entry filter: ".+\.conf$".
var confSuffix = regexp.MustCompile(`.+\.conf$`)

// ListConfParts returns the ".conf"-suffixed entries of dir, ascending
// lexicographically, each joined to dir as a full path. Missing dir
// reports ErrNotFound exactly like List.
func ListConfParts(storage Storage, dir string) ([]string, error) {
	names, err := storage.List(dir)
	if err != nil {
		return nil, err
	}

	var matched []string
	for _, name := range names {
		if confSuffix.MatchString(name) {
			matched = append(matched, filepath.Join(dir, name))
		}
	}
	sort.Strings(matched)
	return matched, nil
}
