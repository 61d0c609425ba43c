package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Delete removes the file at path.
func (m *manager) Delete(path string) Result {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return failed(ErrNotFound, "File not found: %s", path)
		}
		return failed(err, "Error: %v", err)
	}
	if fi.IsDir() {
		return failed(ErrNotFound, "Not a regular file: %s", path)
	}

	if err := os.Remove(path); err != nil {
		return failed(err, "Error: %v", err)
	}
	slog.Debug("File deleted", "path", path)
	return succeeded(path, "File deleted: %s", filepath.Base(path))
}

// DeleteAll removes every regular file directly inside the directory for
// key and returns how many were removed. Files that cannot be removed are
// skipped; subdirectories are left alone.
func (m *manager) DeleteAll(key Key) (int, string) {
	if _, ok := m.dirs[key]; !ok {
		return 0, fmt.Sprintf("Directory not found: %s", key)
	}
	paths, err := m.regularFiles(key)
	if err != nil {
		return 0, fmt.Sprintf("Directory not found: %s", key)
	}

	count := 0
	for _, p := range paths {
		if err := os.Remove(p); err != nil {
			slog.Debug("Skipping file", "path", p, "error", err)
			continue
		}
		count++
	}
	return count, fmt.Sprintf("Deleted %d files from %s", count, key)
}
