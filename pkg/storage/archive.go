package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"progdemo/pkg/archive"
)

// CreateArchive writes a zip of every regular file in the directory for key
// into the archive directory. An empty name becomes
// "{key}_archive_{YYYYMMDD_HHMMSS}.zip". Empty directories are refused.
func (m *manager) CreateArchive(key Key, name string) Result {
	if _, ok := m.dirs[key]; !ok {
		return failed(ErrInvalidKey, "Directory not found: %s", key)
	}
	files, err := m.regularFiles(key)
	if err != nil {
		return failed(ErrNotFound, "Directory not found: %s", key)
	}
	if len(files) == 0 {
		return failed(ErrEmpty, "No files to archive in %s", key)
	}

	if name == "" {
		name = fmt.Sprintf("%s_archive_%s.zip", key, m.timestamp())
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return failed(ErrInvalidKey, "Invalid archive name: %s", name)
	}
	if !strings.HasSuffix(strings.ToLower(name), ".zip") {
		name += ".zip"
	}

	dst := m.destination(m.dirs[KeyArchive], name)
	slog.Info("Archiving", "dir", key, "files", len(files), "archive", dst)
	if err := archive.Create(dst, files); err != nil {
		return failed(err, "Error: %v", err)
	}
	return succeeded(dst, "Archive created: %s (%d files)", filepath.Base(dst), len(files))
}

// Restore extracts an archive kept in the archive directory into the
// directory for target. Entries are flattened to their base names and never
// overwrite existing files.
func (m *manager) Restore(name string, target Key) Result {
	dir, ok := m.dirs[target]
	if !ok {
		return failed(ErrInvalidKey, "Target directory not found: %s", target)
	}
	if strings.ContainsAny(name, `/\`) || name == "" {
		return failed(ErrNotFound, "Archive not found: %s", name)
	}
	src := filepath.Join(m.dirs[KeyArchive], name)
	fi, err := os.Stat(src)
	if err != nil || !fi.Mode().IsRegular() {
		return failed(ErrNotFound, "Archive not found: %s", name)
	}
	if !archive.IsSupported(name) {
		return failed(errors.New("unsupported archive format"), "Unsupported archive format: %s", name)
	}

	count := 0
	err = archive.Walk(src, func(e *archive.Entry) error {
		base := path.Base(strings.ReplaceAll(e.Name, `\`, "/"))
		if base == "." || base == "/" {
			return nil
		}
		dst := m.destination(dir, base)
		if err := writeEntry(dst, e); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return failed(err, "Error: %v (%d files restored)", err, count)
	}
	slog.Info("Restored archive", "archive", name, "dir", target, "files", count)
	return succeeded(dir, "Restored %d files from %s into %s", count, name, target)
}

func writeEntry(dst string, e *archive.Entry) (err error) {
	rc, err := e.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", e.Name, err)
	}
	defer rc.Close()

	mode := e.Info.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", dst, err)
	}
	defer func() {
		if err != nil {
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(f, rc); err != nil {
		f.Close()
		return fmt.Errorf("failed to write file %s: %w", dst, err)
	}
	if err = f.Close(); err != nil {
		return err
	}
	if mt := e.Info.ModTime(); !mt.IsZero() {
		return os.Chtimes(dst, mt, mt)
	}
	return nil
}
