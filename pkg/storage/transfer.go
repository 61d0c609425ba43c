package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
)

// rename is swapped in tests to simulate cross-device and permission
// failures.
var rename = os.Rename

// Move moves the file at path into the directory for target. A file of
// the same name already in target is never overwritten; the moved file is
// renamed instead.
func (m *manager) Move(path string, target Key) Result {
	return m.MoveAs(path, target, filepath.Base(path))
}

// MoveAs is Move with the file stored under name instead of its current
// base name. The collision policy applies to name.
func (m *manager) MoveAs(path string, target Key, name string) Result {
	return m.transfer(path, target, name, "moved", moveFile)
}

// moveFile renames src to dst, copying and deleting only when they are on
// different filesystems.
func moveFile(src, dst string) error {
	err := rename(src, dst)
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	slog.Debug("Rename crosses devices, copying instead", "src", src, "dst", dst)
	if err := copyFile(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}

// Copy copies the file at path into the directory for target, keeping the
// permission bits and modification time. Name clashes are handled as in Move.
func (m *manager) Copy(path string, target Key) Result {
	return m.transfer(path, target, filepath.Base(path), "copied", copyFile)
}

func (m *manager) transfer(path string, target Key, name, verb string, op func(src, dst string) error) Result {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return failed(ErrNotFound, "File not found: %s", path)
		}
		return failed(err, "Error: %v", err)
	}
	if !fi.Mode().IsRegular() {
		return failed(ErrNotFound, "Not a regular file: %s", path)
	}

	dir, ok := m.dirs[target]
	if !ok {
		return failed(ErrInvalidKey, "Target directory not found: %s", target)
	}
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return failed(ErrInvalidName, "Invalid file name: %q", name)
	}

	dst := m.destination(dir, name)
	if err := op(path, dst); err != nil {
		return failed(err, "Error: %v", err)
	}

	slog.Debug("File "+verb, "src", path, "dst", dst)
	return succeeded(dst, "File %s to %s: %s", verb, target, filepath.Base(dst))
}

// copyFile copies src to dst, which must not exist, preserving the mode
// and modification time. A partial dst is removed on failure.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err = out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
