// Package storage manages the fixed set of working directories used by the
// demonstrations. It lists, moves, copies, deletes, archives and searches
// the regular files kept directly inside those directories.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Key names one of the fixed storage directories.
type Key string

const (
	KeyTemp       Key = "temp"
	KeyProcessed  Key = "processed"
	KeyDownloads  Key = "downloads"
	KeyArchive    Key = "archive"
	KeyQuarantine Key = "quarantine"
)

// DefaultBase is the base directory used when none is configured.
const DefaultBase = "storage"

// timestampLayout renders YYYYMMDD_HHMMSS.
const timestampLayout = "20060102_150405"

var keys = []Key{KeyTemp, KeyProcessed, KeyDownloads, KeyArchive, KeyQuarantine}

var (
	// ErrNotFound is reported when a file or directory does not exist at call time.
	ErrNotFound = errors.New("not found")
	// ErrInvalidKey is reported for a directory key outside the fixed set.
	ErrInvalidKey = errors.New("unknown directory")
	// ErrEmpty is reported when an archive is requested for a directory without files.
	ErrEmpty = errors.New("no files")
	// ErrInvalidName is reported for a destination name that is not a plain file name.
	ErrInvalidName = errors.New("invalid file name")
)

// Keys returns the directory keys in their fixed order.
func Keys() []Key {
	return slices.Clone(keys)
}

// ParseKey converts a user supplied directory name into a Key.
func ParseKey(s string) (Key, error) {
	k := Key(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(keys, k) {
		return "", fmt.Errorf("%w: %s", ErrInvalidKey, s)
	}
	return k, nil
}

func (k Key) String() string { return string(k) }

// manager holds the resolved directory paths.
// Immutable
type manager struct {
	base string
	dirs map[Key]string
	now  func() time.Time
}

// Manager is a pointer to the internal manager implementation.
type Manager = *manager

// Option configures a Manager.
type Option func(*manager)

// WithClock sets the time source used for collision and archive names.
func WithClock(now func() time.Time) Option {
	return func(m *manager) {
		m.now = now
	}
}

// New resolves base (DefaultBase when empty) and creates the fixed
// directories below it. Calling New again on the same base is harmless.
func New(base string, opts ...Option) (Manager, error) {
	if base == "" {
		base = DefaultBase
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage path %s: %w", base, err)
	}

	m := &manager{
		base: abs,
		dirs: make(map[Key]string, len(keys)),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, k := range keys {
		dir := filepath.Join(abs, string(k))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", k, err)
		}
		m.dirs[k] = dir
	}
	return m, nil
}

// Base returns the absolute base directory.
func (m *manager) Base() string { return m.base }

// Path returns the directory for key and whether the key is known.
func (m *manager) Path(key Key) (string, bool) {
	dir, ok := m.dirs[key]
	return dir, ok
}

// Result is the outcome of a mutating operation. Failures never panic or
// escape as errors; they are reported through OK, Message and Err.
type Result struct {
	OK      bool
	Message string
	// Path is the file produced by the operation, if any.
	Path string
	// Err classifies a failure: ErrNotFound, ErrInvalidKey, ErrEmpty or
	// the underlying filesystem error.
	Err error
}

func succeeded(path, format string, args ...any) Result {
	return Result{OK: true, Path: path, Message: fmt.Sprintf(format, args...)}
}

func failed(err error, format string, args ...any) Result {
	return Result{Err: err, Message: fmt.Sprintf(format, args...)}
}

func (m *manager) timestamp() string {
	return m.now().Format(timestampLayout)
}

// destination returns a path in dir for name that does not exist yet.
// A clash gets a _YYYYMMDD_HHMMSS suffix before the extension, and a
// further clash within the same second gets a _N counter after it.
func (m *manager) destination(dir, name string) string {
	target := filepath.Join(dir, name)
	if !exists(target) {
		return target
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		// dotfiles such as ".env" have no extension
		stem, ext = name, ""
	}
	stamp := m.timestamp()

	target = filepath.Join(dir, fmt.Sprintf("%s_%s%s", stem, stamp, ext))
	for n := 1; exists(target); n++ {
		target = filepath.Join(dir, fmt.Sprintf("%s_%s_%d%s", stem, stamp, n, ext))
	}
	return target
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
