// Package settings provides the lazily loaded settings file. It tracks
// modifications and writes atomically when saving to disk.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"progdemo/pkg/filelock"
)

// ErrUnknownKey is returned by Set for keys that are not settings.
var ErrUnknownKey = errors.New("unknown setting")

// Values are the user-adjustable settings.
type Values struct {
	StorageDir string   `json:"storage_dir,omitempty"`
	FileCount  int      `json:"file_count"`
	DataCount  int      `json:"data_count"`
	Workers    int      `json:"workers"`
	Extensions []string `json:"extensions"`
	// Pace scales every simulated delay; 0 disables them.
	Pace float64 `json:"pace"`
}

// Defaults returns the settings used when no file exists.
func Defaults() Values {
	return Values{
		FileCount:  20,
		DataCount:  100,
		Workers:    4,
		Extensions: []string{".txt", ".log", ".dat", ".csv", ".tmp"},
		Pace:       1,
	}
}

func (v *Values) normalize() {
	d := Defaults()
	if v.FileCount <= 0 {
		v.FileCount = d.FileCount
	}
	if v.DataCount <= 0 {
		v.DataCount = d.DataCount
	}
	if v.Workers <= 0 {
		v.Workers = d.Workers
	}
	if len(v.Extensions) == 0 {
		v.Extensions = d.Extensions
	}
	if v.Pace < 0 {
		v.Pace = 0
	}
}

// Keys returns the names accepted by Set, in display order.
func Keys() []string {
	return []string{"storage_dir", "file_count", "data_count", "workers", "extensions", "pace"}
}

// Mutable
type file struct {
	path     string
	data     Values
	loaded   bool
	dirty    bool
	fileMode os.FileMode
	mu       sync.RWMutex
}

type File = *file

// Option configures a File.
type Option func(*file)

// WithFileMode sets the permissions of the written file. Default is 0644.
func WithFileMode(mode os.FileMode) Option {
	return func(f *file) {
		f.fileMode = mode
	}
}

// Open returns a File for path. Nothing is read until first use.
func Open(path string, opts ...Option) File {
	f := &file{
		path:     path,
		fileMode: 0644,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *file) Path() string {
	return f.path
}

// Get returns a copy of the current settings, loading them if needed.
// A missing file yields the defaults.
func (f *file) Get() (Values, error) {
	f.mu.RLock()
	if f.loaded {
		defer f.mu.RUnlock()
		return f.copyLocked(), nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.loaded {
		if err := f.loadLocked(); err != nil {
			return Values{}, err
		}
	}
	return f.copyLocked(), nil
}

// Set parses value and assigns it to key. The change is kept in memory
// until Save.
func (f *file) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.loaded {
		if err := f.loadLocked(); err != nil {
			return err
		}
	}

	v := f.copyLocked()
	value = strings.TrimSpace(value)

	switch strings.ToLower(strings.TrimSpace(key)) {
	case "storage_dir":
		v.StorageDir = value
	case "file_count":
		n, err := positive(key, value)
		if err != nil {
			return err
		}
		v.FileCount = n
	case "data_count":
		n, err := positive(key, value)
		if err != nil {
			return err
		}
		v.DataCount = n
	case "workers":
		n, err := positive(key, value)
		if err != nil {
			return err
		}
		v.Workers = n
	case "extensions":
		var exts []string
		for _, e := range strings.Split(value, ",") {
			e = strings.TrimSpace(e)
			if e == "" {
				continue
			}
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			exts = append(exts, e)
		}
		if len(exts) == 0 {
			return fmt.Errorf("extensions: at least one extension required")
		}
		v.Extensions = exts
	case "pace":
		p, err := strconv.ParseFloat(value, 64)
		if err != nil || p < 0 {
			return fmt.Errorf("pace: expected a non-negative number, got %q", value)
		}
		v.Pace = p
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	f.data = v
	f.dirty = true
	return nil
}

// Save writes the settings to disk if they were modified.
func (f *file) Save() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.dirty {
		return nil
	}
	return f.saveLocked()
}

// IsDirty returns true if the settings have been modified since the last load/save.
func (f *file) IsDirty() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dirty
}

func (f *file) copyLocked() Values {
	v := f.data
	v.Extensions = slices.Clone(f.data.Extensions)
	return v
}

// loadLocked must be called with write lock held.
func (f *file) loadLocked() error {
	v := Defaults()

	data, err := os.ReadFile(f.path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return fmt.Errorf("failed to read settings: %w", err)
	default:
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("failed to parse %s: %w", f.path, err)
		}
	}

	v.normalize()
	f.data = v
	f.loaded = true
	f.dirty = false
	return nil
}

// saveLocked writes the file atomically.
// Must be called with write lock held.
func (f *file) saveLocked() error {
	data, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Another process may be saving the same file.
	unlock, err := filelock.Acquire(context.Background(), f.path)
	if err != nil {
		return err
	}
	defer unlock()

	tempFile := f.path + ".tmp"
	if err := os.WriteFile(tempFile, data, f.fileMode); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempFile, f.path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	f.dirty = false
	return nil
}

func positive(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: expected a positive integer, got %q", key, value)
	}
	return n, nil
}
