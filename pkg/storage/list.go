package storage

import (
	"cmp"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// FileRecord is a snapshot of one file taken when it was listed. It is
// never refreshed and may be stale by the time it is used.
type FileRecord struct {
	Dir      Key       `json:"dir"`
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	SizeHR   string    `json:"size_hr"`
	Modified time.Time `json:"modified"`
}

// DirectoryInfo is the content of one storage directory.
type DirectoryInfo struct {
	Key    Key          `json:"key"`
	Exists bool         `json:"exists"`
	Path   string       `json:"path,omitempty"`
	Files  []FileRecord `json:"files"`
	Count  int          `json:"count"`
	Size   int64        `json:"size"`
	SizeHR string       `json:"size_hr"`
}

// List returns the regular files in the directory for key, most recently
// modified first. An unknown key or a missing directory yields an empty
// DirectoryInfo with Exists unset.
func (m *manager) List(key Key) DirectoryInfo {
	info := DirectoryInfo{Key: key, SizeHR: FormatSize(0)}
	dir, ok := m.dirs[key]
	if !ok {
		return info
	}
	files, err := m.scan(key, dir, nil)
	if err != nil {
		return info
	}

	slices.SortFunc(files, func(a, b FileRecord) int {
		if c := b.Modified.Compare(a.Modified); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	info.Exists = true
	info.Path = dir
	info.Files = files
	info.Count = len(files)
	for _, f := range files {
		info.Size += f.Size
	}
	info.SizeHR = FormatSize(info.Size)
	return info
}

// Search returns the files whose name contains query, ignoring case, in
// key order and then name order. An empty query matches every file.
func (m *manager) Search(query string) []FileRecord {
	q := strings.ToLower(query)
	match := func(name string) bool {
		return strings.Contains(strings.ToLower(name), q)
	}

	var results []FileRecord
	for _, k := range keys {
		files, err := m.scan(k, m.dirs[k], match)
		if err != nil {
			continue
		}
		results = append(results, files...)
	}
	return results
}

// DirSummary is the file count and size of one directory.
type DirSummary struct {
	Key    string `json:"key"`
	Path   string `json:"path"`
	Count  int    `json:"count"`
	Size   int64  `json:"size"`
	SizeHR string `json:"size_hr"`
}

// Summary aggregates List over every directory.
type Summary struct {
	Dirs  []DirSummary `json:"dirs"`
	Total DirSummary   `json:"total"`
}

// Summary lists every directory and totals the results.
func (m *manager) Summary() Summary {
	s := Summary{Total: DirSummary{Key: "total", Path: m.base}}
	for _, k := range keys {
		info := m.List(k)
		s.Dirs = append(s.Dirs, DirSummary{
			Key:    string(k),
			Path:   info.Path,
			Count:  info.Count,
			Size:   info.Size,
			SizeHR: info.SizeHR,
		})
		s.Total.Count += info.Count
		s.Total.Size += info.Size
	}
	s.Total.SizeHR = FormatSize(s.Total.Size)
	return s
}

// scan reads dir in name order and returns a record for every regular file
// accepted by match (all files when match is nil). Entries that vanish
// between reading the directory and stating them are skipped.
func (m *manager) scan(key Key, dir string, match func(string) bool) ([]FileRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]FileRecord, 0, len(entries))
	for _, e := range entries {
		if match != nil && !match(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		files = append(files, FileRecord{
			Dir:      key,
			Name:     e.Name(),
			Path:     path,
			Size:     fi.Size(),
			SizeHR:   FormatSize(fi.Size()),
			Modified: fi.ModTime(),
		})
	}
	return files, nil
}

// regularFiles returns the paths of the regular files in dir.
func (m *manager) regularFiles(key Key) ([]string, error) {
	files, err := m.scan(key, m.dirs[key], nil)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths, nil
}
