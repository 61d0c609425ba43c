// Package archive writes flat zip archives and walks the entries of zip and
// tar based archives so they can be restored into a storage directory.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// SupportedExtensions returns the archive suffixes that Walk understands.
func SupportedExtensions() []string {
	return []string{".zip", ".tar", ".tar.gz", ".tgz", ".tar.zst"}
}

// IsSupported returns true if the filename has a supported archive extension.
func IsSupported(filename string) bool {
	name := strings.ToLower(filename)
	for _, ext := range SupportedExtensions() {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Entry is one regular file inside an archive.
type Entry struct {
	// Name is the slash separated path recorded in the archive.
	Name string
	// Info describes the entry (size, mode, modification time).
	Info fs.FileInfo

	open func() (io.ReadCloser, error)
}

// Open returns a reader for the entry content. The reader is only valid
// for the duration of the WalkFunc call.
func (e *Entry) Open() (io.ReadCloser, error) {
	return e.open()
}

// WalkFunc is called for every regular file in an archive. Returning an
// error stops the walk.
type WalkFunc func(e *Entry) error

// Walk visits the regular files of the archive at src in archive order.
// Directory entries are skipped. Entries whose path is absolute or climbs
// out of the archive root abort the walk.
func Walk(src string, fn WalkFunc) error {
	name := strings.ToLower(src)
	if strings.HasSuffix(name, ".zip") {
		return walkZip(src, fn)
	}

	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	var r io.Reader = f

	switch {
	case strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz"):
		gzr, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzr.Close()
		r = gzr
	case strings.HasSuffix(name, ".tar.zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer zr.Close()
		r = zr
	case strings.HasSuffix(name, ".tar"):
		// Plain tar, reader is file
	default:
		return fmt.Errorf("unsupported archive format: %s", src)
	}

	return walkTar(r, fn)
}

func walkZip(src string, fn WalkFunc) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("failed to open zip archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		info := f.FileInfo()
		if !info.Mode().IsRegular() {
			continue
		}
		if err := checkName(f.Name); err != nil {
			return err
		}
		e := &Entry{Name: f.Name, Info: info, open: f.Open}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

func walkTar(r io.Reader, fn WalkFunc) error {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		if err := checkName(header.Name); err != nil {
			return err
		}
		e := &Entry{
			Name: header.Name,
			Info: header.FileInfo(),
			open: func() (io.ReadCloser, error) {
				// The tar stream is owned by Walk, closing the entry must not close it.
				return io.NopCloser(tr), nil
			},
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// checkName rejects entries that would land outside the extraction root
// (Zip Slip).
func checkName(name string) error {
	if name == "" || path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return fmt.Errorf("illegal file path in archive: %s", name)
	}
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return fmt.Errorf("illegal file path in archive: %s", name)
		}
	}
	return nil
}
