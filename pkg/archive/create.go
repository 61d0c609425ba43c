package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

// Create writes a deflate compressed zip at dest holding every file in
// files under its base name. The archive is flat: no directory entries are
// written. dest must not exist yet; a partially written archive is removed
// when an error occurs.
func Create(dest string, files []string) (err error) {
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(dest)
		}
	}()

	zw := zip.NewWriter(f)
	for _, p := range files {
		if err = addFile(zw, p); err != nil {
			zw.Close()
			f.Close()
			return err
		}
	}
	if err = zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, p string) error {
	src, err := os.Open(p)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", p, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", p, err)
	}
	if !info.Mode().IsRegular() {
		return errors.New("not a regular file: " + p)
	}

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to build header for %s: %w", p, err)
	}
	hdr.Name = filepath.Base(p)
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", p, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to compress %s: %w", p, err)
	}
	return nil
}
