package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

func TestWalk(t *testing.T) {
	tempDir := t.TempDir()

	// Helper to create valid archive content
	createContent := func(w func(name string, content []byte) error) error {
		if err := w("test.txt", []byte("hello world")); err != nil {
			return err
		}
		return w("subdir/sub.txt", []byte("hello sub"))
	}

	zipPath := filepath.Join(tempDir, "test.zip")
	createZip(t, zipPath, createContent)
	testWalk(t, zipPath)

	tarPath := filepath.Join(tempDir, "test.tar")
	createTar(t, tarPath, nil, createContent)
	testWalk(t, tarPath)

	tgzPath := filepath.Join(tempDir, "test.tar.gz")
	createTar(t, tgzPath, func(w io.Writer) io.WriteCloser {
		return gzip.NewWriter(w)
	}, createContent)
	testWalk(t, tgzPath)

	zstPath := filepath.Join(tempDir, "test.tar.zst")
	createTar(t, zstPath, func(w io.Writer) io.WriteCloser {
		e, _ := zstd.NewWriter(w)
		return e
	}, createContent)
	testWalk(t, zstPath)
}

func TestWalkRejectsZipSlip(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "evil.zip")
	createZip(t, zipPath, func(w func(string, []byte) error) error {
		return w("../../escape.txt", []byte("nope"))
	})

	err := Walk(zipPath, func(e *Entry) error {
		t.Errorf("unexpected entry %s", e.Name)
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "illegal file path") {
		t.Fatalf("expected illegal path error, got %v", err)
	}
}

func TestWalkUnsupported(t *testing.T) {
	err := Walk(filepath.Join(t.TempDir(), "file.rar"), func(*Entry) error { return nil })
	if err == nil {
		t.Fatal("expected error for unsupported archive")
	}
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.log")
	os.WriteFile(a, []byte("alpha"), 0644)
	os.WriteFile(b, []byte(strings.Repeat("beta ", 100)), 0644)

	dest := filepath.Join(dir, "out.zip")
	if err := Create(dest, []string{a, b}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	r, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer r.Close()

	if len(r.File) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(r.File))
	}
	for _, f := range r.File {
		if f.Method != zip.Deflate {
			t.Errorf("entry %s not deflated", f.Name)
		}
		if strings.Contains(f.Name, "/") {
			t.Errorf("entry %s is not flat", f.Name)
		}
	}
}

func TestCreateRemovesPartialArchive(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.zip")
	err := Create(dest, []string{filepath.Join(dir, "missing.txt")})
	if err == nil {
		t.Fatal("expected error for missing input")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Errorf("partial archive left behind")
	}
}

func TestCreateRefusesExisting(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.zip")
	os.WriteFile(dest, []byte("keep"), 0644)
	a := filepath.Join(dir, "a.txt")
	os.WriteFile(a, []byte("alpha"), 0644)

	if err := Create(dest, []string{a}); err == nil {
		t.Fatal("expected error for existing destination")
	}
	b, _ := os.ReadFile(dest)
	if string(b) != "keep" {
		t.Errorf("existing file was modified: %q", b)
	}
}

func createZip(t *testing.T, path string, contentGen func(func(string, []byte) error) error) {
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	defer w.Close()

	err = contentGen(func(name string, content []byte) error {
		f, err := w.Create(name)
		if err != nil {
			return err
		}
		_, err = f.Write(content)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
}

func createTar(t *testing.T, path string, compressor func(io.Writer) io.WriteCloser, contentGen func(func(string, []byte) error) error) {
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var w io.WriteCloser = f
	if compressor != nil {
		w = compressor(f)
		defer w.Close()
	}

	tw := tar.NewWriter(w)
	defer tw.Close()

	err = contentGen(func(name string, content []byte) error {
		hdr := &tar.Header{
			Name:     name,
			Mode:     0600,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		_, err := tw.Write(content)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
}

func testWalk(t *testing.T, archivePath string) {
	got := map[string]string{}
	err := Walk(archivePath, func(e *Entry) error {
		rc, err := e.Open()
		if err != nil {
			return err
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		got[e.Name] = string(b)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk failed for %s: %v", archivePath, err)
	}

	if got["test.txt"] != "hello world" {
		t.Errorf("%s: test.txt mismatch, got %q", archivePath, got["test.txt"])
	}
	if got["subdir/sub.txt"] != "hello sub" {
		t.Errorf("%s: subdir/sub.txt mismatch, got %q", archivePath, got["subdir/sub.txt"])
	}
}
