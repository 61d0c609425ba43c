package scenario

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"progdemo/pkg/display"
	"progdemo/pkg/settings"
	"progdemo/pkg/storage"
)

func newTestEnv(t *testing.T) (*Env, *bytes.Buffer) {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := settings.Defaults()
	s.FileCount = 6
	s.DataCount = 10
	s.Workers = 3

	buf := &bytes.Buffer{}
	return &Env{
		Display:  display.NewWriterDisplay(buf),
		Storage:  store,
		Settings: s,
		Pace:     NoPace,
		History:  &History{},
		Rand:     rand.New(rand.NewPCG(1, 2)),
	}, buf
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"files", "network", " DATA "} {
		if _, ok := Lookup(name); !ok {
			t.Errorf("Lookup(%q) failed", name)
		}
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("Lookup(nope) should fail")
	}
	if len(All()) != 3 {
		t.Errorf("Expected 3 scenarios, got %d", len(All()))
	}
}

func TestFilesScenario(t *testing.T) {
	env, buf := newTestEnv(t)

	run, err := Execute(context.Background(), Files(), env)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	want := map[string]string{"total": "6", "successful": "6", "failed": "0", "success_rate": "100.0%"}
	for k, v := range want {
		if got, _ := run.Report.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}

	if n := env.Storage.List(storage.KeyTemp).Count; n != 0 {
		t.Errorf("Expected temp to be cleared, found %d files", n)
	}
	processed := env.Storage.List(storage.KeyProcessed)
	if processed.Count != 6 {
		t.Fatalf("Expected 6 processed files, got %d", processed.Count)
	}
	for _, f := range processed.Files {
		if !strings.HasPrefix(f.Name, "test_file_") || !strings.Contains(f.Name, "_processed_") || filepath.Ext(f.Name) != ".txt" {
			t.Errorf("Unexpected processed name %s", f.Name)
		}
	}

	out := buf.String()
	for _, s := range []string{"=== Starting scenario: File processing ===", "Deleted 6 files from temp", "=== Scenario finished in"} {
		if !strings.Contains(out, s) {
			t.Errorf("Expected output to contain %q", s)
		}
	}

	runs := env.History.Runs()
	if len(runs) != 1 || runs[0].Scenario != "files" || len(runs[0].ID) != 36 {
		t.Errorf("Unexpected history %+v", runs)
	}
}

func TestNetworkScenario(t *testing.T) {
	env, _ := newTestEnv(t)

	run, err := Execute(context.Background(), Network(), env)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	downloads := env.Storage.List(storage.KeyDownloads)
	if downloads.Count != 5 {
		t.Fatalf("Expected 5 downloads, got %d", downloads.Count)
	}
	var total int64
	for _, f := range downloads.Files {
		if f.Size%1024 != 0 {
			t.Errorf("%s: size %d is not whole KB", f.Name, f.Size)
		}
		total += f.Size
	}
	if got, _ := run.Report.Get("total_size_kb"); got != strconv.FormatInt(total/1024, 10) {
		t.Errorf("total_size_kb = %s, files hold %d KB", got, total/1024)
	}
	if got, _ := run.Report.Get("successful"); got != "5" {
		t.Errorf("successful = %s", got)
	}
	if n := env.Storage.List(storage.KeyTemp).Count; n != 0 {
		t.Errorf("Expected no leftovers in temp, got %d", n)
	}
}

func TestNetworkScenarioKeepsExistingDownloads(t *testing.T) {
	env, _ := newTestEnv(t)
	dir, _ := env.Storage.Path(storage.KeyDownloads)
	if err := os.WriteFile(filepath.Join(dir, "music.mp3"), []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Execute(context.Background(), Network(), env); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "music.mp3"))
	if err != nil || string(data) != "old" {
		t.Errorf("Existing download was overwritten")
	}
	if n := env.Storage.List(storage.KeyDownloads).Count; n != 6 {
		t.Errorf("Expected 6 files, got %d", n)
	}
}

func TestNetworkScenarioLeavesTempFilesAlone(t *testing.T) {
	env, _ := newTestEnv(t)
	tmp, _ := env.Storage.Path(storage.KeyTemp)
	userFile := filepath.Join(tmp, "document.pdf")
	if err := os.WriteFile(userFile, []byte("USER DATA"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Execute(context.Background(), Network(), env); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(userFile)
	if err != nil || string(data) != "USER DATA" {
		t.Fatalf("temp/document.pdf changed: %q, %v", data, err)
	}
	if n := env.Storage.List(storage.KeyTemp).Count; n != 1 {
		t.Errorf("Expected only the user file in temp, got %d files", n)
	}
	dl, _ := env.Storage.Path(storage.KeyDownloads)
	if _, err := os.Stat(filepath.Join(dl, "document.pdf")); err != nil {
		t.Errorf("Expected downloads/document.pdf: %v", err)
	}
}

func TestDataScenario(t *testing.T) {
	env, buf := newTestEnv(t)

	run, err := Execute(context.Background(), Data(), env)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got, _ := run.Report.Get("processed_items"); got != "10" {
		t.Errorf("processed_items = %s", got)
	}
	if !strings.Contains(buf.String(), "10/10 items") {
		t.Errorf("Expected final bar, got %q", buf.String())
	}
}

func TestCancelledScenario(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, s := range All() {
		env, _ := newTestEnv(t)
		_, err := Execute(ctx, s, env)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", s.Name(), err)
		}
		runs := env.History.Runs()
		if len(runs) != 1 || runs[0].Err == nil {
			t.Errorf("%s: expected failed run in history", s.Name())
		}
	}
}

func TestGeneratorProcess(t *testing.T) {
	env, _ := newTestEnv(t)
	gen := NewGenerator(env)
	gen.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local) }

	paths, err := gen.Generate(2, []string{".log"})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(paths[1]) != "test_file_002_20260102_030405.log" {
		t.Errorf("Unexpected name %s", paths[1])
	}

	src, _ := os.ReadFile(paths[0])
	if !strings.HasPrefix(string(src), "FILE #1\n") || !strings.HasSuffix(string(src), "END OF FILE #1") {
		t.Errorf("Unexpected content %q", src)
	}

	out, err := gen.Process(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(out) != "test_file_001_20260102_030405_processed_20260102_030405.txt" {
		t.Errorf("Unexpected processed name %s", filepath.Base(out))
	}
	data, _ := os.ReadFile(out)
	for _, s := range []string{
		"Original: test_file_001_20260102_030405.log",
		"Lines: " + strconv.Itoa(countLines(string(src))),
		"END OF PROCESSED FILE",
	} {
		if !strings.Contains(string(data), s) {
			t.Errorf("Processed file missing %q", s)
		}
	}

	if _, err := gen.Process(paths[0]); err == nil {
		t.Error("Expected second process in the same second to refuse overwrite")
	}
	if _, err := gen.Process(filepath.Join(filepath.Dir(paths[0]), "missing.txt")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestCountLines(t *testing.T) {
	tests := map[string]int{"": 0, "a": 1, "a\nb": 2, "a\nb\n": 2, "\n": 1}
	for in, want := range tests {
		if got := countLines(in); got != want {
			t.Errorf("countLines(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestMovingAverage(t *testing.T) {
	xs := []float64{100, 1, 2, 3, 4, 5}
	if got := movingAverage(xs, 5); got != 3 {
		t.Errorf("Expected 3, got %g", got)
	}
	if got := movingAverage(xs[:2], 5); got != 50.5 {
		t.Errorf("Expected 50.5, got %g", got)
	}
	if got := movingAverage(nil, 5); got != 0 {
		t.Errorf("Expected 0, got %g", got)
	}
}

func TestPace(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected cancellation, got %v", err)
	}
	if err := Scaled(2)(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected cancellation, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Cancelled sleep should return immediately")
	}

	if err := Scaled(0)(context.Background(), time.Hour); err != nil {
		t.Errorf("Scaled(0) should not wait or fail, got %v", err)
	}
	if err := Sleep(context.Background(), time.Millisecond); err != nil {
		t.Errorf("Sleep: %v", err)
	}
}

func TestHistoryOutput(t *testing.T) {
	h := &History{}
	if h.Output() != nil {
		t.Error("Expected nil output for empty history")
	}

	h.Add(Run{ID: "0123456789", Scenario: "data", Duration: 1500 * time.Millisecond, Report: Report{{Key: "processed_items", Value: "3"}}})
	h.Add(Run{ID: "x", Scenario: "files", Err: errors.New("boom")})

	out := h.Output()
	if out.Message != "Session summary: 2 scenario(s) run" {
		t.Errorf("Unexpected message %q", out.Message)
	}
	if got := out.Table.Rows[0]; got[0] != "01234567" || got[2] != "1.50s" || got[3] != "processed_items=3" {
		t.Errorf("Unexpected row %v", got)
	}
	if got := out.Table.Rows[1][3]; got != "error: boom" {
		t.Errorf("Unexpected row %v", got)
	}
}
