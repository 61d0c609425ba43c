package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"progdemo/pkg/config"
	"progdemo/pkg/display"
	"progdemo/pkg/settings"
	"progdemo/pkg/storage"
)

type fakeUI struct {
	confirm bool
	asked   []string
}

func (f *fakeUI) Choose(title string, items []string) (int, error) { return len(items) - 1, nil }
func (f *fakeUI) Ask(label string) (string, error)                  { return "", nil }
func (f *fakeUI) Confirm(label string) (bool, error) {
	f.asked = append(f.asked, label)
	return f.confirm, nil
}

type testEnv struct {
	engine *Engine
	out    *bytes.Buffer
	ui     *fakeUI
	base   string
}

func newHandlerEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	base := filepath.Join(dir, "storage")

	cfg := config.Init()
	w := cfg.Checkout()
	w.SetConfigDir(filepath.Join(dir, "config"))
	w.SetStorageDir(base)
	cfg.Freeze()

	e, err := MakeEngine()
	if err != nil {
		t.Fatalf("MakeEngine failed: %v", err)
	}
	var out bytes.Buffer
	e.Out = &out
	ui := &fakeUI{}
	Register(e, &Managers{
		Disp:     display.NewWriterDisplay(&out),
		Cfg:      cfg,
		Settings: settings.Open(cfg.GetSettingsFile()),
		UI:       ui,
		Out:      &out,
	})
	return &testEnv{engine: e, out: &out, ui: ui, base: base}
}

func (te *testEnv) run(t *testing.T, args ...string) *ExecutionResult {
	t.Helper()
	te.out.Reset()
	res, err := te.engine.Run(context.Background(), args)
	if err != nil {
		t.Fatalf("Run(%v) failed: %v", args, err)
	}
	return res
}

func (te *testEnv) writeFile(t *testing.T, key storage.Key, name string) string {
	t.Helper()
	p := filepath.Join(te.base, string(key), name)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestStorageListJSON(t *testing.T) {
	te := newHandlerEnv(t)
	te.writeFile(t, storage.KeyTemp, "a.txt")

	res := te.run(t, "storage", "list", "temp", "--json")
	if res.ExitCode != 0 {
		t.Fatalf("Expected exit code 0, got %d", res.ExitCode)
	}
	var info storage.DirectoryInfo
	if err := json.Unmarshal(te.out.Bytes(), &info); err != nil {
		t.Fatalf("Invalid JSON %q: %v", te.out.String(), err)
	}
	if info.Count != 1 || info.Files[0].Name != "a.txt" {
		t.Errorf("Unexpected listing: %+v", info)
	}

	res = te.run(t, "storage", "list", "nowhere")
	if res.ExitCode != 1 || !strings.Contains(res.Output.Message, "Directory not found: nowhere") {
		t.Errorf("Expected failure for unknown directory, got %+v", res.Output)
	}
}

func TestStorageSummaryJQ(t *testing.T) {
	te := newHandlerEnv(t)
	te.writeFile(t, storage.KeyTemp, "a.txt")
	te.writeFile(t, storage.KeyDownloads, "b.bin")

	te.run(t, "storage", "summary", "--jq", ".total.count")
	if got := strings.TrimSpace(te.out.String()); got != "2" {
		t.Errorf("Expected 2, got %q", got)
	}

	te.run(t, "storage", "summary", "--jq", ".dirs[] | select(.count > 0) | .key")
	if got := strings.Fields(te.out.String()); len(got) != 2 || got[0] != `"temp"` || got[1] != `"downloads"` {
		t.Errorf("Unexpected keys: %v", got)
	}

	res := te.run(t, "storage", "summary", "--jq", ".[")
	if res.ExitCode != 1 || !strings.Contains(res.Output.Message, "invalid jq expression") {
		t.Errorf("Expected jq parse failure, got %+v", res.Output)
	}
}

func TestStorageTransfer(t *testing.T) {
	te := newHandlerEnv(t)
	src := te.writeFile(t, storage.KeyTemp, "a.txt")

	res := te.run(t, "storage", "copy", src, "archive")
	if res.ExitCode != 0 {
		t.Fatalf("copy failed: %s", res.Output.Message)
	}
	res = te.run(t, "move", src, "processed")
	if res.ExitCode != 0 || !strings.Contains(res.Output.Message, "File moved to processed") {
		t.Fatalf("move failed: %s", res.Output.Message)
	}
	if _, err := os.Stat(filepath.Join(te.base, "processed", "a.txt")); err != nil {
		t.Errorf("Expected moved file: %v", err)
	}

	res = te.run(t, "storage", "delete", src)
	if res.ExitCode != 1 || !strings.Contains(res.Output.Message, "File not found") {
		t.Errorf("Expected failure for deleted source, got %+v", res.Output)
	}
}

func TestStorageClear(t *testing.T) {
	te := newHandlerEnv(t)
	p := te.writeFile(t, storage.KeyTemp, "a.txt")

	res := te.run(t, "storage", "clear", "temp")
	if res.Output.Message != "Aborted." || len(te.ui.asked) != 1 {
		t.Fatalf("Expected confirmation and abort, got %+v", res.Output)
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("File should survive an aborted clear: %v", err)
	}

	res = te.run(t, "storage", "clear", "temp", "-f")
	if res.Output.Message != "Deleted 1 files from temp" {
		t.Errorf("Unexpected message %q", res.Output.Message)
	}
	if len(te.ui.asked) != 1 {
		t.Errorf("--force should not ask, asked %v", te.ui.asked)
	}
}

func TestSettingsCommands(t *testing.T) {
	te := newHandlerEnv(t)

	res := te.run(t, "settings", "set", "workers", "8")
	if res.ExitCode != 0 || res.Output.Message != "Set workers = 8" {
		t.Fatalf("Unexpected result %+v", res.Output)
	}

	res = te.run(t, "settings", "set", "colour", "blue")
	if res.ExitCode != 1 {
		t.Errorf("Expected failure for unknown key, got %+v", res.Output)
	}

	reopened, err := settings.Open(filepath.Join(filepath.Dir(te.base), "config", "settings.json")).Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if reopened.Workers != 8 {
		t.Errorf("Expected saved workers 8, got %d", reopened.Workers)
	}

	res = te.run(t, "settings", "show")
	if res.Output == nil || len(res.Output.KV) == 0 {
		t.Errorf("Expected settings listing, got %+v", res.Output)
	}
}

func TestVersionCommand(t *testing.T) {
	te := newHandlerEnv(t)
	te.run(t, "version")
	if !strings.HasPrefix(te.out.String(), config.AppName+" ") {
		t.Errorf("Unexpected version line %q", te.out.String())
	}
}
