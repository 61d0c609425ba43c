package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"progdemo/pkg/display"
	"progdemo/pkg/storage"

	"github.com/fsnotify/fsnotify"
)

func TestWatcherReportsCreate(t *testing.T) {
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	w, err := New(store, display.NewWriterDisplay(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var (
		mu   sync.Mutex
		seen []Event
	)
	w.OnEvent = func(e Event) {
		mu.Lock()
		seen = append(seen, e)
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	dir, _ := store.Path(storage.KeyDownloads)
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	found := false
	for !found && time.Now().Before(deadline) {
		mu.Lock()
		for _, e := range seen {
			if e.Key == storage.KeyDownloads && e.Name == "a.txt" && strings.Contains(e.Op, "create") {
				found = true
			}
		}
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
	}
	if !found {
		t.Errorf("Expected create event for downloads/a.txt, got %v", seen)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   fsnotify.Op
		want string
	}{
		{fsnotify.Create, "create"},
		{fsnotify.Create | fsnotify.Write, "create|write"},
		{fsnotify.Rename, "rename"},
		{0, "unknown"},
	}
	for _, tt := range tests {
		if got := opString(tt.op); got != tt.want {
			t.Errorf("opString(%v) = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestEventString(t *testing.T) {
	e := Event{Key: storage.KeyTemp, Name: "x.log", Op: "remove"}
	if e.String() != "temp/x.log remove" {
		t.Errorf("Unexpected %q", e.String())
	}
}
