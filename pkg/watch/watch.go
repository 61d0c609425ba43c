// Package watch reports filesystem changes inside the storage directories.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"progdemo/pkg/display"
	"progdemo/pkg/storage"

	"github.com/fsnotify/fsnotify"
)

// Event is one change seen in a storage directory.
type Event struct {
	Key  storage.Key
	Name string
	Op   string
}

func (e Event) String() string {
	return fmt.Sprintf("%s/%s %s", e.Key, e.Name, e.Op)
}

// Watcher follows the five storage directories. Subdirectories are not
// watched since storage operations only touch files directly inside them.
type Watcher struct {
	fsw     *fsnotify.Watcher
	disp    display.Display
	keys    map[string]storage.Key
	OnEvent func(Event)
}

// New starts watching every storage directory of store.
func New(store storage.Manager, disp display.Display) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		fsw:  fsw,
		disp: disp,
		keys: make(map[string]storage.Key),
	}
	for _, k := range storage.Keys() {
		dir, _ := store.Path(k)
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.keys[filepath.Clean(dir)] = k
	}
	return w, nil
}

// Run reports events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	w.disp.Log(fmt.Sprintf("Watching %d directories, press Ctrl+C to stop", len(w.keys)))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			e, known := w.translate(ev)
			if !known {
				continue
			}
			w.disp.Log(e.String())
			if w.OnEvent != nil {
				w.OnEvent(e)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) translate(ev fsnotify.Event) (Event, bool) {
	key, ok := w.keys[filepath.Dir(ev.Name)]
	if !ok {
		return Event{}, false
	}
	return Event{Key: key, Name: filepath.Base(ev.Name), Op: opString(ev.Op)}, true
}

func opString(op fsnotify.Op) string {
	var names []string
	for _, o := range []struct {
		op   fsnotify.Op
		name string
	}{
		{fsnotify.Create, "create"},
		{fsnotify.Write, "write"},
		{fsnotify.Remove, "remove"},
		{fsnotify.Rename, "rename"},
		{fsnotify.Chmod, "chmod"},
	} {
		if op&o.op == o.op {
			names = append(names, o.name)
		}
	}
	if len(names) == 0 {
		return "unknown"
	}
	return strings.Join(names, "|")
}
