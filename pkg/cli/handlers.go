package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"progdemo/pkg/common"
	"progdemo/pkg/config"
	"progdemo/pkg/console"
	"progdemo/pkg/display"
	"progdemo/pkg/menu"
	"progdemo/pkg/scenario"
	"progdemo/pkg/settings"
	"progdemo/pkg/storage"
	"progdemo/pkg/watch"

	"github.com/itchyny/gojq"
)

// Managers carries what handlers need. The storage manager is created on
// first use so that help and version never touch the filesystem.
type Managers struct {
	Disp     display.Display
	Cfg      config.ReadOnly
	Settings settings.File
	UI       menu.UI
	// Out receives machine-readable output such as JSON.
	Out io.Writer

	store storage.Manager
}

func (m *Managers) Store() (storage.Manager, error) {
	if m.store == nil {
		s, err := storage.New(m.Cfg.GetStorageDir())
		if err != nil {
			return nil, fmt.Errorf("error initializing storage: %w", err)
		}
		m.store = s
	}
	return m.store, nil
}

func (m *Managers) Env() (*scenario.Env, error) {
	store, err := m.Store()
	if err != nil {
		return nil, err
	}
	values, err := m.Settings.Get()
	if err != nil {
		return nil, err
	}
	return scenario.NewEnv(m.Disp, store, values), nil
}

// Register binds every command of the embedded definition to m.
func Register(e *Engine, m *Managers) {
	e.Register("menu", HandlerFunc(m.runMenu))
	for _, s := range scenario.All() {
		e.Register("scenario/"+s.Name(), m.scenarioHandler(s))
	}
	e.Register("storage/summary", HandlerFunc(m.storageSummary))
	e.Register("storage/list", HandlerFunc(m.storageList))
	e.Register("storage/search", HandlerFunc(m.storageSearch))
	e.Register("storage/delete", HandlerFunc(m.storageDelete))
	e.Register("storage/clear", HandlerFunc(m.storageClear))
	e.Register("storage/move", m.transferHandler(storage.Manager.Move))
	e.Register("storage/copy", m.transferHandler(storage.Manager.Copy))
	e.Register("storage/archive", HandlerFunc(m.storageArchive))
	e.Register("storage/restore", HandlerFunc(m.storageRestore))
	e.Register("storage/watch", HandlerFunc(m.storageWatch))
	e.Register("storage/console", HandlerFunc(m.storageConsole))
	e.Register("settings/show", HandlerFunc(m.settingsShow))
	e.Register("settings/set", HandlerFunc(m.settingsSet))
	e.Register("version", HandlerFunc(m.version))
}

func (m *Managers) runMenu(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
	env, err := m.Env()
	if err != nil {
		return nil, err
	}
	if err := console.NewMenu(m.UI, env).Run(ctx); err != nil {
		return nil, err
	}
	return common.Success(nil), nil
}

func (m *Managers) scenarioHandler(s scenario.Scenario) Handler {
	return HandlerFunc(func(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
		env, err := m.Env()
		if err != nil {
			return nil, err
		}
		if _, err := scenario.Execute(ctx, s, env); err != nil {
			return nil, err
		}
		return common.Success(nil), nil
	})
}

func (m *Managers) storageSummary(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
	store, err := m.Store()
	if err != nil {
		return nil, err
	}
	summary := store.Summary()
	if inv.Bool("json") || inv.String("jq") != "" {
		return m.emitJSON(ctx, summary, inv.String("jq"))
	}
	return common.Success(summary.Output()), nil
}

func (m *Managers) storageList(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
	store, key, res := m.storeAndKey(inv.Arg("dir"))
	if res != nil {
		return res, nil
	}
	info := store.List(key)
	if inv.Bool("json") {
		return m.emitJSON(ctx, info, "")
	}
	return common.Success(info.Output()), nil
}

func (m *Managers) storageSearch(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
	store, err := m.Store()
	if err != nil {
		return nil, err
	}
	query := inv.Arg("query")
	files := store.Search(query)
	if inv.Bool("json") {
		if files == nil {
			files = []storage.FileRecord{}
		}
		return m.emitJSON(ctx, files, "")
	}
	return common.Success(storage.SearchOutput(query, files)), nil
}

func (m *Managers) storageDelete(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
	store, err := m.Store()
	if err != nil {
		return nil, err
	}
	return resultOf(store.Delete(inv.Arg("path"))), nil
}

func (m *Managers) storageClear(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
	store, key, res := m.storeAndKey(inv.Arg("dir"))
	if res != nil {
		return res, nil
	}
	if !inv.Bool("force") {
		yes, err := m.UI.Confirm(fmt.Sprintf("Delete every file in %s?", key))
		if errors.Is(err, menu.ErrCancelled) || (err == nil && !yes) {
			return common.Success(&common.Output{Message: "Aborted."}), nil
		}
		if err != nil {
			return nil, err
		}
	}
	_, msg := store.DeleteAll(key)
	return common.Success(&common.Output{Message: msg}), nil
}

func (m *Managers) transferHandler(op func(storage.Manager, string, storage.Key) storage.Result) Handler {
	return HandlerFunc(func(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
		store, key, res := m.storeAndKey(inv.Arg("dir"))
		if res != nil {
			return res, nil
		}
		return resultOf(op(store, inv.Arg("path"), key)), nil
	})
}

func (m *Managers) storageArchive(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
	store, key, res := m.storeAndKey(inv.Arg("dir"))
	if res != nil {
		return res, nil
	}
	return resultOf(store.CreateArchive(key, inv.String("name"))), nil
}

func (m *Managers) storageRestore(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
	store, key, res := m.storeAndKey(inv.Arg("dir"))
	if res != nil {
		return res, nil
	}
	return resultOf(store.Restore(inv.Arg("archive"), key)), nil
}

func (m *Managers) storageWatch(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
	store, err := m.Store()
	if err != nil {
		return nil, err
	}
	w, err := watch.New(store, m.Disp)
	if err != nil {
		return nil, err
	}
	if err := w.Run(ctx); err != nil {
		return nil, err
	}
	return common.Success(nil), nil
}

func (m *Managers) storageConsole(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
	store, err := m.Store()
	if err != nil {
		return nil, err
	}
	if err := console.New(m.UI, m.Disp, store).Run(ctx); err != nil {
		return nil, err
	}
	return common.Success(nil), nil
}

func (m *Managers) settingsShow(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
	values, err := m.Settings.Get()
	if err != nil {
		return nil, err
	}
	return common.Success(values.Output(m.Settings.Path())), nil
}

func (m *Managers) settingsSet(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
	key, value := inv.Arg("key"), inv.Arg("value")
	if err := m.Settings.Set(key, value); err != nil {
		return common.Failure(err.Error()), nil
	}
	if err := m.Settings.Save(); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	return common.Success(&common.Output{Message: fmt.Sprintf("Set %s = %s", key, value)}), nil
}

func (m *Managers) version(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
	fmt.Fprintln(m.Out, config.GetBuildInfo())
	return common.Success(nil), nil
}

// storeAndKey returns the storage manager and the parsed directory key, or
// a failure result for an unknown key.
func (m *Managers) storeAndKey(dir string) (storage.Manager, storage.Key, *ExecutionResult) {
	key, err := storage.ParseKey(dir)
	if err != nil {
		return nil, "", resultOf(storage.Result{Err: err, Message: "Directory not found: " + dir})
	}
	store, err := m.Store()
	if err != nil {
		return nil, "", common.Failure(err.Error())
	}
	return store, key, nil
}

func resultOf(r storage.Result) *ExecutionResult {
	res := common.Success(console.ResultOutput(r))
	if !r.OK {
		res.ExitCode = 1
	}
	return res
}

// emitJSON writes v as indented JSON, or the results of the jq filter
// applied to it, one per line.
func (m *Managers) emitJSON(ctx context.Context, v any, filter string) (*ExecutionResult, error) {
	if filter == "" {
		return nil, writeJSON(m.Out, v)
	}

	query, err := gojq.Parse(filter)
	if err != nil {
		return common.Failure(fmt.Sprintf("invalid jq expression: %v", err)), nil
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return common.Failure(fmt.Sprintf("invalid jq expression: %v", err)), nil
	}

	// gojq only accepts plain JSON values.
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var input any
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, err
	}

	iter := code.RunWithContext(ctx, input)
	for {
		out, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := out.(error); ok {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				break
			}
			return common.Failure(fmt.Sprintf("jq: %v", err)), nil
		}
		if err := writeJSON(m.Out, out); err != nil {
			return nil, err
		}
	}
	return common.Success(nil), nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
