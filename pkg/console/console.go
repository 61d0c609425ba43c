// Package console implements the interactive storage console and the
// demonstration main menu on top of the menu prompts.
package console

import (
	"context"
	"errors"
	"fmt"

	"progdemo/pkg/archive"
	"progdemo/pkg/common"
	"progdemo/pkg/display"
	"progdemo/pkg/menu"
	"progdemo/pkg/storage"

	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	headStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
)

// ResultOutput renders a storage Result as a colored one-line message.
func ResultOutput(r storage.Result) *common.Output {
	if r.OK {
		return &common.Output{Message: okStyle.Render("✓ " + r.Message)}
	}
	return &common.Output{Message: failStyle.Render("✗ " + r.Message)}
}

type action struct {
	label string
	run   func(c *Console) error
}

// Console is the interactive storage manager.
type Console struct {
	ui      menu.UI
	disp    display.Display
	store   storage.Manager
	actions []action
}

func New(ui menu.UI, disp display.Display, store storage.Manager) *Console {
	c := &Console{ui: ui, disp: disp, store: store}

	for _, k := range storage.Keys() {
		c.actions = append(c.actions, action{
			label: "View " + k.String(),
			run:   func(c *Console) error { c.disp.Render(c.store.List(k).Output()); return nil },
		})
	}
	c.actions = append(c.actions,
		action{"Delete file", (*Console).deleteFile},
		action{"Move file", func(c *Console) error { return c.transfer("move", c.store.Move) }},
		action{"Copy file", func(c *Console) error { return c.transfer("copy", c.store.Copy) }},
		action{"Archive directory", (*Console).archiveDir},
		action{"Restore archive", (*Console).restore},
		action{"Search files", (*Console).search},
		action{"Clear temp", (*Console).clearTemp},
		action{"Quit", nil},
	)
	return c
}

// Run shows the summary and action list until the user quits or ctx ends.
func (c *Console) Run(ctx context.Context) error {
	labels := make([]string, len(c.actions))
	for i, a := range c.actions {
		labels[i] = a.label
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.disp.Print(headStyle.Render("STORAGE MANAGER") + "\n")
		c.disp.Render(c.store.Summary().Output())

		idx, err := c.ui.Choose("Actions", labels)
		if errors.Is(err, menu.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}

		a := c.actions[idx]
		if a.run == nil {
			return nil
		}
		if err := a.run(c); err != nil && !errors.Is(err, menu.ErrCancelled) {
			return err
		}
	}
}

func (c *Console) chooseKey(title string, keys []storage.Key) (storage.Key, error) {
	labels := make([]string, len(keys))
	for i, k := range keys {
		labels[i] = k.String()
	}
	idx, err := c.ui.Choose(title, labels)
	if err != nil {
		return "", err
	}
	return keys[idx], nil
}

// pickFile asks for a directory and then a file in it. ok is false when
// the directory has no files.
func (c *Console) pickFile(verb string) (f storage.FileRecord, ok bool, err error) {
	key, err := c.chooseKey("Directory to "+verb+" from", storage.Keys())
	if err != nil {
		return f, false, err
	}

	info := c.store.List(key)
	if info.Count == 0 {
		c.disp.Print(failStyle.Render(fmt.Sprintf("No files to %s in %s", verb, key)) + "\n")
		return f, false, nil
	}

	labels := make([]string, len(info.Files))
	for i, r := range info.Files {
		labels[i] = fmt.Sprintf("%s (%s)", r.Name, r.SizeHR)
	}
	idx, err := c.ui.Choose("File to "+verb, labels)
	if err != nil {
		return f, false, err
	}
	return info.Files[idx], true, nil
}

func (c *Console) deleteFile() error {
	f, ok, err := c.pickFile("delete")
	if err != nil || !ok {
		return err
	}
	yes, err := c.ui.Confirm(fmt.Sprintf("Delete %s?", f.Name))
	if err != nil || !yes {
		return err
	}
	c.disp.Render(ResultOutput(c.store.Delete(f.Path)))
	return nil
}

func (c *Console) transfer(verb string, op func(string, storage.Key) storage.Result) error {
	f, ok, err := c.pickFile(verb)
	if err != nil || !ok {
		return err
	}
	target, err := c.chooseKey(fmt.Sprintf("Where to %s %s?", verb, f.Name), storage.Keys())
	if err != nil {
		return err
	}
	c.disp.Render(ResultOutput(op(f.Path, target)))
	return nil
}

func (c *Console) archiveDir() error {
	key, err := c.chooseKey("Directory to archive", []storage.Key{storage.KeyTemp, storage.KeyProcessed, storage.KeyDownloads})
	if err != nil {
		return err
	}
	c.disp.Render(ResultOutput(c.store.CreateArchive(key, "")))
	return nil
}

func (c *Console) restore() error {
	var names []string
	for _, f := range c.store.List(storage.KeyArchive).Files {
		if archive.IsSupported(f.Name) {
			names = append(names, f.Name)
		}
	}
	if len(names) == 0 {
		c.disp.Print(failStyle.Render("No archives to restore") + "\n")
		return nil
	}

	idx, err := c.ui.Choose("Archive to restore", names)
	if err != nil {
		return err
	}
	target, err := c.chooseKey("Restore into", storage.Keys())
	if err != nil {
		return err
	}
	c.disp.Render(ResultOutput(c.store.Restore(names[idx], target)))
	return nil
}

func (c *Console) search() error {
	query, err := c.ui.Ask("Search for:")
	if err != nil || query == "" {
		return err
	}
	c.disp.Render(storage.SearchOutput(query, c.store.Search(query)))
	return nil
}

func (c *Console) clearTemp() error {
	yes, err := c.ui.Confirm("Clear temp?")
	if err != nil || !yes {
		return err
	}
	_, msg := c.store.DeleteAll(storage.KeyTemp)
	c.disp.Render(&common.Output{Message: okStyle.Render(msg)})
	return nil
}
