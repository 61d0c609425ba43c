package console

import (
	"context"
	"errors"
	"fmt"
	"time"

	"progdemo/pkg/menu"
	"progdemo/pkg/scenario"
)

var hints = map[string][]string{
	"files": {
		"✓ A bar created for a known number of files",
		"✓ The description changes while work proceeds",
		"✓ Success and error counters on the right",
		"✓ Colors and units",
		"✓ Log lines written without tearing the bar",
	},
	"network": {
		"✓ Two levels: overall progress and per file",
		"✓ Per-file bars disappear when finished",
		"✓ Both bars advance together",
		"✓ Speed varies per chunk and is averaged",
	},
	"data": {
		"✓ Manual progress control",
		"✓ Values pulled from a generator",
		"✓ Several custom metrics in the postfix",
		"✓ Timing statistics",
	},
}

// Menu is the top-level demonstration menu.
type Menu struct {
	ui      menu.UI
	env     *scenario.Env
	storage *Console
	now     func() time.Time
}

func NewMenu(ui menu.UI, env *scenario.Env) *Menu {
	return &Menu{
		ui:      ui,
		env:     env,
		storage: New(ui, env.Display, env.Storage),
		now:     time.Now,
	}
}

// Run loops over the menu until the user exits, then prints the session
// summary. A scenario failing is reported and the menu continues; context
// cancellation ends the session.
func (m *Menu) Run(ctx context.Context) error {
	start := m.now()
	defer m.farewell(start)

	scenarios := scenario.All()
	items := make([]string, 0, len(scenarios)+2)
	for _, s := range scenarios {
		items = append(items, fmt.Sprintf("%s: %s", s.Title(), s.Description()))
	}
	items = append(items, "Storage console", "Exit")

	d := m.env.Display
	d.Print(headStyle.Render("PROGRESS BAR DEMONSTRATOR") + "\n")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		idx, err := m.ui.Choose("MAIN MENU", items)
		if errors.Is(err, menu.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}

		switch {
		case idx < len(scenarios):
			s := scenarios[idx]
			d.Print("What to watch for:\n")
			for _, h := range hints[s.Name()] {
				d.Print("  " + h + "\n")
			}
			if _, err := scenario.Execute(ctx, s, m.env); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				d.Print(failStyle.Render("Scenario failed: "+err.Error()) + "\n")
			}
		case idx == len(scenarios):
			if err := m.storage.Run(ctx); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (m *Menu) farewell(start time.Time) {
	d := m.env.Display
	d.Print("\n" + headStyle.Render("SESSION SUMMARY") + "\n")
	d.Print(fmt.Sprintf("Session time: %.1f seconds\n", m.now().Sub(start).Seconds()))
	if m.env.History != nil {
		if out := m.env.History.Output(); out != nil {
			d.Render(out)
		}
	}
	d.Print(okStyle.Render("Thanks for using the demonstrator!") + "\n")
}
