package menu

// UI is the set of prompts an interactive session needs.
type UI interface {
	Choose(title string, items []string) (int, error)
	Ask(label string) (string, error)
	Confirm(label string) (bool, error)
}

// Terminal runs each prompt as its own bubbletea program.
type Terminal struct {
	opts []Option
}

var _ UI = (*Terminal)(nil)

func NewTerminal(opts ...Option) *Terminal {
	return &Terminal{opts: opts}
}

func (t *Terminal) Choose(title string, items []string) (int, error) {
	return Choose(title, items, t.opts...)
}

func (t *Terminal) Ask(label string) (string, error) {
	return Ask(label, t.opts...)
}

func (t *Terminal) Confirm(label string) (bool, error) {
	return Confirm(label, t.opts...)
}
