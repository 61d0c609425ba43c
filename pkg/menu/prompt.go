package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type prompt struct {
	input     textinput.Model
	done      bool
	cancelled bool
}

func newPrompt(label string) prompt {
	ti := textinput.New()
	ti.Prompt = label + " "
	ti.CharLimit = 256
	ti.Focus()
	return prompt{input: ti}
}

func (m prompt) Init() tea.Cmd { return textinput.Blink }

func (m prompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m prompt) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return m.input.View() + "\n"
}

// Ask reads one line of text.
func Ask(label string, opts ...Option) (string, error) {
	final, err := run(newPrompt(label), opts)
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	m := final.(prompt)
	if m.cancelled {
		return "", ErrCancelled
	}
	return strings.TrimSpace(m.input.Value()), nil
}

type confirm struct {
	label     string
	answer    bool
	done      bool
	cancelled bool
}

func (m confirm) Init() tea.Cmd { return nil }

func (m confirm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.answer, m.done = true, true
		return m, tea.Quit
	case "n", "N", "enter":
		m.answer, m.done = false, true
		return m, tea.Quit
	case "esc", "ctrl+c", "q":
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirm) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return m.label + " (y/N) "
}

// Confirm asks a yes/no question. Enter means no.
func Confirm(label string, opts ...Option) (bool, error) {
	final, err := run(confirm{label: label}, opts)
	if err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	m := final.(confirm)
	if m.cancelled {
		return false, ErrCancelled
	}
	return m.answer, nil
}
