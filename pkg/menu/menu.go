// Package menu provides the small interactive prompts used by the
// console: a choice list, a text prompt and a yes/no question.
package menu

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user leaves a prompt with q, esc or ctrl+c.
var ErrCancelled = errors.New("cancelled")

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

type options struct {
	in  io.Reader
	out io.Writer
}

// Option configures where a prompt reads keys and draws itself.
type Option func(*options)

func WithInput(r io.Reader) Option {
	return func(o *options) { o.in = r }
}

func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

func run(m tea.Model, opts []Option) (tea.Model, error) {
	o := options{in: os.Stdin, out: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}
	p := tea.NewProgram(m, tea.WithInput(o.in), tea.WithOutput(o.out))
	return p.Run()
}

// chooser is a cursor list. Number keys jump straight to an item.
type chooser struct {
	title     string
	items     []string
	cursor    int
	chosen    int
	cancelled bool
}

func newChooser(title string, items []string) chooser {
	return chooser{title: title, items: items, chosen: -1}
}

func (m chooser) Init() tea.Cmd { return nil }

func (m chooser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		m.cursor = (m.cursor - 1 + len(m.items)) % len(m.items)
	case "down", "j", "tab":
		m.cursor = (m.cursor + 1) % len(m.items)
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.items) - 1
	case "enter", " ":
		m.chosen = m.cursor
		return m, tea.Quit
	default:
		if n, err := strconv.Atoi(key.String()); err == nil && n >= 1 && n <= len(m.items) {
			m.cursor = n - 1
			m.chosen = m.cursor
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m chooser) View() string {
	if m.chosen >= 0 || m.cancelled {
		return ""
	}

	var sb strings.Builder
	if m.title != "" {
		sb.WriteString(titleStyle.Render(m.title) + "\n\n")
	}
	for i, item := range m.items {
		line := fmt.Sprintf("%2d. %s", i+1, item)
		if i == m.cursor {
			sb.WriteString(cursorStyle.Render("> "+line) + "\n")
		} else {
			sb.WriteString("  " + line + "\n")
		}
	}
	sb.WriteString("\n" + helpStyle.Render("↑/↓ move • enter select • q back") + "\n")
	return sb.String()
}

// Choose shows items and returns the index picked.
func Choose(title string, items []string, opts ...Option) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("%s: nothing to choose from", title)
	}

	final, err := run(newChooser(title, items), opts)
	if err != nil {
		return -1, fmt.Errorf("menu failed: %w", err)
	}
	m := final.(chooser)
	if m.cancelled || m.chosen < 0 {
		return -1, ErrCancelled
	}
	return m.chosen, nil
}
