package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the styles and glyphs used by help screens.
type Theme struct {
	Heading lipgloss.Style
	Command lipgloss.Style
	Prompt  lipgloss.Style
	Notice  lipgloss.Style
	Muted   lipgloss.Style

	Bullet string
	Branch string
	Last   string
	Pipe   string

	// Icons decorate top-level commands in the overview, keyed by name.
	Icons     map[string]string
	TopicIcon string
}

func DefaultTheme() *Theme {
	return &Theme{
		Heading: lipgloss.NewStyle().Bold(true),
		Command: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Notice:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Muted:   lipgloss.NewStyle().Faint(true),

		Bullet: "•",
		Branch: "├──",
		Last:   "└──",
		Pipe:   "│  ",

		Icons: map[string]string{
			"scenario": "🎬",
			"storage":  "💾",
			"settings": "⚙️",
		},
		TopicIcon: "💡",
	}
}

func (t *Theme) Paint(style lipgloss.Style, text string) string {
	return style.Render(text)
}
