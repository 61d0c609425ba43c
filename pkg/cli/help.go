package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (e *Engine) PrintHelp(args ...string) {
	t := e.Theme
	if len(args) > 0 {
		// Find command in hierarchy
		curr := e.Commands
		var found *Command
		for _, arg := range args {
			var match *Command
			for _, c := range curr {
				if c.Name == arg || strings.HasPrefix(c.Name, arg) {
					match = c
					break
				}
			}
			if match == nil {
				break
			}
			found = match
			curr = match.Subs
		}
		if found != nil {
			e.PrintCommandHelp(found)
			return
		}
		for _, topic := range e.Topics {
			if topic.Name == args[0] || strings.HasPrefix(topic.Name, args[0]) {
				e.PrintTopicHelp(topic)
				return
			}
		}
	}
	out := e.Out
	fmt.Fprintf(out, "%s\n", t.Paint(t.Command.Bold(true), "progdemo - progress bar and storage demonstrator"))
	fmt.Fprintf(out, "\n%s\n", t.Paint(t.Heading, "Usage:"))
	fmt.Fprintf(out, "  progdemo %s\n", t.Paint(t.Notice, "[flags] <command>"))
	fmt.Fprintf(out, "\n%s\n", t.Paint(t.Heading, "Global Flags:"))
	fmt.Fprintf(out, "  %-20s %s\n", t.Paint(t.Command, "--help, -h"), t.Paint(t.Muted, "Show help [command | topic]"))
	for _, f := range e.GlobalFlags {
		short := ""
		if f.Short != "" {
			short = ", -" + f.Short
		}
		fmt.Fprintf(out, "  %-20s %s\n", t.Paint(t.Command, "--"+f.Name+short), t.Paint(t.Muted, f.Desc))
	}
	// Commands with an icon first, the rest under MISC
	fmt.Fprintln(out)
	var misc []*Command
	for _, c := range e.Commands {
		icon, ok := t.Icons[c.Name]
		if !ok {
			if c.Name != "help" {
				misc = append(misc, c)
			}
			continue
		}
		e.printCommandTree(c, "", true, icon)
		fmt.Fprintln(out)
	}
	if len(misc) > 0 {
		fmt.Fprintf(out, "%s %s\n", t.Bullet, t.Paint(t.Heading, "MISC"))
		for i, c := range misc {
			e.printCommandTree(c, "", i == len(misc)-1, "")
		}
		fmt.Fprintln(out)
	}
	if len(e.Topics) > 0 {
		fmt.Fprintf(out, "%s %s\n", t.TopicIcon, t.Paint(t.Heading, "Topics:"))
		for _, topic := range e.Topics {
			name := t.Paint(t.Command, topic.Name)
			padding := e.getPadding(topic.Name, 20)
			fmt.Fprintf(out, "  %s %s %s\n", name, padding, t.Paint(t.Muted, topic.Desc))
		}
	}
	fmt.Fprintf(out, "\nType '%s' for more details.\n", t.Paint(t.Notice, "progdemo help <command>"))
}

func (e *Engine) getPadding(name string, target int) string {
	t := e.Theme
	dots := target - lipgloss.Width(name)
	if dots < 2 {
		dots = 2
	}
	return t.Paint(t.Muted, strings.Repeat(".", dots))
}

func (e *Engine) printCommandTree(c *Command, indent string, isLast bool, icon string) {
	t := e.Theme
	prefix := t.Branch
	if isLast {
		prefix = t.Last
	}
	namePart := indent + prefix + " "
	if icon != "" {
		namePart += icon + " "
	}
	plain := namePart + c.Name
	namePart += t.Paint(t.Command, c.Name)
	padding := e.getPadding(plain, 34)
	fmt.Fprintf(e.Out, "%s %s %s\n", namePart, padding, t.Paint(t.Muted, c.Desc))
	newIndent := indent
	if isLast {
		newIndent += "    "
	} else {
		newIndent += t.Pipe + " "
	}
	for i, s := range c.Subs {
		e.printCommandTree(s, newIndent, i == len(c.Subs)-1, "")
	}
}

func (e *Engine) PrintCommandHelp(c *Command) {
	t := e.Theme
	out := e.Out
	fmt.Fprintf(out, "\n%s %s\n", t.Paint(t.Heading, "Command:"), t.Paint(t.Command, strings.ReplaceAll(getCmdPath(c), "/", " ")))
	fmt.Fprintf(out, "%s %s\n", t.Paint(t.Heading, "Description:"), t.Paint(t.Muted, c.Desc))
	fmt.Fprintln(out)
	if len(c.Subs) > 0 {
		fmt.Fprintf(out, "%s\n", t.Paint(t.Heading, "Subcommands:"))
		for i, s := range c.Subs {
			prefix := t.Branch
			if i == len(c.Subs)-1 {
				prefix = t.Last
			}
			fmt.Fprintf(out, "  %s %s %s\n", prefix, t.Paint(t.Command, pad(s.Name, 12)), t.Paint(t.Muted, s.Desc))
		}
		fmt.Fprintln(out)
	}
	if len(c.Args) > 0 {
		fmt.Fprintf(out, "%s\n", t.Paint(t.Heading, "Arguments:"))
		for _, a := range c.Args {
			fmt.Fprintf(out, "  %s %s\n", t.Paint(t.Notice, pad("<"+a.Name+">", 15)), t.Paint(t.Muted, a.Desc))
		}
		fmt.Fprintln(out)
	}
	if len(c.Flags) > 0 {
		fmt.Fprintf(out, "%s\n", t.Paint(t.Heading, "Flags:"))
		for _, f := range c.Flags {
			short := ""
			if f.Short != "" {
				short = ", -" + f.Short
			}
			fmt.Fprintf(out, "  %s %s\n", t.Paint(t.Command, pad("--"+f.Name+short, 15)), t.Paint(t.Muted, f.Desc))
		}
		fmt.Fprintln(out)
	}
	if len(c.Examples) > 0 {
		fmt.Fprintf(out, "%s\n", t.Paint(t.Heading, "Examples:"))
		for _, ex := range c.Examples {
			fmt.Fprintf(out, "  %s %s\n", t.Paint(t.Prompt, "$"), ex)
		}
		fmt.Fprintln(out)
	}
}

func (e *Engine) PrintTopicHelp(topic *Topic) {
	t := e.Theme
	fmt.Fprintf(e.Out, "\n%s %s\n", t.Paint(t.Heading, "Topic:"), t.Paint(t.Command, topic.Name))
	fmt.Fprintf(e.Out, "%s %s\n", t.Paint(t.Heading, "Description:"), t.Paint(t.Muted, topic.Desc))
	fmt.Fprintln(e.Out)
	fmt.Fprintf(e.Out, "%s\n\n", topic.Text)
}

// pad right-pads s to width visible cells before styling is applied.
func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
