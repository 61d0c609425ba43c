// Package display implementation for terminal-based output.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"progdemo/pkg/common"

	"github.com/charmbracelet/lipgloss"
)

const clearLine = "\x1b[1A\x1b[2K"

// consoleDisplay handles terminal output. Active bars are kept at the
// bottom of the output and redrawn in place whenever something changes.
type consoleDisplay struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
	bars    []*bar
	drawn   int
	now     func() time.Time
}

// NewConsole creates a Display that writes to standard error.
func NewConsole() Display {
	return NewWriterDisplay(os.Stderr)
}

// NewWriterDisplay creates a Display that writes to the provided io.Writer.
func NewWriterDisplay(w io.Writer) Display {
	return &consoleDisplay{
		out: w,
		now: time.Now,
	}
}

func (d *consoleDisplay) StartBar(desc string, total int64, opts ...BarOption) Bar {
	cfg := defaultBarConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	b := newBar(d, desc, total, cfg)
	d.bars = append(d.bars, b)
	d.redraw()
	return b
}

// Print writes a message directly to the output writer.
func (d *consoleDisplay) Print(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.clear()
	fmt.Fprint(d.out, msg)
	d.draw()
}

func (d *consoleDisplay) Log(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.log(msg)
}

func (d *consoleDisplay) SetVerbose(v bool) {
	d.mu.Lock()
	d.verbose = v
	d.mu.Unlock()
}

func (d *consoleDisplay) Verbose() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.verbose
}

func (d *consoleDisplay) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.clear()
	for _, b := range d.bars {
		if !b.cfg.transient {
			fmt.Fprintln(d.out, b.line())
		}
	}
	d.bars = nil
}

// log must be called with mu held.
func (d *consoleDisplay) log(msg string) {
	d.clear()
	fmt.Fprintln(d.out, msg)
	d.draw()
}

func (d *consoleDisplay) redraw() {
	d.clear()
	d.draw()
}

func (d *consoleDisplay) clear() {
	if d.drawn > 0 {
		fmt.Fprint(d.out, strings.Repeat(clearLine, d.drawn))
	}
	d.drawn = 0
}

func (d *consoleDisplay) draw() {
	for _, b := range d.bars {
		fmt.Fprintln(d.out, b.line())
	}
	d.drawn = len(d.bars)
}

func (d *consoleDisplay) finish(b *bar) {
	idx := -1
	for i, a := range d.bars {
		if a == b {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	d.clear()
	d.bars = append(d.bars[:idx], d.bars[idx+1:]...)
	if !b.cfg.transient {
		fmt.Fprintln(d.out, b.line())
	}
	d.draw()
}

// Render displays structured data from an Output struct to the console.
func (d *consoleDisplay) Render(out *common.Output) {
	if out == nil {
		return
	}

	var sb strings.Builder
	if out.Message != "" {
		sb.WriteString(out.Message + "\n")
	}

	for _, kv := range out.KV {
		fmt.Fprintf(&sb, "%-12s %s\n", kv.Key+":", kv.Value)
	}

	if out.Table != nil {
		renderTable(&sb, out.Table)
	}

	d.Print(sb.String())
}

func renderTable(sb *strings.Builder, t *common.Table) {
	if len(t.Header) == 0 {
		return
	}

	widths := make([]int, len(t.Header))
	for i, h := range t.Header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	header := lipgloss.NewStyle().Bold(true)
	for i, h := range t.Header {
		sb.WriteString(header.Render(pad(h, widths[i])) + "  ")
	}
	sb.WriteString("\n")

	totalWidth := 0
	for _, w := range widths {
		totalWidth += w + 2
	}
	sb.WriteString(strings.Repeat("-", totalWidth) + "\n")

	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				sb.WriteString(pad(cell, widths[i]) + "  ")
			}
		}
		sb.WriteString("\n")
	}
}

func pad(s string, w int) string {
	if n := w - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
