package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

type bar struct {
	d       *consoleDisplay
	cfg     barConfig
	model   progress.Model
	desc    string
	postfix []string
	total   int64
	n       int64
	start   time.Time
	done    bool
}

func newBar(d *consoleDisplay, desc string, total int64, cfg barConfig) *bar {
	return &bar{
		d:   d,
		cfg: cfg,
		model: progress.New(
			progress.WithSolidFill(cfg.color),
			progress.WithWidth(cfg.width),
			progress.WithoutPercentage(),
		),
		desc:  desc,
		total: total,
		start: d.now(),
	}
}

func (b *bar) Add(n int64) {
	b.d.mu.Lock()
	defer b.d.mu.Unlock()

	if b.done {
		return
	}
	b.n += n
	b.d.redraw()
}

func (b *bar) SetDescription(desc string) {
	b.d.mu.Lock()
	defer b.d.mu.Unlock()

	b.desc = desc
	if !b.done {
		b.d.redraw()
	}
}

func (b *bar) SetPostfix(kv ...string) {
	b.d.mu.Lock()
	defer b.d.mu.Unlock()

	b.postfix = append(b.postfix[:0], kv...)
	if !b.done {
		b.d.redraw()
	}
}

func (b *bar) Log(msg string) {
	b.d.mu.Lock()
	defer b.d.mu.Unlock()

	b.d.log(msg)
}

func (b *bar) Done() {
	b.d.mu.Lock()
	defer b.d.mu.Unlock()

	if b.done {
		return
	}
	b.done = true
	b.d.finish(b)
}

// line renders the bar as:
//
//	desc:  45%|██████░░░░| 9/20 files [00:03<00:04, 2.50 files/s] ok=9, failed=0
func (b *bar) line() string {
	var sb strings.Builder

	if b.desc != "" {
		sb.WriteString(lipgloss.NewStyle().Bold(true).Render(b.desc) + ": ")
	}

	pct := 0.0
	if b.total > 0 {
		pct = float64(b.n) / float64(b.total)
		if pct > 1 {
			pct = 1
		}
	}
	fmt.Fprintf(&sb, "%3.0f%%|%s| ", pct*100, b.model.ViewAs(pct))

	if b.total > 0 {
		fmt.Fprintf(&sb, "%s/%s", b.count(b.n), b.count(b.total))
	} else {
		sb.WriteString(b.count(b.n))
	}
	if !b.cfg.bytes {
		sb.WriteString(" " + b.cfg.unit)
	}

	elapsed := b.d.now().Sub(b.start)
	rate := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(b.n) / secs
	}
	remaining := "?"
	if rate > 0 && b.total > 0 {
		left := float64(b.total-b.n) / rate
		if left < 0 {
			left = 0
		}
		remaining = clock(time.Duration(left * float64(time.Second)))
	}
	fmt.Fprintf(&sb, " [%s<%s, %s]", clock(elapsed), remaining, b.rate(rate))

	if len(b.postfix) > 0 {
		pairs := make([]string, 0, len(b.postfix)/2+1)
		for i := 0; i < len(b.postfix); i += 2 {
			if i+1 < len(b.postfix) {
				pairs = append(pairs, b.postfix[i]+"="+b.postfix[i+1])
			} else {
				pairs = append(pairs, b.postfix[i])
			}
		}
		sb.WriteString(" " + strings.Join(pairs, ", "))
	}

	return sb.String()
}

func (b *bar) count(n int64) string {
	if b.cfg.bytes {
		if n < 0 {
			n = 0
		}
		return humanize.Bytes(uint64(n))
	}
	return fmt.Sprintf("%d", n)
}

func (b *bar) rate(r float64) string {
	if b.cfg.bytes {
		return humanize.Bytes(uint64(r)) + "/s"
	}
	return fmt.Sprintf("%.2f %s/s", r, b.cfg.unit)
}

// clock formats d as mm:ss, or h:mm:ss past the hour.
func clock(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
