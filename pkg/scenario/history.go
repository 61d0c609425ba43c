package scenario

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"progdemo/pkg/common"
)

// Run is one recorded scenario execution.
type Run struct {
	ID       string
	Scenario string
	Started  time.Time
	Duration time.Duration
	Report   Report
	Err      error
}

// History collects the runs of a session.
type History struct {
	mu   sync.Mutex
	runs []Run
}

func (h *History) Add(r Run) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runs = append(h.runs, r)
}

// Runs returns the recorded runs, oldest first.
func (h *History) Runs() []Run {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Run(nil), h.runs...)
}

// Output summarizes the session, or returns nil when nothing ran.
func (h *History) Output() *common.Output {
	runs := h.Runs()
	if len(runs) == 0 {
		return nil
	}

	t := &common.Table{Header: []string{"Run", "Scenario", "Duration", "Result"}}
	for _, r := range runs {
		result := "ok"
		if r.Err != nil {
			result = "error: " + r.Err.Error()
		} else if len(r.Report) > 0 {
			parts := make([]string, 0, len(r.Report))
			for _, kv := range r.Report {
				parts = append(parts, kv.Key+"="+kv.Value)
			}
			result = strings.Join(parts, " ")
		}
		t.Append(shortID(r.ID), r.Scenario, fmt.Sprintf("%.2fs", r.Duration.Seconds()), result)
	}

	return &common.Output{
		Message: fmt.Sprintf("Session summary: %d scenario(s) run", len(runs)),
		Table:   t,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
