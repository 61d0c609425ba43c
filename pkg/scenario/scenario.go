package scenario

import (
	"context"
	"fmt"
	"strings"
	"time"

	"progdemo/pkg/common"

	"github.com/google/uuid"
)

// Report is the figures a scenario returns, in display order.
type Report []common.KV

func (r Report) Get(key string) (string, bool) {
	for _, kv := range r {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Scenario is one demonstration.
type Scenario interface {
	// Name is the command-line name, e.g. "files".
	Name() string
	Title() string
	Description() string
	Run(ctx context.Context, env *Env) (Report, error)
}

// All returns every scenario in menu order.
func All() []Scenario {
	return []Scenario{Files(), Network(), Data()}
}

// Lookup finds a scenario by name.
func Lookup(name string) (Scenario, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range All() {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Execute runs s between a start banner and a duration line, and records
// the outcome in env.History.
func Execute(ctx context.Context, s Scenario, env *Env) (Run, error) {
	env.Display.Print(fmt.Sprintf("\n=== Starting scenario: %s ===\nDescription: %s\n\n", s.Title(), s.Description()))

	start := time.Now()
	report, err := s.Run(ctx, env)
	run := Run{
		ID:       uuid.NewString(),
		Scenario: s.Name(),
		Started:  start,
		Duration: time.Since(start),
		Report:   report,
		Err:      err,
	}
	if env.History != nil {
		env.History.Add(run)
	}

	env.Display.Print(fmt.Sprintf("\n=== Scenario finished in %.2fs ===\n\n", run.Duration.Seconds()))
	if err != nil {
		return run, fmt.Errorf("scenario %s: %w", s.Name(), err)
	}
	env.Display.Render(&common.Output{KV: report})
	return run, nil
}
