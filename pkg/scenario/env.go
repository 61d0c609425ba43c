// Package scenario holds the progress-bar demonstrations. Each scenario
// simulates work against the storage directories and reports its figures.
package scenario

import (
	"context"
	"math/rand/v2"
	"time"

	"progdemo/pkg/display"
	"progdemo/pkg/settings"
	"progdemo/pkg/storage"
)

// Pace waits for d to simulate work. It returns early with the context
// error when ctx is cancelled.
type Pace func(ctx context.Context, d time.Duration) error

// Sleep is the real-time Pace.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NoPace never waits.
func NoPace(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// Scaled returns a Pace sleeping factor times the requested duration.
func Scaled(factor float64) Pace {
	if factor <= 0 {
		return NoPace
	}
	if factor == 1 {
		return Sleep
	}
	return func(ctx context.Context, d time.Duration) error {
		return Sleep(ctx, time.Duration(float64(d)*factor))
	}
}

// Env is what a scenario runs against.
type Env struct {
	Display  display.Display
	Storage  storage.Manager
	Settings settings.Values
	Pace     Pace
	History  *History
	// Rand is not safe for concurrent use; draw values before fanning out.
	Rand *rand.Rand
}

// NewEnv builds an Env paced by s.Pace with a randomly seeded source.
func NewEnv(d display.Display, store storage.Manager, s settings.Values) *Env {
	return &Env{
		Display:  d,
		Storage:  store,
		Settings: s,
		Pace:     Scaled(s.Pace),
		History:  &History{},
		Rand:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

func (e *Env) between(lo, hi time.Duration) time.Duration {
	return lo + time.Duration(e.Rand.Int64N(int64(hi-lo)+1))
}
