package scenario

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"progdemo/pkg/display"
	"progdemo/pkg/storage"

	"golang.org/x/sync/errgroup"
)

type filesScenario struct{}

// Files generates test files, processes them on a worker pool and clears
// the temporary directory afterwards.
func Files() Scenario { return filesScenario{} }

func (filesScenario) Name() string  { return "files" }
func (filesScenario) Title() string { return "File processing" }
func (filesScenario) Description() string {
	return "Real file processing with results saved to processed/"
}

func (filesScenario) Run(ctx context.Context, env *Env) (Report, error) {
	gen := NewGenerator(env)
	d := env.Display
	d.Render(gen.Status())

	d.Print("\nSTEP 1: Generating test files\n")
	paths, err := gen.Generate(env.Settings.FileCount, env.Settings.Extensions)
	if err != nil {
		return nil, err
	}

	d.Print("\nSTEP 2: Processing files\n")
	delays := make([]time.Duration, len(paths))
	for i := range delays {
		delays[i] = env.between(300*time.Millisecond, 800*time.Millisecond)
	}

	bar := d.StartBar("Processing files", int64(len(paths)), display.WithUnit("files"), display.WithColor("2"))

	var (
		mu         sync.Mutex
		successful int
		failed     int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(env.Settings.Workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := env.Pace(gctx, delays[i]); err != nil {
				return err
			}

			name := filepath.Base(path)
			bar.SetDescription("Processing " + name)
			_, perr := gen.Process(path)

			mu.Lock()
			if perr != nil {
				failed++
			} else {
				successful++
			}
			ok, bad := successful, failed
			mu.Unlock()

			if perr != nil {
				bar.Log(fmt.Sprintf("   ⚠️ Failed to process %s: %v", name, perr))
			}
			bar.SetPostfix("ok", strconv.Itoa(ok), "failed", strconv.Itoa(bad))
			bar.Add(1)
			return nil
		})
	}
	err = g.Wait()
	bar.Done()
	if err != nil {
		return nil, err
	}

	d.Print("\nSTEP 3: Results\n")
	d.Print(fmt.Sprintf("Processed successfully: %d, failed: %d\n", successful, failed))

	d.Print("\nSTEP 4: Cleaning up temporary files\n")
	_, msg := env.Storage.DeleteAll(storage.KeyTemp)
	d.Print("🧹 " + msg + "\n")

	d.Render(gen.Status())

	rate := 0.0
	if len(paths) > 0 {
		rate = float64(successful) / float64(len(paths)) * 100
	}
	return Report{
		{Key: "total", Value: strconv.Itoa(len(paths))},
		{Key: "successful", Value: strconv.Itoa(successful)},
		{Key: "failed", Value: strconv.Itoa(failed)},
		{Key: "success_rate", Value: fmt.Sprintf("%.1f%%", rate)},
	}, nil
}
