package scenario

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"progdemo/pkg/display"
	"progdemo/pkg/storage"
)

const chunkKB = 50

type remoteFile struct {
	name string
	kb   int
}

type networkScenario struct{}

// Network simulates downloading five files with an overall bar and a
// transient bar per file. The received bytes land in downloads/.
func Network() Scenario { return networkScenario{} }

func (networkScenario) Name() string        { return "network" }
func (networkScenario) Title() string       { return "Network downloads" }
func (networkScenario) Description() string { return "Nested progress bars over simulated transfers" }

func (networkScenario) files(env *Env) []remoteFile {
	size := func(lo, hi int) int { return lo + env.Rand.IntN(hi-lo+1) }
	return []remoteFile{
		{"document.pdf", size(100, 500)},
		{"image.jpg", size(50, 200)},
		{"video.mp4", size(1000, 5000)},
		{"archive.zip", size(500, 2000)},
		{"music.mp3", size(30, 100)},
	}
}

func (s networkScenario) Run(ctx context.Context, env *Env) (Report, error) {
	files := s.files(env)
	totalKB := 0
	for _, f := range files {
		totalKB += f.kb
	}

	d := env.Display
	d.Print(fmt.Sprintf("Total files: %d\nTotal size: %d KB (%.2f MB)\n\n", len(files), totalKB, float64(totalKB)/1024))

	overall := d.StartBar("Overall progress", int64(totalKB)*1024, display.WithBytes(), display.WithColor("6"))
	defer overall.Done()

	var (
		successful int
		speedSum   float64
	)
	for _, f := range files {
		avg, err := s.download(ctx, env, f, overall)
		if err != nil {
			overall.Log(fmt.Sprintf("   ⚠️ %s: %v", f.name, err))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		successful++
		speedSum += avg

		if err := env.Pace(ctx, 500*time.Millisecond); err != nil {
			return nil, err
		}
	}
	overall.Done()
	d.Print("\nDownload complete\n")

	avg := 0.0
	if successful > 0 {
		avg = speedSum / float64(successful)
	}
	return Report{
		{Key: "total_files", Value: strconv.Itoa(len(files))},
		{Key: "total_size_kb", Value: strconv.Itoa(totalKB)},
		{Key: "successful", Value: strconv.Itoa(successful)},
		{Key: "avg_speed", Value: fmt.Sprintf("%.1f KB/s", avg)},
	}, nil
}

// download receives f chunk by chunk into a staging file in temp/ and
// moves the result into downloads/ under its real name. It returns the mean chunk speed in KB/s.
func (networkScenario) download(ctx context.Context, env *Env, f remoteFile, overall display.Bar) (float64, error) {
	tmp, _ := env.Storage.Path(storage.KeyTemp)
	// A unique staging name leaves any file already in temp/ alone.
	out, err := os.CreateTemp(tmp, f.name+".*.part")
	if err != nil {
		return 0, fmt.Errorf("failed to create partial file for %s: %w", f.name, err)
	}
	partial := out.Name()

	bar := env.Display.StartBar("  Downloading "+f.name, int64(f.kb)*1024,
		display.WithBytes(), display.WithColor("4"), display.Transient())
	w := io.MultiWriter(out, display.NewBarWriter(bar), display.NewBarWriter(overall))

	chunks := (f.kb + chunkKB - 1) / chunkKB
	speeds := make([]float64, 0, chunks)
	buf := make([]byte, chunkKB*1024)

	err = func() error {
		for c := range chunks {
			n := min(chunkKB, f.kb-c*chunkKB)
			speed := 50 + env.Rand.Float64()*150
			if err := env.Pace(ctx, time.Duration(float64(n)/speed*float64(time.Second))); err != nil {
				return err
			}

			chunk := buf[:n*1024]
			for i := range chunk {
				chunk[i] = byte(env.Rand.IntN(256))
			}
			if _, err := w.Write(chunk); err != nil {
				return err
			}

			speeds = append(speeds, speed)
			bar.SetPostfix("speed", fmt.Sprintf("%.1f KB/s", movingAverage(speeds, 5)), "chunk", fmt.Sprintf("%d/%d", c+1, chunks))
		}
		return nil
	}()
	bar.Done()

	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(partial)
		return 0, err
	}

	if res := env.Storage.MoveAs(partial, storage.KeyDownloads, f.name); !res.OK {
		os.Remove(partial)
		return 0, fmt.Errorf("%s", res.Message)
	}

	return movingAverage(speeds, len(speeds)), nil
}

// movingAverage averages the last n values of xs.
func movingAverage(xs []float64, n int) float64 {
	if len(xs) == 0 || n <= 0 {
		return 0
	}
	if len(xs) > n {
		xs = xs[len(xs)-n:]
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
