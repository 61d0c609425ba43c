package scenario

import (
	"context"
	"fmt"
	"iter"
	"math"
	"strconv"
	"time"

	"progdemo/pkg/display"
)

type dataScenario struct{}

// Data feeds generated values through a calculation and reports timing
// statistics on the bar.
func Data() Scenario { return dataScenario{} }

func (dataScenario) Name() string        { return "data" }
func (dataScenario) Title() string       { return "Data processing" }
func (dataScenario) Description() string { return "Manual progress control with custom metrics" }

type calculation struct {
	value, sqrt, log, sin, cos float64
}

// values yields count values, pacing each one. It stops early when ctx
// is cancelled; the caller checks ctx.Err afterwards.
func (dataScenario) values(ctx context.Context, env *Env, count int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for i := range count {
			if env.Pace(ctx, env.between(10*time.Millisecond, 50*time.Millisecond)) != nil {
				return
			}
			if !yield(i, i*(1+env.Rand.IntN(100))) {
				return
			}
		}
	}
}

func (dataScenario) calculate(ctx context.Context, env *Env, v int) (calculation, error) {
	if err := env.Pace(ctx, env.between(50*time.Millisecond, 200*time.Millisecond)); err != nil {
		return calculation{}, err
	}
	x := float64(v)
	root := 1.0
	if v > 0 {
		root = math.Sqrt(x)
	}
	return calculation{
		value: x,
		sqrt:  root,
		log:   math.Log(x + 1),
		sin:   math.Sin(x),
		cos:   math.Cos(x),
	}, nil
}

func (s dataScenario) Run(ctx context.Context, env *Env) (Report, error) {
	count := env.Settings.DataCount
	d := env.Display
	d.Print(fmt.Sprintf("Generating %d items...\n", count))

	bar := d.StartBar("Processing data", int64(count), display.WithUnit("items"), display.WithColor("5"))
	defer bar.Done()

	var (
		results            []calculation
		minT, maxT, totalT time.Duration
	)
	minT = time.Duration(math.MaxInt64)

	for i, v := range s.values(ctx, env, count) {
		start := time.Now()
		r, err := s.calculate(ctx, env, v)
		if err != nil {
			return nil, err
		}
		took := time.Since(start)

		minT = min(minT, took)
		maxT = max(maxT, took)
		totalT += took
		results = append(results, r)

		bar.SetPostfix(
			"min", ms(minT),
			"max", ms(maxT),
			"avg", ms(totalT/time.Duration(i+1)),
		)
		bar.Add(1)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bar.Done()
	d.Print("\nProcessing complete\n")

	if len(results) == 0 {
		minT = 0
	}
	avg := time.Duration(0)
	if len(results) > 0 {
		avg = totalT / time.Duration(len(results))
	}
	return Report{
		{Key: "processed_items", Value: strconv.Itoa(len(results))},
		{Key: "avg_time_ms", Value: msValue(avg)},
		{Key: "min_time_ms", Value: msValue(minT)},
		{Key: "max_time_ms", Value: msValue(maxT)},
	}, nil
}

func msValue(d time.Duration) string {
	return fmt.Sprintf("%.1f", float64(d)/float64(time.Millisecond))
}

func ms(d time.Duration) string {
	return msValue(d) + "ms"
}
