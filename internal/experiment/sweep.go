package experiment

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/springnet/internal/config"
)

// SweepPoint is the outcome of one step count in a sweep.
type SweepPoint struct {
	Integrator   string
	Steps        int
	Dt           float64
	Drift        float64
	DriftDefined bool
	FinalX       []float64
	FinalY       []float64
}

// Sweep runs the scenario once per (integrator, step count) pair, in
// parallel up to limit runs at a time. Each run builds its own network.
// Points come back ordered by integrator, then step count.
func Sweep(ctx context.Context, sc *config.Scenario, integrators []string, steps []int, limit int) ([]SweepPoint, error) {
	if len(integrators) == 0 {
		integrators = []string{sc.Integrator}
	}

	points := make([]SweepPoint, len(integrators)*len(steps))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, integ := range integrators {
		for j, n := range steps {
			idx := i*len(steps) + j
			run := sc.Clone()
			run.Integrator = integ
			run.Timesteps = n
			run.Save = false

			n := n
			g.Go(func() error {
				out, err := Run(ctx, run, Options{})
				if err != nil {
					return err
				}
				res := out.Result
				last := res.Trajectory[len(res.Trajectory)-1]
				points[idx] = SweepPoint{
					Integrator:   run.Integrator,
					Steps:        n,
					Dt:           out.Config.Dt(),
					Drift:        res.Drift,
					DriftDefined: res.DriftDefined,
					FinalX:       last.X,
					FinalY:       last.Y,
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(points, func(a, b int) bool {
		if points[a].Integrator != points[b].Integrator {
			return points[a].Integrator < points[b].Integrator
		}
		return points[a].Steps < points[b].Steps
	})
	return points, nil
}

// Halvings returns base, 2*base, 4*base, ... with n entries.
func Halvings(base, n int) []int {
	steps := make([]int, n)
	for i := range steps {
		steps[i] = base << i
	}
	return steps
}

// Monotone reports whether |drift| never grows as the step count grows,
// within tol percentage points.
func Monotone(points []SweepPoint, tol float64) bool {
	for i := 1; i < len(points); i++ {
		if points[i].Integrator != points[i-1].Integrator {
			continue
		}
		if math.Abs(points[i].Drift) > math.Abs(points[i-1].Drift)+tol {
			return false
		}
	}
	return true
}
