package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/springnet/internal/dynamo"
	"github.com/san-kum/springnet/internal/metrics"
	"github.com/san-kum/springnet/internal/physics"
)

// Phase is the lifecycle position of a Simulator.
type Phase int

const (
	Uninitialized Phase = iota
	Configured
	Running
	Completed
	Failed
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Configured:
		return "configured"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Metric is observed after every step and summarised into Result.Metrics.
type Metric interface {
	Name() string
	Observe(net *physics.Network, t float64)
	Value() float64
	Reset()
}

// Observer is notified with the network state after every step, and once
// for the initial state with step 0.
type Observer interface {
	OnStep(net *physics.Network, step int, t float64)
}

type Config struct {
	Duration      float64
	Steps         int
	Gravity       float64
	Workers       int
	Elastic       metrics.ElasticModel
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Duration:      3.0,
		Steps:         12000,
		Gravity:       physics.DefaultGravity,
		Workers:       1,
		Elastic:       metrics.ElasticQuadratic,
		ValidateState: true,
	}
}

// Dt is the fixed step size Duration / Steps.
func (c Config) Dt() float64 {
	return c.Duration / float64(c.Steps)
}

func (c Config) Validate() error {
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return fmt.Errorf("%w: duration must be positive, got %v", dynamo.ErrInvalidParameter, c.Duration)
	}
	if c.Steps < 1 {
		return fmt.Errorf("%w: steps must be >= 1, got %d", dynamo.ErrInvalidParameter, c.Steps)
	}
	if !(c.Gravity >= 0) || math.IsInf(c.Gravity, 0) {
		return fmt.Errorf("%w: gravity magnitude must be >= 0, got %v", dynamo.ErrInvalidParameter, c.Gravity)
	}
	return nil
}

// Snapshot holds every mass's coordinates at one step, in mass order.
type Snapshot struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// Trajectory is the per-step list of snapshots, initial state first.
type Trajectory []Snapshot

// Mass returns the path of mass i as parallel coordinate slices.
func (tr Trajectory) Mass(i int) (xs, ys []float64) {
	xs = make([]float64, len(tr))
	ys = make([]float64, len(tr))
	for j, s := range tr {
		xs[j] = s.X[i]
		ys[j] = s.Y[i]
	}
	return xs, ys
}

// NumMasses is the snapshot width, 0 for an empty trajectory.
func (tr Trajectory) NumMasses() int {
	if len(tr) == 0 {
		return 0
	}
	return len(tr[0].X)
}

type Result struct {
	Trajectory    Trajectory
	Times         []float64
	InitialEnergy float64
	FinalEnergy   float64
	// Drift is the relative energy change in percent. It is only meaningful
	// when DriftDefined is set; DriftErr holds the reason otherwise.
	Drift        float64
	DriftDefined bool
	DriftErr     error
	Metrics      map[string]float64
	StepsTaken   int
}
