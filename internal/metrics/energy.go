package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/springnet/internal/dynamo"
	"github.com/san-kum/springnet/internal/physics"
)

// ElasticModel selects how a spring's stored energy is measured.
type ElasticModel int

const (
	// ElasticQuadratic is the Hookean potential 0.5*k*x².
	ElasticQuadratic ElasticModel = iota
	// ElasticLinear is k*x. It is not an energy; it is kept because older run
	// reports were computed with it.
	ElasticLinear
)

func (e ElasticModel) String() string {
	switch e {
	case ElasticQuadratic:
		return "quadratic"
	case ElasticLinear:
		return "linear"
	default:
		return "unknown"
	}
}

// ParseElasticModel accepts "quadratic" or "linear".
func ParseElasticModel(s string) (ElasticModel, error) {
	switch s {
	case "", "quadratic":
		return ElasticQuadratic, nil
	case "linear":
		return ElasticLinear, nil
	default:
		return 0, fmt.Errorf("%w: unknown elastic model %q", dynamo.ErrInvalidParameter, s)
	}
}

// Breakdown splits total mechanical energy into its parts.
type Breakdown struct {
	Kinetic       float64
	Gravitational float64
	Elastic       float64
}

func (b Breakdown) Total() float64 {
	return b.Kinetic + b.Gravitational + b.Elastic
}

// EnergyModel measures the mechanical energy of a network. Heights are
// measured from y = 0.
type EnergyModel struct {
	Gravity float64
	Elastic ElasticModel
}

func NewEnergyModel(gravity float64) EnergyModel {
	return EnergyModel{Gravity: gravity, Elastic: ElasticQuadratic}
}

// Breakdown evaluates every term at the network's current state.
func (e EnergyModel) Breakdown(net *physics.Network) Breakdown {
	var b Breakdown
	for _, m := range net.Masses() {
		b.Kinetic += 0.5 * m.M * m.Vel.LenSq()
		b.Gravitational += m.M * e.Gravity * m.Pos.Y
	}
	for i, s := range net.Springs() {
		x := net.SpringLength(i) - s.L0
		b.Elastic += e.elastic(s.K, x)
	}
	return b
}

func (e EnergyModel) Total(net *physics.Network) float64 {
	return e.Breakdown(net).Total()
}

func (e EnergyModel) elastic(k, x float64) float64 {
	if e.Elastic == ElasticLinear {
		return k * x
	}
	return 0.5 * k * x * x
}

// Drift is the relative change from initial to final in percent.
func Drift(initial, final float64) (float64, error) {
	if initial == 0 {
		return 0, fmt.Errorf("%w: initial energy is zero", dynamo.ErrDivisionByZero)
	}
	return (final - initial) / initial * 100, nil
}

// EnergyDrift tracks the largest absolute drift, in percent, seen while
// observing a run. Observations before a non-zero reference is known are
// skipped.
type EnergyDrift struct {
	name     string
	model    EnergyModel
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(model EnergyModel) *EnergyDrift {
	return &EnergyDrift{
		name:  "energy_drift_max_pct",
		model: model,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(net *physics.Network, t float64) {
	energy := e.model.Total(net)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if d, err := Drift(e.initial, energy); err == nil {
		e.maxDrift = math.Max(e.maxDrift, math.Abs(d))
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// EnergyRecorder keeps the total energy after every observation.
type EnergyRecorder struct {
	model  EnergyModel
	Series []float64
	Times  []float64
}

func NewEnergyRecorder(model EnergyModel, capacity int) *EnergyRecorder {
	return &EnergyRecorder{
		model:  model,
		Series: make([]float64, 0, capacity),
		Times:  make([]float64, 0, capacity),
	}
}

func (r *EnergyRecorder) OnStep(net *physics.Network, step int, t float64) {
	r.Series = append(r.Series, r.model.Total(net))
	r.Times = append(r.Times, t)
}
