package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/springnet/internal/config"
	"github.com/san-kum/springnet/internal/metrics"
	"github.com/san-kum/springnet/internal/sim"
)

// Options select the optional instrumentation of a run.
type Options struct {
	RecordEnergy bool
}

// Outcome is a finished run together with its optional energy series.
type Outcome struct {
	Scenario *config.Scenario
	Config   sim.Config
	Result   *sim.Result
	// Energy has one sample per snapshot when RecordEnergy was set.
	Energy []float64
}

type Experiment struct {
	scenario  *config.Scenario
	registry  *Registry
	simulator *sim.Simulator
	recorder  *metrics.EnergyRecorder
}

func New(sc *config.Scenario, registry *Registry) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Experiment{scenario: sc, registry: registry}
}

// Setup builds the network and simulator and attaches the default metrics.
func (e *Experiment) Setup(opts Options) error {
	cfg, err := e.scenario.SimConfig()
	if err != nil {
		return err
	}
	integ, err := e.registry.GetIntegrator(e.scenario.Integrator)
	if err != nil {
		return err
	}
	net, err := e.scenario.Build()
	if err != nil {
		return err
	}

	s, err := sim.New(net, integ, cfg)
	if err != nil {
		return err
	}
	for _, m := range DefaultMetrics(s.Energy()) {
		s.AddMetric(m)
	}
	if opts.RecordEnergy {
		e.recorder = metrics.NewEnergyRecorder(s.Energy(), cfg.Steps+1)
		s.AddObserver(e.recorder)
	}

	e.simulator = s
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	res, err := e.simulator.Run(ctx)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Scenario: e.scenario,
		Config:   e.simulator.Config(),
		Result:   res,
	}
	if e.recorder != nil {
		out.Energy = e.recorder.Series
	}
	return out, nil
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func DefaultMetrics(model metrics.EnergyModel) []sim.Metric {
	return []sim.Metric{
		metrics.NewEnergyDrift(model),
		metrics.NewMaxStretch(),
	}
}

// Run is the one-call form of New, Setup and Run.
func Run(ctx context.Context, sc *config.Scenario, opts Options) (*Outcome, error) {
	e := New(sc, nil)
	if err := e.Setup(opts); err != nil {
		return nil, err
	}
	return e.Run(ctx)
}
