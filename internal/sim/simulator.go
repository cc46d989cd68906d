package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/springnet/internal/dynamo"
	"github.com/san-kum/springnet/internal/integrators"
	"github.com/san-kum/springnet/internal/metrics"
	"github.com/san-kum/springnet/internal/physics"
)

// Simulator owns a network for the duration of one run.
type Simulator struct {
	net       *physics.Network
	stepper   integrators.Stepper
	cfg       Config
	energy    metrics.EnergyModel
	phase     Phase
	step      int
	t         float64
	metrics   []Metric
	observers []Observer
}

// New validates cfg, takes ownership of net (freezing it) and sets every
// mass's force to its weight. A nil stepper selects Euler. A network that
// already belongs to a simulator, or has been stepped, is rejected.
func New(net *physics.Network, stepper integrators.Stepper, cfg Config) (*Simulator, error) {
	if net == nil {
		return nil, fmt.Errorf("%w: nil network", dynamo.ErrInvalidParameter)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if stepper == nil {
		stepper = integrators.NewEuler()
	}

	if net.IsFrozen() {
		return nil, fmt.Errorf("%w: network is owned by another simulator", dynamo.ErrAlreadyRun)
	}
	masses := net.Masses()
	for i := range masses {
		if len(masses[i].Trajectory) != 1 {
			return nil, &dynamo.MassError{Mass: i, Wrapped: fmt.Errorf("%w: trajectory has %d entries", dynamo.ErrAlreadyRun, len(masses[i].Trajectory))}
		}
	}

	net.Freeze()
	for i := range masses {
		masses[i].Force = physics.GravityForce(masses[i].M, cfg.Gravity)
	}

	return &Simulator{
		net:       net,
		stepper:   stepper,
		cfg:       cfg,
		energy:    metrics.EnergyModel{Gravity: cfg.Gravity, Elastic: cfg.Elastic},
		phase:     Configured,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}, nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Phase() Phase                { return s.phase }
func (s *Simulator) Network() *physics.Network   { return s.net }
func (s *Simulator) Config() Config              { return s.cfg }
func (s *Simulator) Energy() metrics.EnergyModel { return s.energy }
func (s *Simulator) StepCount() int              { return s.step }
func (s *Simulator) Time() float64               { return s.t }

// Run executes all configured steps. It can be called once; any failure
// leaves the simulator in the Failed phase and no result is returned.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if s.phase != Configured {
		return nil, fmt.Errorf("%w (phase %s)", dynamo.ErrAlreadyRun, s.phase)
	}
	s.phase = Running

	for _, m := range s.metrics {
		m.Reset()
	}

	dt := s.cfg.Dt()
	params := integrators.Params{
		Gravity: s.cfg.Gravity,
		Dt:      dt,
		Workers: s.cfg.Workers,
	}

	initialEnergy := s.energy.Total(s.net)
	s.notify()

	for i := 0; i < s.cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return nil, s.fail(ctx.Err())
		default:
		}

		if err := s.stepper.Step(s.net, params); err != nil {
			return nil, s.fail(err)
		}

		s.step++
		s.t = float64(s.step) * dt

		if s.cfg.ValidateState {
			if err := s.validate(); err != nil {
				return nil, s.fail(err)
			}
		}

		s.notify()
	}

	s.phase = Completed
	return s.result(initialEnergy, dt), nil
}

func (s *Simulator) notify() {
	for _, m := range s.metrics {
		m.Observe(s.net, s.t)
	}
	for _, obs := range s.observers {
		obs.OnStep(s.net, s.step, s.t)
	}
}

func (s *Simulator) validate() error {
	masses := s.net.Masses()
	for i := range masses {
		if !masses[i].Pos.IsFinite() || !masses[i].Vel.IsFinite() {
			return &dynamo.MassError{Mass: i, Wrapped: dynamo.ErrInvalidState}
		}
	}
	return nil
}

func (s *Simulator) fail(err error) error {
	s.phase = Failed

	simErr := &dynamo.SimulationError{Step: s.step, Time: s.t, Mass: -1, Wrapped: err}
	var me *dynamo.MassError
	if errors.As(err, &me) {
		simErr.Mass = me.Mass
		simErr.Wrapped = me.Wrapped
	}
	return simErr
}

func (s *Simulator) result(initialEnergy, dt float64) *Result {
	masses := s.net.Masses()
	steps := s.step + 1

	traj := make(Trajectory, steps)
	times := make([]float64, steps)
	for j := 0; j < steps; j++ {
		snap := Snapshot{
			X: make([]float64, len(masses)),
			Y: make([]float64, len(masses)),
		}
		for i := range masses {
			p := masses[i].Trajectory[j]
			snap.X[i] = p.X
			snap.Y[i] = p.Y
		}
		traj[j] = snap
		times[j] = float64(j) * dt
	}

	res := &Result{
		Trajectory:    traj,
		Times:         times,
		InitialEnergy: initialEnergy,
		FinalEnergy:   s.energy.Total(s.net),
		Metrics:       make(map[string]float64),
		StepsTaken:    s.step,
	}

	drift, err := metrics.Drift(res.InitialEnergy, res.FinalEnergy)
	if err != nil {
		res.DriftErr = err
	} else {
		res.Drift = drift
		res.DriftDefined = true
	}

	for _, m := range s.metrics {
		res.Metrics[m.Name()] = m.Value()
	}

	return res
}
