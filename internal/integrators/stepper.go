package integrators

import (
	"github.com/san-kum/springnet/internal/dynamo"
	"github.com/san-kum/springnet/internal/physics"
)

// minChunk is the smallest number of masses handed to one worker.
const minChunk = 64

// Params are the per-step scalars shared by all masses.
type Params struct {
	Gravity float64
	Dt      float64
	Workers int
}

// Stepper advances every mass of a network by one time step.
type Stepper interface {
	Name() string
	Step(net *physics.Network, p Params) error
}

// forceStage overwrites each mass's Force with its net force at the current
// positions. When several masses fail the lowest index is reported.
func forceStage(net *physics.Network, p Params) error {
	masses := net.Masses()
	errs := make([]error, len(masses))

	dynamo.ParallelFor(len(masses), p.Workers, minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			f, err := net.NetForce(i, p.Gravity)
			if err != nil {
				errs[i] = err
				continue
			}
			masses[i].Force = f
		}
	})

	for i, err := range errs {
		if err != nil {
			return &dynamo.MassError{Mass: i, Wrapped: err}
		}
	}
	return nil
}

// positionStage moves each mass with its current velocity and records the
// new position.
func positionStage(masses []physics.Mass, p Params) {
	dynamo.ParallelFor(len(masses), p.Workers, minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			m := &masses[i]
			m.Pos = m.Pos.Add(m.Vel.Scale(p.Dt))
			m.Trajectory = append(m.Trajectory, m.Pos)
		}
	})
}

// velocityStage applies the force computed in the force stage.
func velocityStage(masses []physics.Mass, p Params) {
	dynamo.ParallelFor(len(masses), p.Workers, minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			m := &masses[i]
			m.Vel = m.Vel.Add(m.Force.Scale(p.Dt / m.M))
		}
	})
}
