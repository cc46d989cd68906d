package integrators

import "github.com/san-kum/springnet/internal/physics"

// Euler is the reference scheme: forces from the positions at the start of
// the step, positions advanced with the previous velocity, then velocities
// updated with those forces. Each stage covers all masses before the next
// one starts.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(net *physics.Network, p Params) error {
	if err := forceStage(net, p); err != nil {
		return err
	}
	masses := net.Masses()
	positionStage(masses, p)
	velocityStage(masses, p)
	return nil
}
