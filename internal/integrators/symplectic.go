package integrators

import "github.com/san-kum/springnet/internal/physics"

// Symplectic is the velocity-first variant: velocities are kicked with the
// start-of-step forces and positions then drift with the new velocities.
// Unlike Euler its energy error stays bounded for oscillators.
type Symplectic struct{}

func NewSymplectic() *Symplectic {
	return &Symplectic{}
}

func (s *Symplectic) Name() string { return "symplectic" }

func (s *Symplectic) Step(net *physics.Network, p Params) error {
	if err := forceStage(net, p); err != nil {
		return err
	}
	masses := net.Masses()
	velocityStage(masses, p)
	positionStage(masses, p)
	return nil
}
