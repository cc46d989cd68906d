package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/springnet/internal/dynamo"
)

// Connection is one endpoint's view of an attached spring.
type Connection struct {
	Other Endpoint
	K     float64
	L0    float64
}

// Fixture is an immovable anchor point.
type Fixture struct {
	pos   dynamo.Vec2
	conns []Connection
}

func (f *Fixture) Pos() dynamo.Vec2 { return f.pos }

// Connections returns the springs attached to the fixture.
func (f *Fixture) Connections() []Connection { return f.conns }

// Mass is a dynamic particle. Pos, Vel, Force and Trajectory are written by
// the integrator; M and the connections never change after creation.
type Mass struct {
	M          float64
	Pos        dynamo.Vec2
	Vel        dynamo.Vec2
	Force      dynamo.Vec2
	Trajectory []dynamo.Vec2

	conns []Connection
}

// Connections returns the springs attached to the mass.
func (m *Mass) Connections() []Connection { return m.conns }

// Spring is a Hookean connector between two distinct endpoints.
type Spring struct {
	L0 float64
	K  float64
	A  Endpoint
	B  Endpoint
}

// Network owns every fixture, mass and spring of a simulation.
type Network struct {
	fixtures []Fixture
	masses   []Mass
	springs  []Spring
	frozen   bool
}

func NewNetwork() *Network {
	return &Network{}
}

// AddFixture appends a fixture at pos and returns its endpoint.
func (n *Network) AddFixture(pos dynamo.Vec2) (Endpoint, error) {
	if n.frozen {
		return Endpoint{}, fmt.Errorf("%w: network is frozen", dynamo.ErrInvalidTopology)
	}
	if !pos.IsFinite() {
		return Endpoint{}, fmt.Errorf("%w: fixture position %v", dynamo.ErrInvalidParameter, pos)
	}
	n.fixtures = append(n.fixtures, Fixture{pos: pos})
	return FixtureRef(len(n.fixtures) - 1), nil
}

// AddMass appends a mass and seeds its trajectory with pos.
func (n *Network) AddMass(m float64, pos, vel dynamo.Vec2) (Endpoint, error) {
	if n.frozen {
		return Endpoint{}, fmt.Errorf("%w: network is frozen", dynamo.ErrInvalidTopology)
	}
	if !(m > 0) || math.IsInf(m, 0) {
		return Endpoint{}, fmt.Errorf("%w: mass must be positive, got %v", dynamo.ErrInvalidParameter, m)
	}
	if !pos.IsFinite() || !vel.IsFinite() {
		return Endpoint{}, fmt.Errorf("%w: mass state pos=%v vel=%v", dynamo.ErrInvalidParameter, pos, vel)
	}

	n.masses = append(n.masses, Mass{
		M:          m,
		Pos:        pos,
		Vel:        vel,
		Trajectory: []dynamo.Vec2{pos},
	})
	return MassRef(len(n.masses) - 1), nil
}

// AddSpring connects a and b. The connection is registered on both
// endpoints or on neither.
func (n *Network) AddSpring(l0, k float64, a, b Endpoint) error {
	if n.frozen {
		return fmt.Errorf("%w: network is frozen", dynamo.ErrInvalidTopology)
	}
	if !(l0 >= 0) || math.IsInf(l0, 0) {
		return fmt.Errorf("%w: rest length must be >= 0, got %v", dynamo.ErrInvalidParameter, l0)
	}
	if !(k > 0) || math.IsInf(k, 0) {
		return fmt.Errorf("%w: stiffness must be positive, got %v", dynamo.ErrInvalidParameter, k)
	}
	if a == b {
		return fmt.Errorf("%w: spring endpoints are both %s", dynamo.ErrInvalidTopology, a)
	}
	if !n.Has(a) {
		return fmt.Errorf("%w: unknown endpoint %s", dynamo.ErrInvalidTopology, a)
	}
	if !n.Has(b) {
		return fmt.Errorf("%w: unknown endpoint %s", dynamo.ErrInvalidTopology, b)
	}

	n.attach(a, Connection{Other: b, K: k, L0: l0})
	n.attach(b, Connection{Other: a, K: k, L0: l0})
	n.springs = append(n.springs, Spring{L0: l0, K: k, A: a, B: b})
	return nil
}

func (n *Network) attach(e Endpoint, c Connection) {
	if e.IsMass() {
		n.masses[e.Index].conns = append(n.masses[e.Index].conns, c)
		return
	}
	n.fixtures[e.Index].conns = append(n.fixtures[e.Index].conns, c)
}

// Freeze makes the network write-once; later Add calls fail.
func (n *Network) Freeze()        { n.frozen = true }
func (n *Network) IsFrozen() bool { return n.frozen }

// Has reports whether e refers to an entity of this network.
func (n *Network) Has(e Endpoint) bool {
	switch e.Kind {
	case FixtureKind:
		return e.Index >= 0 && e.Index < len(n.fixtures)
	case MassKind:
		return e.Index >= 0 && e.Index < len(n.masses)
	default:
		return false
	}
}

func (n *Network) NumFixtures() int { return len(n.fixtures) }
func (n *Network) NumMasses() int   { return len(n.masses) }
func (n *Network) NumSprings() int  { return len(n.springs) }

func (n *Network) Fixture(i int) *Fixture { return &n.fixtures[i] }
func (n *Network) Mass(i int) *Mass       { return &n.masses[i] }
func (n *Network) Spring(i int) Spring    { return n.springs[i] }

// Masses exposes the mass arena for in-place updates by an integrator.
func (n *Network) Masses() []Mass { return n.masses }

func (n *Network) Springs() []Spring { return n.springs }

// Position returns the current position of either kind of endpoint.
func (n *Network) Position(e Endpoint) dynamo.Vec2 {
	if e.IsMass() {
		return n.masses[e.Index].Pos
	}
	return n.fixtures[e.Index].pos
}

// Connections returns the adjacency list of e.
func (n *Network) Connections(e Endpoint) []Connection {
	if e.IsMass() {
		return n.masses[e.Index].conns
	}
	return n.fixtures[e.Index].conns
}

// SpringLength is the current separation of the spring's endpoints.
func (n *Network) SpringLength(i int) float64 {
	s := n.springs[i]
	return n.Position(s.B).Sub(n.Position(s.A)).Len()
}
