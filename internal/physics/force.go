package physics

import (
	"fmt"

	"github.com/san-kum/springnet/internal/dynamo"
)

// DefaultGravity is the standard gravitational acceleration magnitude.
const DefaultGravity = 9.81

// SpringForce returns the force a spring of stiffness k and rest length l0
// exerts on a body at from whose other end sits at to. A stretched spring
// pulls toward to, a compressed one pushes away.
func SpringForce(from, to dynamo.Vec2, k, l0 float64) (dynamo.Vec2, error) {
	d := to.Sub(from)
	length := d.Len()
	if length == 0 {
		return dynamo.Vec2{}, dynamo.ErrDegenerateGeometry
	}
	return d.Scale(k * (length - l0) / length), nil
}

// GravityForce is the weight of mass m, pointing along -Y.
func GravityForce(m, g float64) dynamo.Vec2 {
	return dynamo.Vec2{Y: -m * g}
}

// NetForce sums every spring attached to mass i plus its weight. The
// accumulator starts at zero, so nothing carries over between calls.
func (n *Network) NetForce(i int, g float64) (dynamo.Vec2, error) {
	m := &n.masses[i]

	var f dynamo.Vec2
	for _, c := range m.conns {
		sf, err := SpringForce(m.Pos, n.Position(c.Other), c.K, c.L0)
		if err != nil {
			return dynamo.Vec2{}, fmt.Errorf("spring m%d-%s: %w", i, c.Other, err)
		}
		f = f.Add(sf)
	}

	return f.Add(GravityForce(m.M, g)), nil
}
