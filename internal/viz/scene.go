package viz

import (
	"fmt"
	"math"

	"github.com/san-kum/springnet/internal/dynamo"
	"github.com/san-kum/springnet/internal/physics"
	"github.com/san-kum/springnet/internal/sim"
)

// Bounds is an axis-aligned world rectangle.
type Bounds struct {
	MinX, MaxX, MinY, MaxY float64
}

func emptyBounds() Bounds {
	return Bounds{MinX: math.Inf(1), MaxX: math.Inf(-1), MinY: math.Inf(1), MaxY: math.Inf(-1)}
}

func (b *Bounds) include(p dynamo.Vec2) {
	b.MinX = math.Min(b.MinX, p.X)
	b.MaxX = math.Max(b.MaxX, p.X)
	b.MinY = math.Min(b.MinY, p.Y)
	b.MaxY = math.Max(b.MaxY, p.Y)
}

// Pad grows b by frac of its size on every side. A flat axis gets a unit
// extent first so nothing divides by zero.
func (b Bounds) Pad(frac float64) Bounds {
	if math.IsInf(b.MinX, 0) {
		return Bounds{MinX: -1, MaxX: 1, MinY: -1, MaxY: 1}
	}
	if b.MaxX-b.MinX == 0 {
		b.MinX, b.MaxX = b.MinX-0.5, b.MaxX+0.5
	}
	if b.MaxY-b.MinY == 0 {
		b.MinY, b.MaxY = b.MinY-0.5, b.MaxY+0.5
	}
	dx := (b.MaxX - b.MinX) * frac
	dy := (b.MaxY - b.MinY) * frac
	return Bounds{MinX: b.MinX - dx, MaxX: b.MaxX + dx, MinY: b.MinY - dy, MaxY: b.MaxY + dy}
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// SceneSpring is a spring reduced to its endpoints.
type SceneSpring struct {
	A, B physics.Endpoint
}

// Scene is everything needed to redraw a recorded run frame by frame.
type Scene struct {
	Name       string
	Fixtures   []dynamo.Vec2
	Springs    []SceneSpring
	Trajectory sim.Trajectory
	Times      []float64
	// Energy is optional; when present it has one value per frame.
	Energy []float64
}

// NewScene pairs the static part of net with a recorded trajectory. The
// trajectory must have one column per mass of net.
func NewScene(name string, net *physics.Network, traj sim.Trajectory, times, energy []float64) (*Scene, error) {
	if len(traj) == 0 {
		return nil, fmt.Errorf("%w: empty trajectory", dynamo.ErrInvalidParameter)
	}
	if traj.NumMasses() != net.NumMasses() {
		return nil, fmt.Errorf("%w: trajectory has %d masses, network %d",
			dynamo.ErrInvalidTopology, traj.NumMasses(), net.NumMasses())
	}
	if len(energy) != 0 && len(energy) != len(traj) {
		energy = nil
	}

	s := &Scene{
		Name:       name,
		Fixtures:   make([]dynamo.Vec2, net.NumFixtures()),
		Springs:    make([]SceneSpring, net.NumSprings()),
		Trajectory: traj,
		Times:      times,
		Energy:     energy,
	}
	for i := range s.Fixtures {
		s.Fixtures[i] = net.Fixture(i).Pos()
	}
	for i, sp := range net.Springs() {
		s.Springs[i] = SceneSpring{A: sp.A, B: sp.B}
	}
	return s, nil
}

func (s *Scene) Frames() int { return len(s.Trajectory) }

// Position resolves an endpoint at the given frame.
func (s *Scene) Position(e physics.Endpoint, frame int) dynamo.Vec2 {
	if e.IsFixture() {
		return s.Fixtures[e.Index]
	}
	snap := s.Trajectory[frame]
	return dynamo.Vec2{X: snap.X[e.Index], Y: snap.Y[e.Index]}
}

// Time of a frame, falling back to the frame index without a time axis.
func (s *Scene) Time(frame int) float64 {
	if frame < len(s.Times) {
		return s.Times[frame]
	}
	return float64(frame)
}

// FrameBounds covers the fixtures and the masses at one frame.
func (s *Scene) FrameBounds(frame int) Bounds {
	b := emptyBounds()
	for _, f := range s.Fixtures {
		b.include(f)
	}
	snap := s.Trajectory[frame]
	for i := range snap.X {
		b.include(dynamo.Vec2{X: snap.X[i], Y: snap.Y[i]})
	}
	return b
}

// Bounds covers the fixtures and every recorded position.
func (s *Scene) Bounds() Bounds {
	b := emptyBounds()
	for _, f := range s.Fixtures {
		b.include(f)
	}
	for _, snap := range s.Trajectory {
		for i := range snap.X {
			b.include(dynamo.Vec2{X: snap.X[i], Y: snap.Y[i]})
		}
	}
	return b
}
