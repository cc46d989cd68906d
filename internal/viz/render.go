package viz

import "github.com/san-kum/springnet/internal/physics"

// DrawScene draws frame of s onto c: spring segments, fixture crosses, a
// block per mass and, when trail > 0, the last trail positions of each mass.
func DrawScene(c *Canvas, s *Scene, frame int, b Bounds, trail int) {
	c.Clear()

	if trail > 0 {
		start := frame - trail
		if start < 0 {
			start = 0
		}
		for j := start; j < frame; j++ {
			snap := s.Trajectory[j]
			for i := range snap.X {
				x, y := c.Project(s.Position(physics.MassRef(i), j), b)
				c.Set(x, y)
			}
		}
	}

	for _, sp := range s.Springs {
		x0, y0 := c.Project(s.Position(sp.A, frame), b)
		x1, y1 := c.Project(s.Position(sp.B, frame), b)
		c.DrawLine(x0, y0, x1, y1)
	}

	for _, f := range s.Fixtures {
		x, y := c.Project(f, b)
		c.DrawLine(x-2, y, x+2, y)
		c.DrawLine(x, y-2, x, y+2)
	}

	for i := 0; i < s.Trajectory.NumMasses(); i++ {
		x, y := c.Project(s.Position(physics.MassRef(i), frame), b)
		c.Dot(x, y)
	}
}
