package metrics

import (
	"math"

	"github.com/san-kum/springnet/internal/physics"
)

// MaxStretch reports the largest |length - rest length| over all springs and
// observations.
type MaxStretch struct {
	name    string
	max     float64
	samples int
}

func NewMaxStretch() *MaxStretch {
	return &MaxStretch{
		name: "max_stretch",
	}
}

func (s *MaxStretch) Name() string {
	return s.name
}

func (s *MaxStretch) Observe(net *physics.Network, t float64) {
	s.samples++
	for i, sp := range net.Springs() {
		x := math.Abs(net.SpringLength(i) - sp.L0)
		if x > s.max {
			s.max = x
		}
	}
}

func (s *MaxStretch) Value() float64 {
	return s.max
}

func (s *MaxStretch) Reset() {
	s.max = 0
	s.samples = 0
}
