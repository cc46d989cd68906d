package sim

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/springnet/internal/dynamo"
	"github.com/san-kum/springnet/internal/integrators"
	"github.com/san-kum/springnet/internal/physics"
)

var _ = Describe("Simulator", func() {
	var (
		net *physics.Network
		cfg Config
	)

	BeforeEach(func() {
		net = physics.NewNetwork()
		f, err := net.AddFixture(dynamo.Vec2{Y: 2})
		Expect(err).NotTo(HaveOccurred())
		a, err := net.AddMass(1, dynamo.Vec2{X: 1, Y: 1}, dynamo.Vec2{})
		Expect(err).NotTo(HaveOccurred())
		b, err := net.AddMass(2, dynamo.Vec2{X: 2, Y: 0}, dynamo.Vec2{Y: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(net.AddSpring(1.2, 80, f, a)).To(Succeed())
		Expect(net.AddSpring(1.0, 60, a, b)).To(Succeed())

		cfg = Config{Duration: 0.5, Steps: 50, Gravity: 9.81, ValidateState: true}
	})

	Describe("lifecycle", func() {
		It("starts configured and completes after a run", func() {
			s, err := New(net, integrators.NewEuler(), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Phase()).To(Equal(Configured))

			_, err = s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Phase()).To(Equal(Completed))
			Expect(s.StepCount()).To(Equal(50))
			Expect(s.Time()).To(BeNumerically("~", 0.5, 1e-12))
		})

		It("rejects graph changes once configured", func() {
			_, err := New(net, nil, cfg)
			Expect(err).NotTo(HaveOccurred())

			_, err = net.AddMass(1, dynamo.Vec2{}, dynamo.Vec2{})
			Expect(err).To(MatchError(dynamo.ErrInvalidTopology))
		})

		It("refuses a network another simulator already ran", func() {
			s, _ := New(net, nil, cfg)
			_, err := s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			_, err = New(net, nil, cfg)
			Expect(err).To(MatchError(dynamo.ErrAlreadyRun))
		})

		It("refuses a second run", func() {
			s, _ := New(net, nil, cfg)
			_, err := s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Run(context.Background())
			Expect(err).To(MatchError(dynamo.ErrAlreadyRun))
		})
	})

	Describe("trajectory", func() {
		It("has one snapshot per step plus the initial state", func() {
			s, _ := New(net, nil, cfg)
			res, err := s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Trajectory).To(HaveLen(cfg.Steps + 1))
			Expect(res.Times).To(HaveLen(cfg.Steps + 1))
			Expect(res.Trajectory[0].X).To(Equal([]float64{1, 2}))
			Expect(res.Trajectory[0].Y).To(Equal([]float64{1, 0}))
			for i := 0; i < net.NumMasses(); i++ {
				Expect(net.Mass(i).Trajectory).To(HaveLen(cfg.Steps + 1))
			}
		})

		It("keeps snapshots in mass order", func() {
			s, _ := New(net, nil, cfg)
			res, _ := s.Run(context.Background())

			last := res.Trajectory[len(res.Trajectory)-1]
			Expect(last.X[0]).To(Equal(net.Mass(0).Pos.X))
			Expect(last.Y[1]).To(Equal(net.Mass(1).Pos.Y))
		})

		It("is identical with parallel stages", func() {
			seqNet := net
			s1, _ := New(seqNet, nil, cfg)
			r1, err := s1.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			parNet := physics.NewNetwork()
			f, _ := parNet.AddFixture(dynamo.Vec2{Y: 2})
			a, _ := parNet.AddMass(1, dynamo.Vec2{X: 1, Y: 1}, dynamo.Vec2{})
			b, _ := parNet.AddMass(2, dynamo.Vec2{X: 2, Y: 0}, dynamo.Vec2{Y: 1})
			parNet.AddSpring(1.2, 80, f, a)
			parNet.AddSpring(1.0, 60, a, b)

			parCfg := cfg
			parCfg.Workers = 4
			s2, _ := New(parNet, nil, parCfg)
			r2, err := s2.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(r2.Trajectory).To(Equal(r1.Trajectory))
		})
	})

	Describe("energy report", func() {
		It("reports drift relative to the initial energy", func() {
			s, _ := New(net, integrators.NewSymplectic(), cfg)
			res, err := s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(res.DriftDefined).To(BeTrue())
			Expect(res.Drift).To(BeNumerically("~",
				(res.FinalEnergy-res.InitialEnergy)/res.InitialEnergy*100, 1e-9))
		})
	})
})
