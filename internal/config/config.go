package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/springnet/internal/dynamo"
	"github.com/san-kum/springnet/internal/metrics"
	"github.com/san-kum/springnet/internal/physics"
	"github.com/san-kum/springnet/internal/sim"
)

const (
	DefaultTime       = 3.0
	DefaultTimesteps  = 12000
	DefaultGravity    = physics.DefaultGravity
	DefaultIntegrator = "euler"
	DefaultElastic    = "quadratic"
	DefaultWorkers    = 1
)

// Scenario is everything needed to build and run one spring network.
type Scenario struct {
	Name       string          `yaml:"name"`
	Time       float64         `yaml:"time"`
	Timesteps  int             `yaml:"timesteps"`
	Gravity    float64         `yaml:"gravity"`
	Save       bool            `yaml:"save"`
	Integrator string          `yaml:"integrator"`
	Elastic    string          `yaml:"elastic"`
	Workers    int             `yaml:"workers"`
	Fixtures   []FixtureConfig `yaml:"fixtures"`
	Masses     []MassConfig    `yaml:"masses"`
	Springs    []SpringConfig  `yaml:"springs"`
}

type FixtureConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type MassConfig struct {
	M  float64 `yaml:"m"`
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
	VX float64 `yaml:"vx"`
	VY float64 `yaml:"vy"`
}

// SpringConfig names its endpoints with f<i>/m<i> references.
type SpringConfig struct {
	L0   float64  `yaml:"l0"`
	K    float64  `yaml:"k"`
	Conn []string `yaml:"conn"`
}

func DefaultScenario() *Scenario {
	return &Scenario{
		Name:       "custom",
		Time:       DefaultTime,
		Timesteps:  DefaultTimesteps,
		Gravity:    DefaultGravity,
		Integrator: DefaultIntegrator,
		Elastic:    DefaultElastic,
		Workers:    DefaultWorkers,
	}
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults, so absent keys keep their default.
func Parse(data []byte) (*Scenario, error) {
	sc := DefaultScenario()
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func Save(path string, sc *Scenario) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy, so presets are never mutated by callers.
func (s *Scenario) Clone() *Scenario {
	c := *s
	c.Fixtures = append([]FixtureConfig(nil), s.Fixtures...)
	c.Masses = append([]MassConfig(nil), s.Masses...)
	c.Springs = make([]SpringConfig, len(s.Springs))
	for i, sp := range s.Springs {
		c.Springs[i] = SpringConfig{L0: sp.L0, K: sp.K, Conn: append([]string(nil), sp.Conn...)}
	}
	return &c
}

// Build creates the network described by the scenario. Errors name the
// offending entity.
func (s *Scenario) Build() (*physics.Network, error) {
	net := physics.NewNetwork()

	for i, f := range s.Fixtures {
		if _, err := net.AddFixture(dynamo.Vec2{X: f.X, Y: f.Y}); err != nil {
			return nil, fmt.Errorf("fixture f%d: %w", i, err)
		}
	}

	for i, m := range s.Masses {
		pos := dynamo.Vec2{X: m.X, Y: m.Y}
		vel := dynamo.Vec2{X: m.VX, Y: m.VY}
		if _, err := net.AddMass(m.M, pos, vel); err != nil {
			return nil, fmt.Errorf("mass m%d: %w", i, err)
		}
	}

	for i, sp := range s.Springs {
		if len(sp.Conn) != 2 {
			return nil, fmt.Errorf("spring %d: %w: want 2 endpoints, got %d", i, dynamo.ErrInvalidTopology, len(sp.Conn))
		}
		a, err := physics.ParseEndpoint(sp.Conn[0])
		if err != nil {
			return nil, fmt.Errorf("spring %d: %w", i, err)
		}
		b, err := physics.ParseEndpoint(sp.Conn[1])
		if err != nil {
			return nil, fmt.Errorf("spring %d: %w", i, err)
		}
		if err := net.AddSpring(sp.L0, sp.K, a, b); err != nil {
			return nil, fmt.Errorf("spring %d: %w", i, err)
		}
	}

	return net, nil
}

// SimConfig converts the scalar part of the scenario.
func (s *Scenario) SimConfig() (sim.Config, error) {
	elastic, err := metrics.ParseElasticModel(s.Elastic)
	if err != nil {
		return sim.Config{}, err
	}

	cfg := sim.Config{
		Duration:      s.Time,
		Steps:         s.Timesteps,
		Gravity:       s.Gravity,
		Workers:       s.Workers,
		Elastic:       elastic,
		ValidateState: true,
	}
	return cfg, cfg.Validate()
}
