package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/springnet/internal/dynamo"
)

func TestAddSpring_AttachesBothEndpoints(t *testing.T) {
	net := NewNetwork()
	f, _ := net.AddFixture(dynamo.Vec2{X: 0, Y: 10})
	m, err := net.AddMass(1, dynamo.Vec2{X: -3, Y: 3}, dynamo.Vec2{})
	if err != nil {
		t.Fatalf("add mass failed: %v", err)
	}

	if err := net.AddSpring(7.615, 5000, f, m); err != nil {
		t.Fatalf("add spring failed: %v", err)
	}

	fc := net.Connections(f)
	mc := net.Connections(m)
	if len(fc) != 1 || len(mc) != 1 {
		t.Fatalf("expected one connection per endpoint, got %d and %d", len(fc), len(mc))
	}
	if fc[0] != (Connection{Other: m, K: 5000, L0: 7.615}) {
		t.Errorf("fixture connection = %+v", fc[0])
	}
	if mc[0] != (Connection{Other: f, K: 5000, L0: 7.615}) {
		t.Errorf("mass connection = %+v", mc[0])
	}
	if net.NumSprings() != 1 {
		t.Errorf("expected 1 spring, got %d", net.NumSprings())
	}
}

func TestAddSpring_OrderIndependent(t *testing.T) {
	build := func(swap bool) *Network {
		net := NewNetwork()
		a, _ := net.AddMass(1, dynamo.Vec2{X: 0}, dynamo.Vec2{})
		b, _ := net.AddMass(2, dynamo.Vec2{X: 1}, dynamo.Vec2{})
		if swap {
			a, b = b, a
		}
		if err := net.AddSpring(0.5, 10, a, b); err != nil {
			t.Fatalf("add spring failed: %v", err)
		}
		return net
	}

	n1, n2 := build(false), build(true)
	for i := 0; i < 2; i++ {
		c1 := n1.Mass(i).Connections()
		c2 := n2.Mass(i).Connections()
		if len(c1) != 1 || len(c2) != 1 || c1[0] != c2[0] {
			t.Errorf("mass %d connections differ: %+v vs %+v", i, c1, c2)
		}
	}
}

func TestAddSpring_Errors(t *testing.T) {
	tests := []struct {
		name string
		l0   float64
		k    float64
		a, b Endpoint
		want error
	}{
		{"same endpoint", 1, 10, MassRef(0), MassRef(0), dynamo.ErrInvalidTopology},
		{"unknown mass", 1, 10, MassRef(0), MassRef(5), dynamo.ErrInvalidTopology},
		{"unknown fixture", 1, 10, FixtureRef(3), MassRef(0), dynamo.ErrInvalidTopology},
		{"negative rest length", -1, 10, FixtureRef(0), MassRef(0), dynamo.ErrInvalidParameter},
		{"zero stiffness", 1, 0, FixtureRef(0), MassRef(0), dynamo.ErrInvalidParameter},
		{"negative stiffness", 1, -5, FixtureRef(0), MassRef(0), dynamo.ErrInvalidParameter},
		{"NaN stiffness", 1, math.NaN(), FixtureRef(0), MassRef(0), dynamo.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := NewNetwork()
			net.AddFixture(dynamo.Vec2{Y: 1})
			net.AddMass(1, dynamo.Vec2{}, dynamo.Vec2{})

			err := net.AddSpring(tt.l0, tt.k, tt.a, tt.b)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if net.NumSprings() != 0 {
				t.Error("failed spring must not be stored")
			}
			if len(net.Mass(0).Connections()) != 0 || len(net.Fixture(0).Connections()) != 0 {
				t.Error("failed spring must not attach to any endpoint")
			}
		})
	}
}

func TestAddMass_Errors(t *testing.T) {
	tests := []struct {
		name string
		m    float64
		pos  dynamo.Vec2
	}{
		{"zero mass", 0, dynamo.Vec2{}},
		{"negative mass", -1, dynamo.Vec2{}},
		{"infinite mass", math.Inf(1), dynamo.Vec2{}},
		{"NaN position", 1, dynamo.Vec2{X: math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := NewNetwork()
			net.AddMass(1, dynamo.Vec2{}, dynamo.Vec2{})

			_, err := net.AddMass(tt.m, tt.pos, dynamo.Vec2{})
			if !errors.Is(err, dynamo.ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
			if net.NumMasses() != 1 {
				t.Errorf("existing masses must survive a failed add, got %d", net.NumMasses())
			}
		})
	}
}

func TestAddMass_SeedsTrajectory(t *testing.T) {
	net := NewNetwork()
	pos := dynamo.Vec2{X: -3, Y: 3}
	m, _ := net.AddMass(1, pos, dynamo.Vec2{X: 1})

	traj := net.Mass(m.Index).Trajectory
	if len(traj) != 1 || traj[0] != pos {
		t.Errorf("trajectory = %v, want [%v]", traj, pos)
	}
}

func TestFreeze(t *testing.T) {
	net := NewNetwork()
	f, _ := net.AddFixture(dynamo.Vec2{})
	m, _ := net.AddMass(1, dynamo.Vec2{X: 1}, dynamo.Vec2{})
	net.Freeze()

	if _, err := net.AddFixture(dynamo.Vec2{}); !errors.Is(err, dynamo.ErrInvalidTopology) {
		t.Errorf("AddFixture after freeze: %v", err)
	}
	if _, err := net.AddMass(1, dynamo.Vec2{}, dynamo.Vec2{}); !errors.Is(err, dynamo.ErrInvalidTopology) {
		t.Errorf("AddMass after freeze: %v", err)
	}
	if err := net.AddSpring(1, 1, f, m); !errors.Is(err, dynamo.ErrInvalidTopology) {
		t.Errorf("AddSpring after freeze: %v", err)
	}
}

func TestSpringLength(t *testing.T) {
	net := NewNetwork()
	f, _ := net.AddFixture(dynamo.Vec2{X: 0, Y: 0})
	m, _ := net.AddMass(1, dynamo.Vec2{X: 3, Y: 4}, dynamo.Vec2{})
	net.AddSpring(1, 1, f, m)

	if got := net.SpringLength(0); math.Abs(got-5) > 1e-12 {
		t.Errorf("SpringLength = %v, want 5", got)
	}

	net.Mass(0).Pos = dynamo.Vec2{X: 6, Y: 8}
	if got := net.SpringLength(0); math.Abs(got-10) > 1e-12 {
		t.Errorf("SpringLength after move = %v, want 10", got)
	}
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		in      string
		want    Endpoint
		wantErr bool
	}{
		{"f0", FixtureRef(0), false},
		{"m12", MassRef(12), false},
		{" M3 ", MassRef(3), false},
		{"x1", Endpoint{}, true},
		{"m", Endpoint{}, true},
		{"m-1", Endpoint{}, true},
		{"fa", Endpoint{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEndpoint(tt.in)
			if tt.wantErr {
				if !errors.Is(err, dynamo.ErrInvalidTopology) {
					t.Fatalf("expected ErrInvalidTopology, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if round, _ := ParseEndpoint(got.String()); round != got {
				t.Errorf("String() %q does not parse back", got.String())
			}
		})
	}
}
