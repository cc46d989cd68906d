package physics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/springnet/internal/dynamo"
)

// EndpointKind tells which arena an Endpoint indexes.
type EndpointKind uint8

const (
	FixtureKind EndpointKind = iota
	MassKind
)

func (k EndpointKind) String() string {
	switch k {
	case FixtureKind:
		return "fixture"
	case MassKind:
		return "mass"
	default:
		return "unknown"
	}
}

// Endpoint identifies a fixture or a mass of a Network by index.
type Endpoint struct {
	Kind  EndpointKind
	Index int
}

func FixtureRef(i int) Endpoint { return Endpoint{Kind: FixtureKind, Index: i} }
func MassRef(i int) Endpoint    { return Endpoint{Kind: MassKind, Index: i} }

func (e Endpoint) IsMass() bool    { return e.Kind == MassKind }
func (e Endpoint) IsFixture() bool { return e.Kind == FixtureKind }

// String returns the short name used in scenario files: f0, m3, ...
func (e Endpoint) String() string {
	switch e.Kind {
	case FixtureKind:
		return "f" + strconv.Itoa(e.Index)
	case MassKind:
		return "m" + strconv.Itoa(e.Index)
	default:
		return "?" + strconv.Itoa(e.Index)
	}
}

// ParseEndpoint parses "f<i>" or "m<i>". It only checks syntax; range
// checks happen when the endpoint is attached to a Network.
func ParseEndpoint(s string) (Endpoint, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Endpoint{}, fmt.Errorf("%w: endpoint %q: want f<index> or m<index>", dynamo.ErrInvalidTopology, s)
	}

	var kind EndpointKind
	switch s[0] {
	case 'f', 'F':
		kind = FixtureKind
	case 'm', 'M':
		kind = MassKind
	default:
		return Endpoint{}, fmt.Errorf("%w: endpoint %q: want f<index> or m<index>", dynamo.ErrInvalidTopology, s)
	}

	idx, err := strconv.Atoi(s[1:])
	if err != nil || idx < 0 {
		return Endpoint{}, fmt.Errorf("%w: endpoint %q: bad index", dynamo.ErrInvalidTopology, s)
	}
	return Endpoint{Kind: kind, Index: idx}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (e Endpoint) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Endpoint) UnmarshalText(b []byte) error {
	parsed, err := ParseEndpoint(string(b))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
