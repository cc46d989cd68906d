package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for network construction and simulation.
var (
	// ErrInvalidParameter indicates a non-positive mass or stiffness, a negative
	// rest length, or a non-positive duration or step count.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrInvalidTopology indicates a spring whose endpoints coincide or refer
	// to an entity that does not exist.
	ErrInvalidTopology = errors.New("dynamo: invalid topology")

	// ErrDegenerateGeometry indicates two connected endpoints at zero separation.
	ErrDegenerateGeometry = errors.New("dynamo: degenerate geometry (zero spring length)")

	// ErrDivisionByZero indicates a relative quantity with a zero reference value.
	ErrDivisionByZero = errors.New("dynamo: division by zero")

	// ErrInvalidState indicates a state with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrAlreadyRun indicates a second Run, or a network that a simulator
	// already owns.
	ErrAlreadyRun = errors.New("dynamo: simulation already run")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Mass    int
	Wrapped error
}

func (e *SimulationError) Error() string {
	if e.Mass >= 0 {
		return fmt.Sprintf("step %d (t=%.4f) mass m%d: %v", e.Step, e.Time, e.Mass, e.Wrapped)
	}
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// MassError attributes an error to the mass at index Mass. Steppers return it
// so the driver can report which mass failed.
type MassError struct {
	Mass    int
	Wrapped error
}

func (e *MassError) Error() string {
	return fmt.Sprintf("mass m%d: %v", e.Mass, e.Wrapped)
}

func (e *MassError) Unwrap() error {
	return e.Wrapped
}
