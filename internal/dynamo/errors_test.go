package dynamo

import (
	"errors"
	"testing"
)

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Step: 150, Time: 1.5, Mass: 2, Wrapped: ErrDegenerateGeometry}
	expected := "step 150 (t=1.5000) mass m2: dynamo: degenerate geometry (zero spring length)"
	if err.Error() != expected {
		t.Errorf("SimulationError.Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrDegenerateGeometry) {
		t.Error("SimulationError should unwrap to the wrapped sentinel")
	}

	noMass := &SimulationError{Step: 3, Time: 0.25, Mass: -1, Wrapped: ErrInvalidState}
	if noMass.Error() != "step 3 (t=0.2500): dynamo: invalid state (NaN or Inf detected)" {
		t.Errorf("unexpected message %q", noMass.Error())
	}
}

func TestMassError_Unwrap(t *testing.T) {
	var err error = &MassError{Mass: 4, Wrapped: ErrInvalidParameter}
	if !errors.Is(err, ErrInvalidParameter) {
		t.Error("MassError should unwrap to the wrapped sentinel")
	}

	var me *MassError
	if !errors.As(err, &me) || me.Mass != 4 {
		t.Errorf("errors.As failed: %v", me)
	}
}
