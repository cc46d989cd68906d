// Package dynamo provides the primitives shared by the spring network engine.
//
// The package defines the small value types and error taxonomy used by
// every other layer:
//
//   - [Vec2]: planar vector for positions, velocities and forces
//   - [ErrInvalidParameter], [ErrInvalidTopology], [ErrDegenerateGeometry],
//     [ErrDivisionByZero]: domain errors matched with errors.Is
//   - [SimulationError]: wraps a per-step failure with step/time/mass context
//   - [ParallelFor]: chunked parallel loop whose return acts as a barrier
//
// # Example
//
//	d := b.Sub(a)
//	if d.Len() == 0 {
//	    return dynamo.ErrDegenerateGeometry
//	}
//
// # Thread Safety
//
// Vec2 is a value type and safe to copy between goroutines. ParallelFor
// only guarantees that fn has returned for every chunk; callers must keep
// writes inside their own index range.
package dynamo
