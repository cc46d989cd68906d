// Package physics holds the spring network: its entity graph and force model.
//
// A [Network] is a single-owner arena of entities:
//
//   - [Fixture]: immovable anchor point
//   - [Mass]: dynamic particle with position, velocity, force and trajectory
//   - [Spring]: Hookean connector between two endpoints
//
// Springs refer to their endpoints through an [Endpoint] tag (fixture or
// mass plus an arena index) rather than pointers, and every endpoint keeps
// a [Connection] per attached spring.
//
// # Forces
//
// [SpringForce] gives the pull of one connection, [GravityForce] the weight
// of a mass. [Network.NetForce] superposes both for one mass:
//
//	f, err := net.NetForce(i, 9.81)
//	if errors.Is(err, dynamo.ErrDegenerateGeometry) {
//	    // two connected endpoints coincide
//	}
//
// Gravity acts along -Y and g is a non-negative magnitude.
package physics
