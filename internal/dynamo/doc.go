// Package dynamo provides the numeric primitives shared by the simulator and
// the gain search engines.
//
//   - [State]: vector representing system state
//   - [System]: interface for continuous-time models (dX/dt = f(X, u, t), y = g(X, u))
//   - [Integrator]: numerical stepper interface
//   - [Metric]: accumulator observed once per output sample
//   - [Config]: time grid and divergence guard for one simulation
//
// # Errors
//
// Simulation failures wrap [ErrUnstable], [ErrInvalidState] or
// [ErrInvalidModel], so callers can branch with errors.Is:
//
//	if errors.Is(err, dynamo.ErrUnstable) {
//	    // score the candidate as a failure and continue searching
//	}
package dynamo
