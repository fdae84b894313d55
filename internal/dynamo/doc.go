// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// integration of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: fixed-step integrator interface
//   - [AdaptiveIntegrator]: embedded-error stepper producing a [Trial]
//   - [Controller]: source of the input vector u (excitations)
//   - [Metric]: per-run observer reduced to a single number
//
// # Example
//
//	dyn := circuit.NewSeries(63.2, 1e-3, 1e-6)
//	s := sim.New(dyn, integrators.NewRK45(), control.NewStep(5))
//	result, _ := s.Run(ctx, x0, dynamo.DefaultConfig(), sim.Linspace(0, 1e-3, 1000))
//
// # Thread Safety
//
// Systems are immutable and safe for concurrent use. Integrators may keep
// scratch buffers and metrics accumulate state, so each concurrent run must
// build its own.
package dynamo
