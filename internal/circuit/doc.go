// Package circuit models second-order RLC circuits as dynamical systems.
//
// Both topologies implement [dynamo.System] with a two-component state and a
// one-component input (the source):
//
//   - [SeriesRLC]: state (i_L, v_C), input V_source in volts
//   - [ParallelRLC]: state (v_C, i_L), input I_source in amps
//
// They also implement [dynamo.Hamiltonian] (stored energy ½Li² + ½Cv²) and
// [dynamo.Linearizable], since both are linear.
//
// # Damping
//
// [Classify] labels a circuit from α and ω₀ = 1/√(LC):
//
//	regime := circuit.Classify(circuit.Series, 63.2, 1e-3, 1e-6)
//	// regime == circuit.Underdamped
//
// The label depends only on topology, R, L and C, never on the excitation
// or the initial state.
package circuit
