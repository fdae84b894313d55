// Package control provides the excitation sources that drive a circuit.
//
// Sources implement the [dynamo.Controller] interface and feed the input
// vector u of a [dynamo.System]:
//
//   - [None]: zero input, for natural response
//   - [Step]: constant input switched on at t = 0
//
// # Usage
//
//	src := control.NewStep(5.0) // 5 V into a series RLC
//	s := sim.New(circuit.NewSeries(r, l, c), integ, src)
//
// The simulator holds u constant across each integration step, which is
// exact for both sources.
package control
