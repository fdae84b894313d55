// Package viz renders sweep results in the terminal.
//
//   - [SummaryTable]: one row per resistance with its damping regime
//   - [Chart]: asciigraph plot of the reported quantity against time in µs
//   - [SweepView]: Bubble Tea viewer stepping through a sweep
//
// # Key Bindings
//
//	h/l, ←/→  - previous/next resistance
//	tab       - cycle single, overlay and phase views
//	t         - cycle color themes
//	q         - quit
package viz
