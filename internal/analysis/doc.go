// Package analysis extracts figures of merit from sampled transients.
//
//   - [DominantFrequency]: ringing frequency from the FFT power spectrum
//   - [Overshoot], [PeakTime], [SettlingTime]: step-response figures
//   - [NewPhasePortrait]: (i_L, v_C) trajectory of a run
//
// # Checking the ringing frequency
//
// An underdamped run should ring at ω_d/2π:
//
//	f := analysis.DominantFrequency(r.Times, r.Values)
//	want := r.DampedFrequency / (2 * math.Pi)
package analysis
