package sim

import (
	"fmt"
	"sort"
)

// Linspace returns n evenly spaced points from start to stop inclusive. The
// last point is exactly stop.
func Linspace(start, stop float64, n int) []float64 {
	switch {
	case n <= 0:
		return []float64{}
	case n == 1:
		return []float64{start}
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

func validateSamples(samples []float64, duration float64) error {
	if !sort.Float64sAreSorted(samples) {
		return fmt.Errorf("sample times must be ascending")
	}
	if len(samples) > 0 && (samples[0] < 0 || samples[len(samples)-1] > duration) {
		return fmt.Errorf("sample times must lie in [0, %g], got [%g, %g]",
			duration, samples[0], samples[len(samples)-1])
	}
	return nil
}
