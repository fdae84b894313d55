package analysis

import (
	"math"

	"github.com/san-kum/rlcsim/internal/metrics"
)

// Overshoot is the largest excursion beyond the final value, as a
// percentage of the total change. It is 0 for a monotone response.
func Overshoot(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	initial, final := values[0], values[len(values)-1]
	change := final - initial
	if change == 0 {
		return 0
	}

	worst := 0.0
	for _, v := range values {
		// Positive when v lies past final in the direction of travel.
		beyond := (v - final) * math.Copysign(1, change)
		worst = math.Max(worst, beyond)
	}
	return 100 * worst / math.Abs(change)
}

// PeakTime is the time of the largest absolute value of the response.
func PeakTime(times, values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	best := 0
	for i, v := range values {
		if math.Abs(v) > math.Abs(values[best]) {
			best = i
		}
	}
	return times[best]
}

// SettlingTime uses the 2% band of the run metrics.
func SettlingTime(times, values []float64) float64 {
	return metrics.Settling(times, values, metrics.DefaultSettlingBand)
}

// Summary collects the step-response figures for one run.
type Summary struct {
	Frequency float64
	Overshoot float64
	PeakTime  float64
	Settling  float64
}

func Summarize(times, values []float64) Summary {
	return Summary{
		Frequency: DominantFrequency(times, values),
		Overshoot: Overshoot(values),
		PeakTime:  PeakTime(times, values),
		Settling:  SettlingTime(times, values),
	}
}
