package metrics

import (
	"math"

	"github.com/san-kum/rlcsim/internal/dynamo"
)

// DefaultSettlingBand is the fraction of the response span used as the
// settling band.
const DefaultSettlingBand = 0.02

// SettlingTime is the last sampled time at which state component index lies
// outside band·max(|final|, max|y − final|) of its final value.
type SettlingTime struct {
	name  string
	index int
	band  float64
	times []float64
	ys    []float64
}

func NewSettlingTime(index int, band float64) *SettlingTime {
	if band <= 0 {
		band = DefaultSettlingBand
	}
	return &SettlingTime{
		name:  "settling_time",
		index: index,
		band:  band,
	}
}

func (s *SettlingTime) Name() string { return s.name }

func (s *SettlingTime) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if s.index >= len(x) {
		return
	}
	s.times = append(s.times, t)
	s.ys = append(s.ys, x[s.index])
}

func (s *SettlingTime) Value() float64 {
	return Settling(s.times, s.ys, s.band)
}

func (s *SettlingTime) Reset() {
	s.times = s.times[:0]
	s.ys = s.ys[:0]
}

// Settling computes the settling time of a sampled signal against its last value.
func Settling(times, ys []float64, band float64) float64 {
	if len(ys) == 0 {
		return 0
	}
	final := ys[len(ys)-1]

	span := math.Abs(final)
	for _, y := range ys {
		span = math.Max(span, math.Abs(y-final))
	}
	limit := band * span
	if limit == 0 {
		return times[0]
	}

	for i := len(ys) - 1; i >= 0; i-- {
		if math.Abs(ys[i]-final) > limit {
			if i+1 < len(times) {
				return times[i+1]
			}
			return times[i]
		}
	}
	return times[0]
}
