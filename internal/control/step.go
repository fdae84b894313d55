package control

import "github.com/san-kum/rlcsim/internal/dynamo"

// Step applies a constant source from t = 0 onward: a voltage for series
// circuits, a current for parallel ones.
type Step struct {
	Magnitude float64
}

func NewStep(magnitude float64) *Step {
	return &Step{Magnitude: magnitude}
}

func (s *Step) Compute(state dynamo.State, t float64) dynamo.Control {
	return dynamo.Control{s.Magnitude}
}
