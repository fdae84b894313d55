package metrics

import "github.com/san-kum/rlcsim/internal/dynamo"

// SourceEnergy integrates the power u[0]·x[0] delivered by the source with
// the trapezoidal rule. State component 0 is the quantity the source drives:
// the loop current for a voltage source, the node voltage for a current source.
type SourceEnergy struct {
	name   string
	total  float64
	lastT  float64
	lastP  float64
	primed bool
}

func NewSourceEnergy() *SourceEnergy {
	return &SourceEnergy{name: "source_energy"}
}

func (s *SourceEnergy) Name() string { return s.name }

func (s *SourceEnergy) Observe(x dynamo.State, u dynamo.Control, t float64) {
	p := 0.0
	if len(u) > 0 && len(x) > 0 {
		p = u[0] * x[0]
	}
	if s.primed {
		s.total += 0.5 * (p + s.lastP) * (t - s.lastT)
	}
	s.lastT, s.lastP, s.primed = t, p, true
}

func (s *SourceEnergy) Value() float64 { return s.total }

func (s *SourceEnergy) Reset() {
	s.total = 0
	s.lastT, s.lastP, s.primed = 0, 0, false
}
