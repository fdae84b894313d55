package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/rlcsim/internal/dynamo"
)

// oscillator is x'' = -x written as a first-order system.
type oscillator struct{}

func (o *oscillator) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (o *oscillator) StateDim() int   { return 2 }
func (o *oscillator) ControlDim() int { return 0 }

func (o *oscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

func TestRK4Accuracy(t *testing.T) {
	dyn := &oscillator{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, nil, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestExplicitConvergenceOrder(t *testing.T) {
	tests := []struct {
		name  string
		integ *Explicit
	}{
		{"euler", NewEuler()},
		{"rk4", NewRK4()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errAt := func(dt float64) float64 {
				x := dynamo.State{1, 0}
				n := int(math.Round(1 / dt))
				for i := 0; i < n; i++ {
					x = tt.integ.Step(&oscillator{}, x, nil, float64(i)*dt, dt)
				}
				return math.Abs(x[0] - math.Cos(1))
			}

			// Halving dt divides the global error by about 2^order.
			ratio := errAt(0.02) / errAt(0.01)
			want := math.Pow(2, float64(tt.integ.Order()))
			if ratio < 0.7*want || ratio > 1.3*want {
				t.Errorf("error ratio %.2f, expected about %.0f", ratio, want)
			}
		})
	}
}

func TestExplicitNames(t *testing.T) {
	if NewEuler().Name() != "euler" || NewRK4().Name() != "rk4" || NewRK45().Name() != "rk45" {
		t.Error("unexpected integrator names")
	}
}
