package integrators

import (
	"math"

	"github.com/san-kum/rlcsim/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// The last stage evaluates f at the new state, so k7 doubles as the end
// slope for dense output.
var dormandPrince = Tableau{
	Name:  "rk45",
	Order: 5,
	C:     []float64{0, a2, a3, a4, a5, 1, 1},
	A: [][]float64{
		{},
		{b21},
		{b31, b32},
		{b41, b42, b43},
		{b51, b52, b53, b54},
		{b61, b62, b63, b64, b65},
		{c1, 0, c3, c4, c5, c6},
	},
	B: []float64{c1, 0, c3, c4, c5, c6, 0},
	E: []float64{dc1, 0, dc3, dc4, dc5, dc6, dc7},
}

// RK45 is the Dormand-Prince 5(4) pair with step-size control and cubic
// Hermite dense output.
type RK45 struct {
	Explicit

	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		Explicit: Explicit{tab: &dormandPrince},
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	return r.advance(dyn, x, u, t, dt)
}

func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64, tol dynamo.Tolerance) (*dynamo.Trial, error) {
	xNew := r.advance(dyn, x, u, t, dt)
	k1 := r.k[0].Clone()
	k7 := r.k[len(r.k)-1].Clone()

	errNorm := dynamo.ErrorNorm(r.errorEstimate(dt), x, xNew, tol)
	if math.IsNaN(errNorm) || !xNew.IsValid() {
		errNorm = math.Inf(1)
	}

	return &dynamo.Trial{
		T0:      t,
		T1:      t + dt,
		X0:      x.Clone(),
		X:       xNew,
		ErrNorm: errNorm,
		NextDt:  dt * r.factor(errNorm),
		Interp:  dynamo.Hermite(t, t+dt, x.Clone(), xNew, k1, k7),
	}, nil
}

// factor scales dt by safety*err^(-1/5), limited to [minScale, maxScale].
// A rejected step never grows.
func (r *RK45) factor(errNorm float64) float64 {
	switch {
	case math.IsInf(errNorm, 1):
		return r.minScale
	case errNorm == 0:
		return r.maxScale
	}
	f := r.safety * math.Pow(errNorm, -0.2)
	if errNorm > 1 {
		f = math.Min(f, 1)
	}
	return math.Max(r.minScale, math.Min(r.maxScale, f))
}
