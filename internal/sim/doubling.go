package sim

import (
	"math"

	"github.com/san-kum/rlcsim/internal/dynamo"
)

type ordered interface {
	Order() int
}

// doubling turns a fixed-step integrator into an adaptive one by comparing a
// full step with two half steps.
type doubling struct {
	inner dynamo.Integrator
	order int
}

// StepDoubling wraps inner with step-doubling error control. Integrators
// that already implement dynamo.AdaptiveIntegrator are returned unchanged.
func StepDoubling(inner dynamo.Integrator) dynamo.AdaptiveIntegrator {
	if a, ok := inner.(dynamo.AdaptiveIntegrator); ok {
		return a
	}
	order := 1
	if o, ok := inner.(ordered); ok {
		order = o.Order()
	}
	return &doubling{inner: inner, order: order}
}

func (d *doubling) Order() int { return d.order }

func (d *doubling) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	return d.inner.Step(dyn, x, u, t, dt)
}

func (d *doubling) StepAdaptive(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64, tol dynamo.Tolerance) (*dynamo.Trial, error) {
	full := d.inner.Step(dyn, x, u, t, dt)
	half := d.inner.Step(dyn, x, u, t, dt/2)
	x2 := d.inner.Step(dyn, half, u, t+dt/2, dt/2)

	// Richardson estimate of the error left in the two half steps.
	denom := math.Pow(2, float64(d.order)) - 1
	errEst := x2.Sub(full).Scale(1 / denom)
	errNorm := dynamo.ErrorNorm(errEst, x, x2, tol)
	if math.IsNaN(errNorm) || !x2.IsValid() {
		errNorm = math.Inf(1)
	}

	factor := 5.0
	switch {
	case math.IsInf(errNorm, 1):
		factor = 0.2
	case errNorm > 0:
		factor = 0.9 * math.Pow(errNorm, -1/float64(d.order+1))
		if errNorm > 1 {
			factor = math.Min(factor, 1)
		}
		factor = math.Max(0.2, math.Min(5, factor))
	}

	trial := &dynamo.Trial{
		T0:      t,
		T1:      t + dt,
		X0:      x.Clone(),
		X:       x2,
		ErrNorm: errNorm,
		NextDt:  dt * factor,
	}
	if trial.Accepted() {
		trial.Interp = dynamo.Hermite(t, t+dt, trial.X0, x2, dyn.Derive(x, u, t), dyn.Derive(x2, u, t+dt))
	}
	return trial, nil
}

// InitialStep picks a first step from the size of the state and its first
// two derivatives, following Hairer, Nørsett and Wanner.
func InitialStep(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, order int, tol dynamo.Tolerance, span float64) float64 {
	f0 := dyn.Derive(x, u, t)

	scale := make([]float64, len(x))
	for i := range x {
		scale[i] = tol.Abs + tol.Rel*math.Abs(x[i])
	}
	rms := func(v dynamo.State) float64 {
		if len(v) == 0 {
			return 0
		}
		sum := 0.0
		for i := range v {
			r := v[i] / scale[i]
			sum += r * r
		}
		return math.Sqrt(sum / float64(len(v)))
	}

	d0, d1 := rms(x), rms(f0)
	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}
	h0 = math.Min(h0, span)

	x1 := x.Add(f0.Scale(h0))
	f1 := dyn.Derive(x1, u, t+h0)
	d2 := rms(f1.Sub(f0)) / h0

	var h1 float64
	if d1 <= 1e-15 && d2 <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 1/float64(order+1))
	}

	h := math.Min(100*h0, h1)
	if !(h > 0) || math.IsInf(h, 0) {
		h = 1e-6
	}
	return math.Min(h, span)
}
