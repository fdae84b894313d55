package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/rlcsim/internal/dynamo"
)

func TestRK45_EnergyConservation(t *testing.T) {
	integrator := NewRK45()
	dyn := &oscillator{}
	x0 := dynamo.State{1.0, 0.0}

	initialEnergy := dyn.Energy(x0)
	x := x0.Clone()
	dt := 0.01

	for i := 0; i < 10000; i++ {
		x = integrator.Step(dyn, x, nil, float64(i)*dt, dt)
	}

	drift := math.Abs(dyn.Energy(x)-initialEnergy) / initialEnergy
	if drift > 1e-6 {
		t.Errorf("RK45 energy drift too high: %e", drift)
	}
}

func TestRK45_AdaptiveStep(t *testing.T) {
	integrator := NewRK45()
	dyn := &oscillator{}
	tol := dynamo.Tolerance{Rel: 1e-6, Abs: 1e-9}

	trial, err := integrator.StepAdaptive(dyn, dynamo.State{1, 0}, nil, 0, 0.1, tol)
	if err != nil {
		t.Fatalf("StepAdaptive returned error: %v", err)
	}
	if !trial.Accepted() {
		t.Errorf("a 0.1 step on a unit oscillator should pass, err norm %g", trial.ErrNorm)
	}
	if trial.NextDt <= 0.1 {
		t.Errorf("accepted step with small error should grow, next dt %g", trial.NextDt)
	}
	if math.Abs(trial.X[0]-math.Cos(0.1)) > 1e-7 {
		t.Errorf("x(0.1) = %.9f, expected %.9f", trial.X[0], math.Cos(0.1))
	}
}

func TestRK45_RejectsLargeStep(t *testing.T) {
	integrator := NewRK45()
	tol := dynamo.Tolerance{Rel: 1e-8, Abs: 1e-10}

	trial, err := integrator.StepAdaptive(&oscillator{}, dynamo.State{1, 0}, nil, 0, 2, tol)
	if err != nil {
		t.Fatal(err)
	}
	if trial.Accepted() {
		t.Errorf("a 2.0 step at rtol 1e-8 should be rejected, err norm %g", trial.ErrNorm)
	}
	if trial.NextDt >= 2 {
		t.Errorf("rejected step should shrink, next dt %g", trial.NextDt)
	}
}

func TestRK45_DenseOutput(t *testing.T) {
	integrator := NewRK45()
	tol := dynamo.Tolerance{Rel: 1e-8, Abs: 1e-10}

	trial, err := integrator.StepAdaptive(&oscillator{}, dynamo.State{1, 0}, nil, 0, 0.05, tol)
	if err != nil {
		t.Fatal(err)
	}

	for _, tq := range []float64{0, 0.01, 0.025, 0.04, 0.05} {
		x := trial.At(tq)
		if math.Abs(x[0]-math.Cos(tq)) > 1e-7 || math.Abs(x[1]+math.Sin(tq)) > 1e-7 {
			t.Errorf("At(%g) = %v, expected [%g %g]", tq, x, math.Cos(tq), -math.Sin(tq))
		}
	}
}

func TestRK45_NonFiniteIsRejected(t *testing.T) {
	integrator := NewRK45()
	blowup := &decay{rate: -1e300}

	trial, err := integrator.StepAdaptive(blowup, dynamo.State{1e300}, nil, 0, 1, dynamo.Tolerance{Rel: 1e-3, Abs: 1e-6})
	if err != nil {
		t.Fatal(err)
	}
	if trial.Accepted() {
		t.Error("an overflowing step must not be accepted")
	}
	if !math.IsInf(trial.ErrNorm, 1) {
		t.Errorf("expected infinite error norm, got %g", trial.ErrNorm)
	}
}
