package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/rlcsim/internal/dynamo"
)

const epsilon = 0x1p-52

type Simulator struct {
	dyn        dynamo.System
	integrator dynamo.Integrator
	controller dynamo.Controller
	metrics    []dynamo.Metric
}

// New builds a simulator. A nil controller drives the system with an empty
// control vector.
func New(dyn dynamo.System, integrator dynamo.Integrator, controller dynamo.Controller) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		controller: controller,
		metrics:    make([]dynamo.Metric, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric) { s.metrics = append(s.metrics, m) }

// Run integrates from x0 at t=0 to cfg.Duration and reports the state at each
// time in samples. With nil samples every completed step is recorded.
// Metrics see exactly the recorded points.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config, samples []float64) (*dynamo.Result, error) {
	if err := s.validate(x0, cfg, samples); err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	rec := &recorder{
		sim:     s,
		samples: samples,
		result: &dynamo.Result{
			Times:   make([]float64, 0, len(samples)),
			States:  make([]dynamo.State, 0, len(samples)),
			Metrics: make(map[string]float64),
		},
	}

	var err error
	if cfg.Adaptive {
		err = s.runAdaptive(ctx, x0, cfg, rec)
	} else {
		err = s.runFixed(ctx, x0, cfg, rec)
	}

	for _, m := range s.metrics {
		rec.result.Metrics[m.Name()] = m.Value()
	}
	return rec.result, err
}

func (s *Simulator) validate(x0 dynamo.State, cfg dynamo.Config, samples []float64) error {
	if len(x0) != s.dyn.StateDim() {
		return fmt.Errorf("%w: state has %d components, system expects %d",
			dynamo.ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %g", cfg.Duration)
	}
	if !cfg.Adaptive && !(cfg.Dt > 0) {
		return fmt.Errorf("dt must be positive for fixed stepping, got %g", cfg.Dt)
	}
	if cfg.Adaptive && (!(cfg.RelTol > 0) || !(cfg.AbsTol > 0)) {
		return fmt.Errorf("tolerances must be positive for adaptive stepping, got rtol=%g atol=%g",
			cfg.RelTol, cfg.AbsTol)
	}
	if !x0.IsValid() {
		return &dynamo.SimulationError{Time: 0, State: x0.Clone(), Wrapped: dynamo.ErrInvalidState}
	}
	return validateSamples(samples, cfg.Duration)
}

func (s *Simulator) control(x dynamo.State, t float64) dynamo.Control {
	if s.controller == nil {
		return dynamo.Control{}
	}
	return s.controller.Compute(x, t)
}

func (s *Simulator) runAdaptive(ctx context.Context, x0 dynamo.State, cfg dynamo.Config, rec *recorder) error {
	stepper := StepDoubling(s.integrator)
	tol := cfg.Tolerance()
	end := cfg.Duration

	x := x0.Clone()
	t := 0.0
	rec.start(x)

	dt := cfg.Dt
	if dt <= 0 {
		dt = InitialStep(s.dyn, x, s.control(x, t), t, stepper.Order(), tol, end)
	}
	if cfg.MaxDt > 0 {
		dt = math.Min(dt, cfg.MaxDt)
	}

	attempts := 0
	for t < end {
		if err := ctx.Err(); err != nil {
			return err
		}

		fail := func(err error) error {
			return &dynamo.SimulationError{Step: attempts, Time: t, State: x.Clone(), Wrapped: err}
		}

		if cfg.MaxSteps > 0 && attempts >= cfg.MaxSteps {
			return fail(dynamo.ErrTooManySteps)
		}
		minDt := math.Max(cfg.MinDt, 10*epsilon*math.Abs(t))
		if !(dt >= minDt) {
			return fail(dynamo.ErrStepTooSmall)
		}

		h := dt
		last := t+h >= end
		if last {
			h = end - t
		}

		// The source is held at its value from the start of the step.
		u := s.control(x, t)
		trial, err := stepper.StepAdaptive(s.dyn, x, u, t, h, tol)
		attempts++
		if err != nil {
			return fail(err)
		}

		if !trial.Accepted() {
			rec.result.Rejected++
			dt = trial.NextDt
			continue
		}

		if last {
			trial.T1 = end
		}
		rec.through(trial)

		x, t = trial.X, trial.T1
		rec.result.StepsTaken++

		if cfg.ValidateState && !x.IsValid() {
			return fail(dynamo.ErrInvalidState)
		}

		dt = trial.NextDt
		if last {
			// Keep the controller's proposal rather than the clipped remainder.
			dt = math.Max(dt, h)
		}
		if cfg.MaxDt > 0 {
			dt = math.Min(dt, cfg.MaxDt)
		}
	}
	return nil
}

func (s *Simulator) runFixed(ctx context.Context, x0 dynamo.State, cfg dynamo.Config, rec *recorder) error {
	end := cfg.Duration
	steps := int(math.Ceil(end/cfg.Dt - 1e-9))

	x := x0.Clone()
	t := 0.0
	rec.start(x)

	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		h := cfg.Dt
		t1 := float64(i+1) * cfg.Dt
		if i == steps-1 {
			t1 = end
			h = end - t
		}

		u := s.control(x, t)
		next := s.integrator.Step(s.dyn, x, u, t, h)
		if cfg.ValidateState && !next.IsValid() {
			return &dynamo.SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: dynamo.ErrInvalidState}
		}

		rec.through(&dynamo.Trial{T0: t, T1: t1, X0: x, X: next})
		x, t = next, t1
		rec.result.StepsTaken++
	}
	return nil
}

// recorder collects output points as steps complete.
type recorder struct {
	sim     *Simulator
	samples []float64
	next    int
	result  *dynamo.Result
}

func (r *recorder) emit(x dynamo.State, t float64) {
	u := r.sim.control(x, t)
	for _, m := range r.sim.metrics {
		m.Observe(x, u, t)
	}
	r.result.Times = append(r.result.Times, t)
	r.result.States = append(r.result.States, x)
}

func (r *recorder) start(x0 dynamo.State) {
	if r.samples == nil {
		r.emit(x0.Clone(), 0)
		return
	}
	for r.next < len(r.samples) && r.samples[r.next] <= 0 {
		r.emit(x0.Clone(), r.samples[r.next])
		r.next++
	}
}

// through records every output point covered by an accepted step.
func (r *recorder) through(tr *dynamo.Trial) {
	if r.samples == nil {
		r.emit(tr.X.Clone(), tr.T1)
		return
	}
	for r.next < len(r.samples) && r.samples[r.next] <= tr.T1 {
		ts := r.samples[r.next]
		r.emit(tr.At(ts), ts)
		r.next++
	}
}
