package dynamo

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

type Control []float64

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Hamiltonian systems report the energy stored in a state.
type Hamiltonian interface {
	Energy(x State) float64
}

// Linearizable systems supply their own Jacobian df/dx. Implicit steppers
// fall back to finite differences for systems that do not.
type Linearizable interface {
	Jacobian(x State, u Control, t float64) *mat.Dense
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// Tolerance is the mixed error tolerance atol + rtol*|x| used by adaptive steppers.
type Tolerance struct {
	Rel float64
	Abs float64
}

// Trial is one attempted adaptive step from T0 to T1.
type Trial struct {
	T0, T1 float64
	X0, X  State

	// ErrNorm is the RMS local error weighted by the tolerance; the step is
	// acceptable when it is at most 1.
	ErrNorm float64
	NextDt  float64

	Interp func(t float64) State
}

func (tr *Trial) Accepted() bool {
	return tr.ErrNorm <= 1 && tr.X.IsValid()
}

// At evaluates the step's dense output at t in [T0, T1].
func (tr *Trial) At(t float64) State {
	if t >= tr.T1 {
		return tr.X.Clone()
	}
	if tr.Interp != nil {
		return tr.Interp(t)
	}
	theta := (t - tr.T0) / (tr.T1 - tr.T0)
	out := make(State, len(tr.X))
	for i := range out {
		out[i] = tr.X0[i] + theta*(tr.X[i]-tr.X0[i])
	}
	return out
}

type AdaptiveIntegrator interface {
	Integrator
	Order() int
	StepAdaptive(dyn System, x State, u Control, t, dt float64, tol Tolerance) (*Trial, error)
}

// ErrorNorm is the weighted RMS norm of a local error estimate, scaled by
// atol + rtol*max(|x0|, |x1|) per component.
func ErrorNorm(errEst, x0, x1 State, tol Tolerance) float64 {
	if len(errEst) == 0 {
		return 0
	}
	sum := 0.0
	for i, e := range errEst {
		sc := tol.Abs + tol.Rel*math.Max(math.Abs(x0[i]), math.Abs(x1[i]))
		r := e / sc
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(errEst)))
}

// Hermite returns the cubic Hermite interpolant through (t0, x0, f0) and (t1, x1, f1).
func Hermite(t0, t1 float64, x0, x1, f0, f1 State) func(t float64) State {
	h := t1 - t0
	return func(t float64) State {
		s := (t - t0) / h
		s2, s3 := s*s, s*s*s
		h00 := 2*s3 - 3*s2 + 1
		h10 := s3 - 2*s2 + s
		h01 := -2*s3 + 3*s2
		h11 := s3 - s2
		out := make(State, len(x0))
		for i := range out {
			out[i] = h00*x0[i] + h10*h*f0[i] + h01*x1[i] + h11*h*f1[i]
		}
		return out
	}
}

type Controller interface {
	Compute(x State, t float64) Control
}

type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

type Config struct {
	Duration float64

	// Dt is the fixed step, or the first adaptive step when positive.
	Dt       float64
	MinDt    float64
	MaxDt    float64
	RelTol   float64
	AbsTol   float64
	MaxSteps int

	Adaptive      bool
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Duration:      1.0,
		RelTol:        1e-3,
		AbsTol:        1e-6,
		MaxSteps:      500000,
		Adaptive:      true,
		ValidateState: true,
	}
}

func (c Config) Tolerance() Tolerance {
	return Tolerance{Rel: c.RelTol, Abs: c.AbsTol}
}

type Result struct {
	Times      []float64
	States     []State
	Metrics    map[string]float64
	StepsTaken int
	Rejected   int
}
