package integrators

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rlcsim/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// Rosenbrock23 coefficients (the ode23s pair)
var (
	rosD   = 1.0 / (2.0 + math.Sqrt2)
	rosE32 = 6.0 + math.Sqrt2
)

// Rosenbrock23 is an L-stable linearly implicit 2(3) method. It stays stable
// for steps far beyond the fastest time constant, which is what overdamped
// circuits with widely separated roots need. Each step factors
// W = I - h*d*J once and reuses it for all three stages.
type Rosenbrock23 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRosenbrock23() *Rosenbrock23 {
	return &Rosenbrock23{
		safety:   0.8,
		minScale: 0.2,
		maxScale: 5.0,
	}
}

func (r *Rosenbrock23) Name() string { return "rosenbrock" }
func (r *Rosenbrock23) Order() int   { return 2 }

func (r *Rosenbrock23) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	trial, err := r.StepAdaptive(dyn, x, u, t, dt, dynamo.Tolerance{Rel: 1, Abs: 1})
	if err != nil {
		nan := make(dynamo.State, len(x))
		for i := range nan {
			nan[i] = math.NaN()
		}
		return nan
	}
	return trial.X
}

func (r *Rosenbrock23) StepAdaptive(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64, tol dynamo.Tolerance) (*dynamo.Trial, error) {
	n := len(x)
	h := dt

	f0 := dyn.Derive(x, u, t)
	jac := jacobian(dyn, x, u, t, f0)
	ft := timeDerivative(dyn, x, u, t, f0)

	w := mat.NewDense(n, n, nil)
	w.Scale(-h*rosD, jac)
	for i := 0; i < n; i++ {
		w.Set(i, i, w.At(i, i)+1)
	}
	var lu mat.LU
	lu.Factorize(w)

	rhs := make(dynamo.State, n)
	for i := range rhs {
		rhs[i] = f0[i] + h*rosD*ft[i]
	}
	k1, err := solveLU(&lu, rhs)
	if err != nil {
		return nil, err
	}

	mid := make(dynamo.State, n)
	for i := range mid {
		mid[i] = x[i] + 0.5*h*k1[i]
	}
	f1 := dyn.Derive(mid, u, t+0.5*h)

	for i := range rhs {
		rhs[i] = f1[i] - k1[i]
	}
	k2, err := solveLU(&lu, rhs)
	if err != nil {
		return nil, err
	}
	for i := range k2 {
		k2[i] += k1[i]
	}

	xNew := make(dynamo.State, n)
	for i := range xNew {
		xNew[i] = x[i] + h*k2[i]
	}
	f2 := dyn.Derive(xNew, u, t+h)

	for i := range rhs {
		rhs[i] = f2[i] - rosE32*(k2[i]-f1[i]) - 2*(k1[i]-f0[i]) + h*rosD*ft[i]
	}
	k3, err := solveLU(&lu, rhs)
	if err != nil {
		return nil, err
	}

	errEst := make(dynamo.State, n)
	for i := range errEst {
		errEst[i] = h / 6 * (k1[i] - 2*k2[i] + k3[i])
	}
	errNorm := dynamo.ErrorNorm(errEst, x, xNew, tol)
	if math.IsNaN(errNorm) || !xNew.IsValid() {
		errNorm = math.Inf(1)
	}

	x0 := x.Clone()
	return &dynamo.Trial{
		T0:      t,
		T1:      t + h,
		X0:      x0,
		X:       xNew,
		ErrNorm: errNorm,
		NextDt:  h * r.factor(errNorm),
		Interp: func(tq float64) dynamo.State {
			s := (tq - t) / h
			w1 := s * (1 - s) / (1 - 2*rosD)
			w2 := s * (s - 2*rosD) / (1 - 2*rosD)
			out := make(dynamo.State, n)
			for i := range out {
				out[i] = x0[i] + h*(w1*k1[i]+w2*k2[i])
			}
			return out
		},
	}, nil
}

func (r *Rosenbrock23) factor(errNorm float64) float64 {
	switch {
	case math.IsInf(errNorm, 1):
		return r.minScale
	case errNorm == 0:
		return r.maxScale
	}
	f := r.safety * math.Pow(errNorm, -1.0/3.0)
	if errNorm > 1 {
		f = math.Min(f, 1)
	}
	return math.Max(r.minScale, math.Min(r.maxScale, f))
}

// jacobian returns ∂f/∂x, exact when the system provides it and by forward
// differences otherwise.
func jacobian(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, f0 dynamo.State) *mat.Dense {
	if lin, ok := dyn.(dynamo.Linearizable); ok {
		return lin.Jacobian(x, u, t)
	}
	n := len(x)
	jac := mat.NewDense(n, n, nil)
	sqrtEps := math.Sqrt(epsilon)
	for j := 0; j < n; j++ {
		delta := sqrtEps * math.Max(math.Abs(x[j]), 1)
		xp := x.Clone()
		xp[j] += delta
		fp := dyn.Derive(xp, u, t)
		for i := 0; i < n; i++ {
			jac.Set(i, j, (fp[i]-f0[i])/delta)
		}
	}
	return jac
}

func timeDerivative(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, f0 dynamo.State) dynamo.State {
	delta := math.Sqrt(epsilon) * math.Max(math.Abs(t), 1)
	ft := dyn.Derive(x, u, t+delta)
	for i := range ft {
		ft[i] = (ft[i] - f0[i]) / delta
	}
	return ft
}

const epsilon = 0x1p-52

func solveLU(lu *mat.LU, b dynamo.State) (dynamo.State, error) {
	n := len(b)
	dst := mat.NewVecDense(n, nil)
	if err := lu.SolveVecTo(dst, false, mat.NewVecDense(n, b.Clone())); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("%w: %v", dynamo.ErrSingular, err)
		}
	}
	return dynamo.State(dst.RawVector().Data), nil
}
