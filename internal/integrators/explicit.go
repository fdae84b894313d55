package integrators

import "github.com/san-kum/rlcsim/internal/dynamo"

// Tableau is an explicit Runge-Kutta Butcher tableau. E holds the error
// weights b - b̂ of an embedded pair and is nil for single-order methods.
type Tableau struct {
	Name  string
	Order int
	C     []float64
	A     [][]float64
	B     []float64
	E     []float64
}

func (tb *Tableau) Stages() int { return len(tb.C) }

// Explicit steps any explicit tableau at a fixed dt.
type Explicit struct {
	tab     *Tableau
	k       []dynamo.State
	scratch dynamo.State
}

func NewExplicit(tab *Tableau) *Explicit {
	return &Explicit{tab: tab}
}

func (e *Explicit) Name() string { return e.tab.Name }
func (e *Explicit) Order() int   { return e.tab.Order }

func (e *Explicit) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	return e.advance(dyn, x, u, t, dt)
}

// advance evaluates every stage, leaving the derivatives in e.k, and returns
// x + dt*Σ b_i k_i.
func (e *Explicit) advance(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	s := e.tab.Stages()
	if len(e.k) != s {
		e.k = make([]dynamo.State, s)
	}
	if len(e.scratch) != n {
		e.scratch = make(dynamo.State, n)
	}

	e.k[0] = dyn.Derive(x, u, t)
	for i := 1; i < s; i++ {
		row := e.tab.A[i]
		for c := 0; c < n; c++ {
			acc := 0.0
			for j, a := range row {
				if a != 0 {
					acc += a * e.k[j][c]
				}
			}
			e.scratch[c] = x[c] + dt*acc
		}
		e.k[i] = dyn.Derive(e.scratch, u, t+e.tab.C[i]*dt)
	}

	result := make(dynamo.State, n)
	for c := 0; c < n; c++ {
		acc := 0.0
		for i, b := range e.tab.B {
			if b != 0 {
				acc += b * e.k[i][c]
			}
		}
		result[c] = x[c] + dt*acc
	}
	return result
}

// errorEstimate returns dt*Σ e_i k_i from the last advance.
func (e *Explicit) errorEstimate(dt float64) dynamo.State {
	n := len(e.k[0])
	est := make(dynamo.State, n)
	for c := 0; c < n; c++ {
		acc := 0.0
		for i, w := range e.tab.E {
			if w != 0 {
				acc += w * e.k[i][c]
			}
		}
		est[c] = dt * acc
	}
	return est
}
