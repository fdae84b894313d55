package circuit

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/rlcsim/internal/dynamo"
)

// SeriesDerivative is the series loop equation with state (i_L, v_C):
//
//	di_L/dt = (V_source - R*i_L - v_C) / L
//	dv_C/dt = i_L / C
func SeriesDerivative(_ float64, x dynamo.State, r, l, c, vSource float64) dynamo.State {
	iL, vC := x[0], x[1]
	return dynamo.State{
		(vSource - r*iL - vC) / l,
		iL / c,
	}
}

// ParallelDerivative is the parallel node equation with state (v_C, i_L):
//
//	dv_C/dt = (I_source - v_C/R - i_L) / C
//	di_L/dt = v_C / L
func ParallelDerivative(_ float64, x dynamo.State, r, l, c, iSource float64) dynamo.State {
	vC, iL := x[0], x[1]
	return dynamo.State{
		(iSource - vC/r - iL) / c,
		vC / l,
	}
}

// SeriesRLC is the series loop as a dynamo.System.
type SeriesRLC struct {
	R, L, C float64
}

func NewSeries(r, l, c float64) *SeriesRLC {
	return &SeriesRLC{R: r, L: l, C: c}
}

func (s *SeriesRLC) StateDim() int   { return 2 }
func (s *SeriesRLC) ControlDim() int { return 1 }

func (s *SeriesRLC) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return SeriesDerivative(t, x, s.R, s.L, s.C, source(u))
}

func (s *SeriesRLC) Jacobian(_ dynamo.State, _ dynamo.Control, _ float64) *mat.Dense {
	return mat.NewDense(2, 2, []float64{
		-s.R / s.L, -1 / s.L,
		1 / s.C, 0,
	})
}

func (s *SeriesRLC) Energy(x dynamo.State) float64 {
	return storedEnergy(s.L, s.C, x[0], x[1])
}

// ParallelRLC is the parallel tank as a dynamo.System.
type ParallelRLC struct {
	R, L, C float64
}

func NewParallel(r, l, c float64) *ParallelRLC {
	return &ParallelRLC{R: r, L: l, C: c}
}

func (p *ParallelRLC) StateDim() int   { return 2 }
func (p *ParallelRLC) ControlDim() int { return 1 }

func (p *ParallelRLC) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return ParallelDerivative(t, x, p.R, p.L, p.C, source(u))
}

func (p *ParallelRLC) Jacobian(_ dynamo.State, _ dynamo.Control, _ float64) *mat.Dense {
	return mat.NewDense(2, 2, []float64{
		-1 / (p.R * p.C), -1 / p.C,
		1 / p.L, 0,
	})
}

func (p *ParallelRLC) Energy(x dynamo.State) float64 {
	return storedEnergy(p.L, p.C, x[1], x[0])
}

// New builds the state-equation system for a topology.
func New(t Topology, r, l, c float64) dynamo.System {
	if t == Parallel {
		return NewParallel(r, l, c)
	}
	return NewSeries(r, l, c)
}

func source(u dynamo.Control) float64 {
	if len(u) == 0 {
		return 0
	}
	return u[0]
}

func storedEnergy(l, c, iL, vC float64) float64 {
	return 0.5*l*iL*iL + 0.5*c*vC*vC
}
