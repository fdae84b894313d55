package metrics

import (
	"math"

	"github.com/san-kum/rlcsim/internal/dynamo"
)

// StoredEnergy is the mean of ½Li² + ½Cv² over the observed samples.
type StoredEnergy struct {
	name    string
	sys     dynamo.Hamiltonian
	samples int
	total   float64
}

func NewStoredEnergy(sys dynamo.Hamiltonian) *StoredEnergy {
	return &StoredEnergy{
		name: "stored_energy",
		sys:  sys,
	}
}

func (e *StoredEnergy) Name() string { return e.name }

func (e *StoredEnergy) Observe(x dynamo.State, u dynamo.Control, t float64) {
	e.total += e.sys.Energy(x)
	e.samples++
}

func (e *StoredEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *StoredEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyGrowth is max E(t)/E(0). A passive circuit left to itself never
// exceeds 1. Runs that start with no stored energy report 0.
type EnergyGrowth struct {
	name          string
	sys           dynamo.Hamiltonian
	initialEnergy float64
	maxEnergy     float64
	samples       int
}

func NewEnergyGrowth(sys dynamo.Hamiltonian) *EnergyGrowth {
	return &EnergyGrowth{
		name: "energy_growth",
		sys:  sys,
	}
}

func (e *EnergyGrowth) Name() string { return e.name }

func (e *EnergyGrowth) Observe(x dynamo.State, u dynamo.Control, t float64) {
	energy := e.sys.Energy(x)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.maxEnergy = math.Max(e.maxEnergy, energy)
	e.samples++
}

func (e *EnergyGrowth) Value() float64 {
	if e.initialEnergy == 0 {
		return 0
	}
	return e.maxEnergy / e.initialEnergy
}

func (e *EnergyGrowth) Reset() {
	e.initialEnergy = 0
	e.maxEnergy = 0
	e.samples = 0
}
