package circuit

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

// DefaultCriticalTol is the relative tolerance on α² against ω₀² below which
// a circuit counts as critically damped.
const DefaultCriticalTol = 1e-9

type Regime int

const (
	Overdamped Regime = iota
	CriticallyDamped
	Underdamped
)

func (r Regime) String() string {
	switch r {
	case Overdamped:
		return "overdamped"
	case CriticallyDamped:
		return "critically damped"
	case Underdamped:
		return "underdamped"
	default:
		return fmt.Sprintf("regime(%d)", int(r))
	}
}

func ParseRegime(s string) (Regime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "overdamped":
		return Overdamped, nil
	case "critically damped", "critically_damped", "critical":
		return CriticallyDamped, nil
	case "underdamped":
		return Underdamped, nil
	}
	return 0, fmt.Errorf("unknown damping regime %q", s)
}

func (r Regime) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Regime) UnmarshalText(b []byte) error {
	v, err := ParseRegime(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ResonantFrequency is ω₀ = 1/√(LC) in rad/s.
func ResonantFrequency(l, c float64) float64 {
	return 1 / math.Sqrt(l*c)
}

// Alpha is the damping coefficient in 1/s: R/(2L) in series, 1/(2RC) in parallel.
func Alpha(t Topology, r, l, c float64) float64 {
	if t == Parallel {
		return 1 / (2 * r * c)
	}
	return r / (2 * l)
}

// Classify labels the circuit using DefaultCriticalTol.
func Classify(t Topology, r, l, c float64) Regime {
	return ClassifyTol(t, r, l, c, DefaultCriticalTol)
}

// DampingRatio is ζ = α/ω₀: R/2·√(C/L) in series, 1/(2R)·√(L/C) in parallel.
// Each square root is taken separately so extreme L and C stay finite.
func DampingRatio(t Topology, r, l, c float64) float64 {
	if t == Parallel {
		return math.Sqrt(l) / math.Sqrt(c) / (2 * r)
	}
	return r / 2 * (math.Sqrt(c) / math.Sqrt(l))
}

// ClassifyTol compares ζ² with 1. The near-equality test runs first, so a
// circuit at the critical point stays critical when rounding leaves ζ
// marginally above 1.
func ClassifyTol(t Topology, r, l, c, tol float64) Regime {
	z := DampingRatio(t, r, l, c)
	z2 := z * z
	switch {
	case isClose(z2, 1, tol):
		return CriticallyDamped
	case z2 > 1:
		return Overdamped
	default:
		return Underdamped
	}
}

func isClose(a, b, rel float64) bool {
	if a == b {
		return true
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return false
	}
	return math.Abs(a-b) <= rel*math.Max(math.Abs(a), math.Abs(b))
}

// CriticalResistance is the R at which α = ω₀: 2√(L/C) in series, ½√(L/C) in parallel.
func CriticalResistance(t Topology, l, c float64) float64 {
	if t == Parallel {
		return 0.5 * math.Sqrt(l/c)
	}
	return 2 * math.Sqrt(l/c)
}

// DampedFrequency is ω_d = √(ω₀² − α²), or 0 when the circuit does not ring.
func DampedFrequency(t Topology, r, l, c float64) float64 {
	alpha := Alpha(t, r, l, c)
	omega := ResonantFrequency(l, c)
	d := omega*omega - alpha*alpha
	if d <= 0 {
		return 0
	}
	return math.Sqrt(d)
}

// Roots returns the characteristic roots of s² + 2αs + ω₀² = 0, fastest first.
// The slow root is taken from the product of roots to avoid cancellation.
func Roots(t Topology, r, l, c float64) (fast, slow complex128) {
	alpha := Alpha(t, r, l, c)
	omega := ResonantFrequency(l, c)
	d := alpha*alpha - omega*omega
	if d <= 0 {
		wd := math.Sqrt(-d)
		return complex(-alpha, wd), complex(-alpha, -wd)
	}
	f := -alpha - math.Sqrt(d)
	return complex(f, 0), complex(omega*omega/f, 0)
}

// StiffnessRatio is |s_fast| / |s_slow|; 1 for critically damped and ringing circuits.
func StiffnessRatio(t Topology, r, l, c float64) float64 {
	fast, slow := Roots(t, r, l, c)
	s := cmplx.Abs(slow)
	if s == 0 {
		return math.Inf(1)
	}
	return cmplx.Abs(fast) / s
}
