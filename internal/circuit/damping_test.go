package circuit

import (
	"math"
	"testing"
)

func TestClassify_SeriesBoundary(t *testing.T) {
	l, c := 1e-3, 1e-6
	rc := 2 * math.Sqrt(l/c)

	tests := []struct {
		name     string
		r        float64
		expected Regime
	}{
		{"critical", rc, CriticallyDamped},
		{"slightly above", rc * 1.001, Overdamped},
		{"slightly below", rc * 0.999, Underdamped},
		{"far above", rc * 100, Overdamped},
		{"far below", rc / 100, Underdamped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(Series, tt.r, l, c); got != tt.expected {
				t.Errorf("Classify(series, %g) = %s, want %s", tt.r, got, tt.expected)
			}
		})
	}
}

func TestClassify_ParallelBoundary(t *testing.T) {
	l, c := 1e-3, 1e-6
	rc := 0.5 * math.Sqrt(l/c)

	// In parallel a larger R means less damping.
	tests := []struct {
		name     string
		r        float64
		expected Regime
	}{
		{"critical", rc, CriticallyDamped},
		{"slightly above", rc * 1.001, Underdamped},
		{"slightly below", rc * 0.999, Overdamped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(Parallel, tt.r, l, c); got != tt.expected {
				t.Errorf("Classify(parallel, %g) = %s, want %s", tt.r, got, tt.expected)
			}
		})
	}
}

func TestClassify_Scenarios(t *testing.T) {
	// alpha = 1/(2*0.5*1) = 1, omega = 1.
	if got := Classify(Parallel, 0.5, 1, 1); got != CriticallyDamped {
		t.Errorf("parallel L=1 C=1 R=0.5: got %s, want critically damped", got)
	}

	// alpha = 31600, omega = 31623: just inside the ringing side.
	if got := Classify(Series, 63.2, 1e-3, 1e-6); got != Underdamped {
		t.Errorf("series R=63.2: got %s, want underdamped", got)
	}
}

func TestClassify_ScaleInvariance(t *testing.T) {
	cases := []struct {
		top     Topology
		r, l, c float64
	}{
		{Series, 63.2, 1e-3, 1e-6},
		{Series, 2 * math.Sqrt(1e-3/1e-6), 1e-3, 1e-6},
		{Series, 500, 1e-3, 1e-6},
		{Parallel, 0.5, 1, 1},
		{Parallel, 3, 1, 1},
		{Parallel, 0.01, 1, 1},
	}

	// Scaling L and C by k divides both alpha and omega by k.
	for _, tc := range cases {
		base := Classify(tc.top, tc.r, tc.l, tc.c)
		for _, k := range []float64{1e-3, 0.5, 4, 7, 1e4} {
			if got := Classify(tc.top, tc.r, tc.l*k, tc.c*k); got != base {
				t.Errorf("%s R=%g scaled by %g: got %s, want %s", tc.top, tc.r, k, got, base)
			}
		}
	}
}

func TestClassify_ReturnsKnownRegime(t *testing.T) {
	for _, top := range []Topology{Series, Parallel} {
		for _, r := range []float64{1e-3, 0.1, 1, 10, 63.2, 1e3, 1e6} {
			for _, l := range []float64{1e-6, 1e-3, 1} {
				for _, c := range []float64{1e-9, 1e-6, 1} {
					switch Classify(top, r, l, c) {
					case Overdamped, CriticallyDamped, Underdamped:
					default:
						t.Fatalf("%s R=%g L=%g C=%g: unknown regime", top, r, l, c)
					}
				}
			}
		}
	}
}

func TestClassifyTol(t *testing.T) {
	l, c := 1e-3, 1e-6
	r := 2 * math.Sqrt(l/c) * 1.0001

	if got := ClassifyTol(Series, r, l, c, DefaultCriticalTol); got != Overdamped {
		t.Errorf("tight tolerance: got %s, want overdamped", got)
	}
	if got := ClassifyTol(Series, r, l, c, 1e-2); got != CriticallyDamped {
		t.Errorf("loose tolerance: got %s, want critically damped", got)
	}
}

func TestClassify_ExtremeComponents(t *testing.T) {
	tests := []struct {
		name    string
		top     Topology
		r, l, c float64
		want    Regime
	}{
		{"series tiny LC", Series, 1, 1e-200, 1e-200, Underdamped},
		{"series tiny LC heavy R", Series, 3, 1e-200, 1e-200, Overdamped},
		{"series tiny LC critical", Series, 2, 1e-200, 1e-200, CriticallyDamped},
		{"parallel tiny LC", Parallel, 1, 1e-200, 1e-200, Underdamped},
		{"parallel tiny LC low R", Parallel, 0.4, 1e-200, 1e-200, Overdamped},
		{"series huge L tiny C", Series, 1e10, 1e300, 1e-300, Underdamped},
		{"parallel huge L tiny C", Parallel, 1e10, 1e300, 1e-300, Overdamped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.top, tt.r, tt.l, tt.c); got != tt.want {
				t.Errorf("Classify(%s, %g, %g, %g) = %s, want %s", tt.top, tt.r, tt.l, tt.c, got, tt.want)
			}
		})
	}
}

func TestDampingRatio(t *testing.T) {
	l, c := 1e-3, 1e-6
	for _, top := range []Topology{Series, Parallel} {
		rc := CriticalResistance(top, l, c)
		if z := DampingRatio(top, rc, l, c); math.Abs(z-1) > 1e-12 {
			t.Errorf("%s: ζ at critical resistance = %g, want 1", top, z)
		}
		want := Alpha(top, 10, l, c) / ResonantFrequency(l, c)
		if z := DampingRatio(top, 10, l, c); math.Abs(z-want) > 1e-12*want {
			t.Errorf("%s: ζ = %g, want α/ω₀ = %g", top, z, want)
		}
	}
}

func TestRootsAndStiffness(t *testing.T) {
	fast, slow := Roots(Series, 1e6, 1e-3, 1e-6)
	if math.Abs(real(fast)+1e9)/1e9 > 1e-6 {
		t.Errorf("fast root: got %v, want about -1e9", fast)
	}
	if math.Abs(real(slow)+1) > 1e-6 {
		t.Errorf("slow root: got %v, want about -1", slow)
	}
	if ratio := StiffnessRatio(Series, 1e6, 1e-3, 1e-6); ratio < 1e8 {
		t.Errorf("expected a stiff ratio, got %g", ratio)
	}

	if ratio := StiffnessRatio(Series, 63.2, 1e-3, 1e-6); math.Abs(ratio-1) > 1e-12 {
		t.Errorf("ringing circuit ratio: got %g, want 1", ratio)
	}

	wd := DampedFrequency(Series, 10, 1e-3, 1e-6)
	fast, _ = Roots(Series, 10, 1e-3, 1e-6)
	if math.Abs(imag(fast)-wd) > 1e-9 {
		t.Errorf("imaginary part %g should equal damped frequency %g", imag(fast), wd)
	}
	if DampedFrequency(Series, 1e3, 1e-3, 1e-6) != 0 {
		t.Error("overdamped circuit should have zero damped frequency")
	}
}

func TestCriticalResistance(t *testing.T) {
	for _, top := range []Topology{Series, Parallel} {
		r := CriticalResistance(top, 2e-3, 3e-7)
		if got := Classify(top, r, 2e-3, 3e-7); got != CriticallyDamped {
			t.Errorf("%s: critical resistance %g classified %s", top, r, got)
		}
	}
}

func TestRegimeText(t *testing.T) {
	for _, r := range []Regime{Overdamped, CriticallyDamped, Underdamped} {
		b, _ := r.MarshalText()
		var back Regime
		if err := back.UnmarshalText(b); err != nil || back != r {
			t.Errorf("%s did not survive text encoding: %v", r, err)
		}
	}
}
