package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// padFactor zero-pads the signal to refine the frequency grid.
const padFactor = 8

// PowerSpectrum returns the one-sided magnitude spectrum of data with its
// mean removed, zero-padded to padFactor times its length. Bin k is at
// k/(len·dt) Hz where len is padFactor*len(data).
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	n := len(data) * padFactor
	seq := make([]float64, n)
	for i, v := range data {
		seq[i] = v - mean
	}

	coeffs := fourier.NewFFT(n).Coefficients(nil, seq)
	ps := make([]float64, len(coeffs))
	for i, c := range coeffs {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC
// component of values sampled on the uniform grid times. The peak bin is
// refined by parabolic interpolation. It returns 0 when there is no
// oscillation to measure.
func DominantFrequency(times, values []float64) float64 {
	if len(times) < 4 || len(times) != len(values) {
		return 0
	}
	dt := times[1] - times[0]
	if dt <= 0 {
		return 0
	}

	ps := PowerSpectrum(values)
	peak := 0
	for k := 1; k < len(ps); k++ {
		if ps[k] > ps[peak] || peak == 0 {
			peak = k
		}
	}
	if peak == 0 || ps[peak] == 0 {
		return 0
	}

	offset := 0.0
	if peak > 1 && peak < len(ps)-1 {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if d := a - 2*b + c; d != 0 {
			offset = 0.5 * (a - c) / d
		}
	}

	n := float64(len(values) * padFactor)
	f := (float64(peak) + offset) / (n * dt)
	if math.IsNaN(f) {
		return 0
	}
	return f
}
