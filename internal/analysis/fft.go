package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/springnet/internal/dynamo"
)

// FFT is the discrete Fourier transform of a real series of any length.
func FFT(data []float64) []complex128 {
	return fft.FFTReal(data)
}

// PowerSpectrum returns |X_k|² for the positive-frequency bins.
func PowerSpectrum(data []float64) []float64 {
	spec := FFT(data)
	ps := make([]float64, len(spec)/2)

	for i := range ps {
		a := cmplx.Abs(spec[i])
		ps[i] = a * a
	}

	return ps
}

// NextPow2 returns the smallest power of two >= n.
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Spectrum is a power spectrum with its frequency axis.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// SpectrumOf removes the mean of series, zero-pads it to a power of two and
// returns the positive-frequency power spectrum for sample spacing dt.
func SpectrumOf(series []float64, dt float64) (*Spectrum, error) {
	if len(series) < 4 {
		return nil, fmt.Errorf("%w: need at least 4 samples, got %d", dynamo.ErrInvalidParameter, len(series))
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: sample spacing %v", dynamo.ErrInvalidParameter, dt)
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(len(series))

	n := NextPow2(len(series))
	padded := make([]float64, n)
	for i, v := range series {
		padded[i] = v - mean
	}

	// padding keeps the transform on the radix-2 path
	power := PowerSpectrum(padded)
	freqs := make([]float64, len(power))
	for k := range freqs {
		freqs[k] = float64(k) / (float64(n) * dt)
	}

	return &Spectrum{Freqs: freqs, Power: power}, nil
}

// DominantFrequency returns the frequency of the strongest non-DC bin,
// refined by parabolic interpolation over its neighbours. A constant
// series has no dominant frequency and returns 0.
func DominantFrequency(series []float64, dt float64) (float64, error) {
	sp, err := SpectrumOf(series, dt)
	if err != nil {
		return 0, err
	}

	peak := 0
	for k := 1; k < len(sp.Power); k++ {
		if sp.Power[k] > sp.Power[peak] || peak == 0 {
			peak = k
		}
	}
	if sp.Power[peak] == 0 {
		return 0, nil
	}

	delta := 0.0
	if peak > 1 && peak < len(sp.Power)-1 {
		a, b, c := sp.Power[peak-1], sp.Power[peak], sp.Power[peak+1]
		if den := a - 2*b + c; den != 0 {
			delta = 0.5 * (a - c) / den
		}
	}

	binWidth := sp.Freqs[1]
	return (float64(peak) + delta) * binWidth, nil
}
