package ofdm

import (
	"math"
	"math/cmplx"
)

// fractionalFreqOffsetPhase accumulates the cyclic-prefix autocorrelation
// sum(i in [0,cyclicPrefixLen)) conj(s[i]) * s[i+fftLen] across every
// symbol and returns its argument (radians), per spec.md §4.1: "the
// argument of the sum, divided by 2*pi and multiplied by the carrier
// spacing, is the residual fractional frequency offset". Since carrier
// spacing = sample_rate / nb_fft, the equivalent per-sample NCO phase
// increment is simply phase / nb_fft (see correctFrequency).
func fractionalFreqOffsetPhase(symbols [][]complex128, cyclicPrefixLen, fftLen int) float64 {
	var sum complex128
	for _, sym := range symbols {
		for i := 0; i < cyclicPrefixLen; i++ {
			sum += cmplx.Conj(sym[i]) * sym[i+fftLen]
		}
	}
	return cmplx.Phase(sum)
}

// applyFrequencyCorrection rotates every sample (into a fresh slice; the
// input is left unchanged) by an NCO running at phaseIncrement radians/sample, resetting to
// start of frame. The accumulated phase is wrapped modulo 2*pi every
// sample, per spec.md §4.1's "wrapped mod 2*pi to prevent precision loss
// at large offsets".
func applyFrequencyCorrection(samples []complex128, phaseIncrement float64) []complex128 {
	out := make([]complex128, len(samples))
	var phase float64
	for i, s := range samples {
		out[i] = s * cmplx.Exp(complex(0, -phase))
		phase = math.Mod(phase+phaseIncrement, 2*math.Pi)
	}
	return out
}

// estimateIntegerCarrierOffset finds the cyclic rotation (within
// [-maxShift, maxShift]) of receivedFFT's bins that maximises correlation
// magnitude against referenceFFT, per spec.md §4.1: "Integer-carrier
// offset is recovered by finding the cyclic rotation of the PRS FFT bins
// that maximises correlation with the reference."
func estimateIntegerCarrierOffset(receivedFFT, referenceFFT []complex128, maxShift int) int {
	n := len(receivedFFT)
	best := 0
	var bestMag float64 = -1
	for shift := -maxShift; shift <= maxShift; shift++ {
		var corr complex128
		for i := 0; i < n; i++ {
			j := ((i+shift)%n + n) % n
			corr += cmplx.Conj(referenceFFT[i]) * receivedFFT[j]
		}
		mag := cmplx.Abs(corr)
		if mag > bestMag {
			bestMag = mag
			best = shift
		}
	}
	return best
}

// rotateBins returns a copy of fftOut cyclically rotated so that bin i of
// the result holds fftOut[(i+shift) mod n] — the inverse of the rotation
// estimateIntegerCarrierOffset detects.
func rotateBins(fftOut []complex128, shift int) []complex128 {
	n := len(fftOut)
	out := make([]complex128, n)
	for i := 0; i < n; i++ {
		j := ((i+shift)%n + n) % n
		out[i] = fftOut[j]
	}
	return out
}
