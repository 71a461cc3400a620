package ofdm

import (
	"math/cmplx"

	"github.com/jeongseonghan/dabradio/internal/viterbi"
)

// dqpskSoftBits maps one carrier's phase-difference value y = conj(prev) *
// curr to the two soft bits DAB's pi/4-DQPSK constellation produces for
// that carrier, per spec.md §4.1's table:
//
//	phase      bits
//	3*pi/4  -> 1 1
//	  pi/4  -> 0 1
//	 -pi/4  -> 0 0
//	-3*pi/4 -> 1 0
//
// which resolves to: the first bit follows the sign of -Re(y), the second
// follows the sign of +Im(y). Soft values follow the viterbi package's
// convention (SoftHigh = confidently bit 1, SoftLow = confidently bit 0):
// each component is linearly scaled by the soft-bit range around
// viterbi.Punctured and clamped.
func dqpskSoftBits(y complex128) (bit1, bit0 uint16) {
	bit1 = scaleSoft(-real(y))
	bit0 = scaleSoft(imag(y))
	return bit1, bit0
}

func scaleSoft(v float64) uint16 {
	scaled := float64(viterbi.Punctured) + v*float64(viterbi.SoftHigh)
	if scaled < viterbi.SoftLow {
		return viterbi.SoftLow
	}
	if scaled > viterbi.SoftHigh {
		return viterbi.SoftHigh
	}
	return uint16(scaled)
}

// extractSoftBits computes the soft bits for one data symbol given its FFT
// and the previous symbol's FFT, walking carrierBins in logical-carrier
// order (two soft bits per carrier).
func extractSoftBits(prevFFT, currFFT []complex128, carrierBins []int) []uint16 {
	out := make([]uint16, 0, len(carrierBins)*2)
	for _, bin := range carrierBins {
		y := cmplx.Conj(prevFFT[bin]) * currFFT[bin]
		b1, b0 := dqpskSoftBits(y)
		out = append(out, b1, b0)
	}
	return out
}
