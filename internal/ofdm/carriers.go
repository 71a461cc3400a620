package ofdm

// CarrierBins returns the FFT bin index for each logical data carrier, in
// logical-carrier order, for an FFT of size nbFFT carrying nbDataCarriers
// data carriers.
//
// spec.md §4.1 describes this as "permuted through a standard DAB
// carrier-remap table"; original_source/src/modules/ofdm/ofdm_modulator.cpp
// resolves this concretely: data carriers occupy two contiguous FFT-bin
// ranges around DC, with no separate permutation table. The first half of
// the logical carriers sit at the negative-frequency bins
// [nbFFT-nbDataCarriers/2, nbFFT), and the second half sit at the
// positive-frequency bins [1, nbDataCarriers/2], in logical order. Bin 0
// (DC) and the bins beyond nbDataCarriers/2 on either side are unused.
func CarrierBins(nbFFT, nbDataCarriers int) []int {
	half := nbDataCarriers / 2
	bins := make([]int, nbDataCarriers)
	for i := 0; i < half; i++ {
		bins[i] = nbFFT - half + i
	}
	for i := 0; i < half; i++ {
		bins[half+i] = 1 + i
	}
	return bins
}
