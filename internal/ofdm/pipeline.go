package ofdm

import (
	"sync"

	"github.com/jeongseonghan/dabradio/internal/fft"
)

type symbolRange struct {
	start, end int // data-symbol indices [start, end), 0-based, PRS excluded
}

// splitRanges divides n data symbols into numWorkers contiguous,
// near-equal, disjoint ranges — "Each worker owns a disjoint contiguous
// range of symbol indices [start, end)" per spec.md §4.1.
func splitRanges(n, numWorkers int) []symbolRange {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > n {
		numWorkers = n
	}
	if n == 0 {
		return nil
	}
	ranges := make([]symbolRange, 0, numWorkers)
	base := n / numWorkers
	rem := n % numWorkers
	start := 0
	for w := 0; w < numWorkers; w++ {
		size := base
		if w < rem {
			size++
		}
		ranges = append(ranges, symbolRange{start: start, end: start + size})
		start += size
	}
	return ranges
}

// runPipeline implements the per-frame worker pipeline of spec.md §4.1: one
// FFT per data symbol (frequency correction has already been applied to
// the whole frame in one pass, see Demodulator.correctFrequency) and a
// DQPSK soft-bit extraction against the previous symbol's FFT, with
// workers iterating their own symbol range and synchronising only at their
// range's lower boundary — "workers whose range starts at symbol s > 1
// must wait for the worker that owns s-1 to signal FFT_DONE for that last
// boundary symbol".
//
// symbols[0] is the (already frequency-corrected) PRS symbol including its
// cyclic prefix; symbols[1:] are the data symbols in the same form.
// prsFFT is the PRS symbol's FFT, computed by the caller (it also drives
// integer carrier offset estimation).
func (d *Demodulator) runPipeline(symbols [][]complex128, prsFFT []complex128) []uint16 {
	p := d.cfg.Params
	numDataSymbols := len(symbols) - 1
	bitsPerSymbol := len(d.carrierBins) * 2
	out := make([]uint16, numDataSymbols*bitsPerSymbol)

	fftOut := make([][]complex128, len(symbols))
	fftOut[0] = prsFFT
	fftDone := make([]chan struct{}, len(symbols))
	for i := range fftDone {
		fftDone[i] = make(chan struct{})
	}
	close(fftDone[0])

	ranges := splitRanges(numDataSymbols, d.cfg.NumWorkers)

	var wg sync.WaitGroup
	for _, r := range ranges {
		r := r
		wg.Add(1)
		go func() {
			defer wg.Done()
			first := true
			for i := r.start; i < r.end; i++ {
				sym := symbols[i+1][p.NumCyclicPrefix:]
				fftOut[i+1] = fft.FFT(sym)
				close(fftDone[i+1])

				if first {
					<-fftDone[i]
					first = false
				}

				y := extractSoftBits(fftOut[i], fftOut[i+1], d.carrierBins)
				copy(out[i*bitsPerSymbol:], y)
			}
		}()
	}
	wg.Wait()

	return out
}
