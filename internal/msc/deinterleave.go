package msc

// Deinterleaver undoes DAB's convolutional time interleaving: each of the 16
// branch positions within a CIF carries its own fixed delay line, so bits
// broadcast close together in time are spread across consecutive CIFs and
// recombined here. Grounded on spec.md §4.4's literal depth pattern
// {0,8,4,12,2,10,6,14} (modulo 16 symbols); this implementation reads "modulo
// 16" as the 8-entry pattern tiling twice across the 16 branch positions,
// which is not verified against ETSI EN 300 401's exact branch-to-depth
// assignment table.
type Deinterleaver struct {
	depths  [8]int
	queues  [16][]uint16
}

var defaultDepths = [8]int{0, 8, 4, 12, 2, 10, 6, 14}

// NewDeinterleaver returns a Deinterleaver using the standard DAB depth
// pattern.
func NewDeinterleaver() *Deinterleaver {
	return &Deinterleaver{depths: defaultDepths}
}

// Process runs one CIF's worth of soft bits through the delay lines,
// returning a same-length slice. During the warm-up period (before a given
// branch's delay line has filled), output positions are filled with
// viterbi.Punctured, matching the neutral value convention used elsewhere
// for "not yet available" code bits.
func (di *Deinterleaver) Process(cifBits []uint16, punctured uint16) []uint16 {
	out := make([]uint16, len(cifBits))
	for j, v := range cifBits {
		b := j % 16
		depth := di.depths[b%8]
		q := di.queues[b]
		q = append(q, v)
		if len(q) > depth {
			out[j] = q[0]
			q = q[1:]
		} else {
			out[j] = punctured
		}
		di.queues[b] = q
	}
	return out
}

// Reset clears all delay lines, e.g. when resynchronising to a new ensemble.
func (di *Deinterleaver) Reset() {
	for i := range di.queues {
		di.queues[i] = nil
	}
}
