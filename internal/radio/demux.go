package radio

import (
	"github.com/jeongseonghan/dabradio/internal/fic"
	"github.com/jeongseonghan/dabradio/internal/viterbi"
)

// splitCIFs divides one frame's soft bits evenly into numCIFs Common
// Interleaved Frames.
func splitCIFs(frameBits []uint16, numCIFs int) [][]uint16 {
	if numCIFs <= 0 {
		numCIFs = 1
	}
	perCIF := len(frameBits) / numCIFs
	out := make([][]uint16, numCIFs)
	for i := 0; i < numCIFs; i++ {
		out[i] = frameBits[i*perCIF : (i+1)*perCIF]
	}
	return out
}

// ficBitsPerCIF is the fixed soft-bit length of one FIC FIB group, as
// physically transmitted (after puncturing): the code bits the cyclic FIC
// pattern keeps out of one group's full rate-1/4 stream.
var ficBitsPerCIF = func() int {
	pattern := viterbi.FICPuncturePattern()
	total := (fic.InfoBytesPerGroup*8 + viterbi.ConstraintLength - 1) * viterbi.CodeRate
	n := 0
	for i := 0; i < total; i++ {
		if pattern[i%len(pattern)] {
			n++
		}
	}
	return n
}()

// splitFICAndMSC separates one CIF's soft bits into its FIC portion (one
// FIB group's worth) and its MSC portion (everything else). spec.md §4.3
// does not specify the exact carrier-level placement of FIC vs MSC bits
// within a CIF; the real DAB multiplex instead dedicates whole OFDM
// symbols at the start of each frame to the FIC rather than interleaving
// it per-CIF. This is a documented simplification: a fixed FIC-sized
// prefix per CIF, with the remainder handed to the MSC subchannel demux.
func splitFICAndMSC(cifBits []uint16) (ficBits, mscBits []uint16) {
	n := ficBitsPerCIF
	if n > len(cifBits) {
		n = len(cifBits)
	}
	return cifBits[:n], cifBits[n:]
}

// subchannelSlice computes the byte offset and length (in soft bits) of
// subchannelID's allocation within one CIF's MSC portion, given the
// currently-known subchannels ordered by ascending StartAddress.
// spec.md does not describe the CU (Capacity Unit)-to-soft-bit-offset
// formula; this implementation approximates it by laying out each bound
// subchannel's punctured bit-length contiguously in StartAddress order,
// which preserves relative ordering without reproducing the exact ETSI CU
// addressing.
func subchannelSlice(mscBits []uint16, order []uint8, lengths map[uint8]int, subchannelID uint8) []uint16 {
	offset := 0
	for _, id := range order {
		length := lengths[id]
		if id == subchannelID {
			end := offset + length
			if end > len(mscBits) {
				end = len(mscBits)
			}
			if offset > len(mscBits) {
				offset = len(mscBits)
			}
			return mscBits[offset:end]
		}
		offset += length
	}
	return nil
}
