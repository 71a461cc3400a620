// Package fic implements the DAB Fast Information Channel: per-FIB-group
// depuncture/Viterbi-decode/descramble/CRC, and FIG dispatch into the
// shared database. Grounded on spec.md §4.3 and
// original_source/src/modules/dab/fic/fig_processor.h's declared handler
// set.
package fic

import (
	"github.com/jeongseonghan/dabradio/internal/crc16"
	"github.com/jeongseonghan/dabradio/internal/scrambler"
	"github.com/jeongseonghan/dabradio/internal/viterbi"
)

// FIB-group sizes: one FIB group carries 3 FIBs x 32 bytes = 96 bytes = 768
// information bits (+6 tail bits at rate 1/4 before puncturing).
const (
	FIBsPerGroup    = 3
	FIBBytes        = 32
	InfoBytesPerGroup = FIBsPerGroup * FIBBytes // 96
)

// FIBResult is one decoded, descrambled 32-byte FIB plus its CRC outcome.
type FIBResult struct {
	Data     [FIBBytes]byte
	CRCValid bool
}

// GroupDecoder decodes one FIC FIB group at a time. It owns its own Viterbi
// decoder instance, per spec.md §5 ("Viterbi decoder instances are per-
// thread, never shared").
type GroupDecoder struct {
	vit *viterbi.Decoder
}

// NewGroupDecoder returns a GroupDecoder for the DAB mother code.
func NewGroupDecoder() *GroupDecoder {
	return &GroupDecoder{vit: viterbi.NewDefaultDecoder()}
}

// Decode depunctures receivedSoftBits with the standard FIC puncturing
// (PI_16 x21, PI_15 x3, PI_X), Viterbi-decodes to 96 bytes, descrambles with
// a freshly-reset PRBS, and splits the result into three FIBs, each CRC-
// checked independently.
func (g *GroupDecoder) Decode(receivedSoftBits []uint16) [FIBsPerGroup]FIBResult {
	pattern := viterbi.FICPuncturePattern()
	decoded := g.vit.DecodeWithPuncture(receivedSoftBits, pattern, InfoBytesPerGroup*8)

	descrambled := scrambler.Descramble(append([]byte(nil), decoded...))

	var out [FIBsPerGroup]FIBResult
	for i := 0; i < FIBsPerGroup; i++ {
		fib := descrambled[i*FIBBytes : (i+1)*FIBBytes]
		copy(out[i].Data[:], fib)
		out[i].CRCValid = crc16.Verify(fib)
	}
	return out
}
