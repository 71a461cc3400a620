// Package rs wraps github.com/klauspost/reedsolomon for the DAB+ MSC
// superframe forward error correction: RS(204,188), 188 data bytes and 16
// parity bytes per codeword, applied to each row of a 5-CIF superframe.
//
// This is the same wrapper shape as playok-audio-modem's
// internal/fec/reed_solomon.go, reparametrised from that tool's 223/32
// file-transfer split to DAB+'s 188/16 split. DAB+ virtually interleaves RS
// codewords across the superframe (each codeword's 204 bytes are spread one
// per row across a W-byte-wide block); this implementation applies RS
// row-wise per codeword and leaves interleaving to the caller (internal/msc),
// which is the simplification to be aware of relative to the full standard.
package rs

import (
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// Standard DAB+ superframe Reed-Solomon parameters.
const (
	DataBytes   = 188
	ParityBytes = 16
	CodewordLen = DataBytes + ParityBytes
)

// Codec encodes/decodes single RS(204,188) codewords.
type Codec struct {
	enc reedsolomon.Encoder
}

// NewCodec builds the DAB+ RS(204,188) codec.
func NewCodec() (*Codec, error) {
	enc, err := reedsolomon.New(DataBytes, ParityBytes)
	if err != nil {
		return nil, fmt.Errorf("create reed-solomon codec: %w", err)
	}
	return &Codec{enc: enc}, nil
}

// EncodeCodeword takes up to 188 bytes of data and returns the full 204-byte
// codeword (data followed by 16 parity bytes).
func (c *Codec) EncodeCodeword(data []byte) ([]byte, error) {
	if len(data) > DataBytes {
		return nil, fmt.Errorf("rs: data too large: %d > %d", len(data), DataBytes)
	}
	padded := make([]byte, DataBytes)
	copy(padded, data)

	shards := make([][]byte, CodewordLen)
	for i := 0; i < DataBytes; i++ {
		shards[i] = []byte{padded[i]}
	}
	for i := DataBytes; i < CodewordLen; i++ {
		shards[i] = make([]byte, 1)
	}

	if err := c.enc.Encode(shards); err != nil {
		return nil, fmt.Errorf("rs: encode codeword: %w", err)
	}

	out := make([]byte, CodewordLen)
	for i, s := range shards {
		out[i] = s[0]
	}
	return out, nil
}

// DecodeCodeword reconstructs a 204-byte codeword given the positions known
// to be erasures (e.g. flagged by an upstream CRC/firecode failure), and
// returns the recovered 188 data bytes. An error is returned only when
// recovery is impossible (too many erasures for the code's distance).
func (c *Codec) DecodeCodeword(codeword []byte, erasures []int) ([]byte, error) {
	if len(codeword) != CodewordLen {
		return nil, fmt.Errorf("rs: invalid codeword size: %d != %d", len(codeword), CodewordLen)
	}

	shards := make([][]byte, CodewordLen)
	for i := 0; i < CodewordLen; i++ {
		shards[i] = []byte{codeword[i]}
	}
	for _, idx := range erasures {
		if idx >= 0 && idx < CodewordLen {
			shards[idx] = nil
		}
	}

	if err := c.enc.Reconstruct(shards); err != nil {
		return nil, fmt.Errorf("rs: reconstruct codeword: %w", err)
	}

	ok, err := c.enc.Verify(shards)
	if err != nil {
		return nil, fmt.Errorf("rs: verify codeword: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("rs: codeword uncorrectable")
	}

	out := make([]byte, DataBytes)
	for i := 0; i < DataBytes; i++ {
		out[i] = shards[i][0]
	}
	return out, nil
}
