// Package msc implements the DAB Main Service Channel subchannel decoder:
// per-CIF time deinterleaving, EEP/UEP depuncture, Viterbi decoding, energy
// dispersal descrambling, and Reed-Solomon(204,188) correction across a
// DAB+ superframe, ending in AAC access-unit and PAD-byte delivery.
// Grounded on spec.md §4.4's decode pipeline.
package msc

import (
	"errors"

	"github.com/jeongseonghan/dabradio/internal/database"
	"github.com/jeongseonghan/dabradio/internal/rs"
	"github.com/jeongseonghan/dabradio/internal/scrambler"
	"github.com/jeongseonghan/dabradio/internal/viterbi"
)

// CIFsPerSuperframe is the number of Common Interleaved Frames spanned by
// one DAB+ RS superframe.
const CIFsPerSuperframe = 5

// Config describes one subchannel's protection profile and framing, as
// read from the shared database once its record is complete.
type Config struct {
	SubchannelID          uint8
	IsUEP                 bool
	ProtectionIndex       int // 1..64, UEP only
	EEPLevel              int // 1..4, EEP only
	EEPType               viterbi.EEPType
	InfoBitsPerCIF        int // decoded (post-Viterbi) payload bits carried per CIF
	AccessUnitsPerSuperframe int
}

// AudioFrame is one decoded AAC access unit (raw_data_block), ready for the
// AAC decoder collaborator.
type AudioFrame struct {
	SubchannelID uint8
	Data         []byte
}

// Decoder runs the full per-CIF / per-superframe pipeline for one
// subchannel. Not safe for concurrent use; spec.md assigns one worker per
// subchannel.
type Decoder struct {
	cfg   Config
	deint *Deinterleaver
	vit   *viterbi.Decoder
	prbs  *scrambler.PRBS
	codec *rs.Codec

	superframe []byte
	cifCount   int
	rsErrors   int

	OnAudioFrame func(AudioFrame)
	OnPADBytes   func([]byte)
}

// NewDecoder returns a Decoder for the given subchannel configuration.
func NewDecoder(cfg Config) (*Decoder, error) {
	if cfg.AccessUnitsPerSuperframe <= 0 {
		cfg.AccessUnitsPerSuperframe = 4
	}
	codec, err := rs.NewCodec()
	if err != nil {
		return nil, err
	}
	return &Decoder{
		cfg:   cfg,
		deint: NewDeinterleaver(),
		vit:   viterbi.NewDefaultDecoder(),
		prbs:  scrambler.New(),
		codec: codec,
	}, nil
}

// ConfigFromDatabase builds a Config from a complete database.Subchannel
// record.
func ConfigFromDatabase(sc *database.Subchannel, accessUnitsPerSuperframe int) Config {
	cfg := Config{
		SubchannelID:             sc.ID,
		IsUEP:                    sc.IsUEP,
		ProtectionIndex:          int(sc.UEPProtIndex),
		EEPLevel:                 int(sc.EEPProtLevel),
		InfoBitsPerCIF:           int(sc.Length) * 8,
		AccessUnitsPerSuperframe: accessUnitsPerSuperframe,
	}
	if sc.EEPType == database.EEPTypeB {
		cfg.EEPType = viterbi.EEPTypeB
	}
	return cfg
}

func (d *Decoder) puncturePattern() []bool {
	return PuncturePatternFor(d.cfg)
}

// PuncturePatternFor returns the puncturing pattern one CIF of cfg's
// subchannel consumes, exported so the radio orchestrator can size each
// subchannel's slice of a CIF's soft bits before handing it to ProcessCIF.
func PuncturePatternFor(cfg Config) []bool {
	codewords := (cfg.InfoBitsPerCIF + 31) / 32
	if codewords < 1 {
		codewords = 1
	}
	if cfg.IsUEP {
		return viterbi.UEPPuncturePattern(cfg.ProtectionIndex, codewords)
	}
	return viterbi.EEPPuncturePattern(cfg.EEPLevel, cfg.EEPType, codewords)
}

// PuncturedBitsPerCIF returns the number of physically-transmitted soft
// bits cfg's subchannel occupies per CIF, i.e. len(PuncturePatternFor(cfg)).
func PuncturedBitsPerCIF(cfg Config) int {
	return len(PuncturePatternFor(cfg))
}

// ProcessCIF runs one CIF's worth of this subchannel's soft bits through
// deinterleave -> depuncture -> Viterbi -> descramble, accumulating into the
// current superframe. Every CIFsPerSuperframe calls, it flushes the
// superframe through Reed-Solomon correction and AAC/PAD delivery.
func (d *Decoder) ProcessCIF(cifSoftBits []uint16) error {
	deinterleaved := d.deint.Process(cifSoftBits, viterbi.Punctured)

	pattern := d.puncturePattern()
	decoded := d.vit.DecodeWithPuncture(deinterleaved, pattern, d.cfg.InfoBitsPerCIF)
	if decoded == nil {
		return errors.New("msc: puncture pattern yielded no decodable bits")
	}

	d.prbs.Reset()
	d.prbs.Descramble(decoded)
	d.superframe = append(d.superframe, decoded...)
	d.cifCount++

	if d.cifCount == CIFsPerSuperframe {
		d.flushSuperframe()
		d.superframe = d.superframe[:0]
		d.cifCount = 0
	}
	return nil
}

// RSErrorCount returns the number of RS codewords that failed correction
// across the decoder's lifetime (spec.md §4.4's per-superframe error count).
func (d *Decoder) RSErrorCount() int { return d.rsErrors }

func (d *Decoder) flushSuperframe() {
	var corrected []byte
	for off := 0; off+rs.CodewordLen <= len(d.superframe); off += rs.CodewordLen {
		codeword := d.superframe[off : off+rs.CodewordLen]
		data, err := d.codec.DecodeCodeword(codeword, nil)
		if err != nil {
			d.rsErrors++
			continue
		}
		corrected = append(corrected, data...)
	}
	d.parseAccessUnits(corrected)
}

// parseAccessUnits reads a leading 2-byte-per-AU length table, then slices
// the remainder into access units in order, forwarding each to
// handleAccessUnit. This is a simplified reading of the DAB+ superframe's
// AU-start table and firecode-protected headers: it neither reproduces the
// exact firecode CRC nor the precise table encoding, documented in
// DESIGN.md.
func (d *Decoder) parseAccessUnits(data []byte) {
	n := d.cfg.AccessUnitsPerSuperframe
	tableBytes := n * 2
	if len(data) < tableBytes {
		return
	}
	pos := tableBytes
	for i := 0; i < n; i++ {
		auLen := int(data[2*i])<<8 | int(data[2*i+1])
		if auLen <= 0 || pos+auLen > len(data) {
			break
		}
		d.handleAccessUnit(data[pos : pos+auLen])
		pos += auLen
	}
}

// handleAccessUnit splits off trailing PAD bytes (the last byte of an
// access unit gives the PAD byte count immediately preceding it, per the
// DAB+ data_stream_element convention) and forwards the remainder as an AAC
// raw_data_block.
func (d *Decoder) handleAccessUnit(au []byte) {
	if len(au) == 0 {
		return
	}
	padLen := int(au[len(au)-1])
	if padLen > 0 && padLen+1 <= len(au) {
		padBytes := au[len(au)-1-padLen : len(au)-1]
		aacPayload := au[:len(au)-1-padLen]
		if d.OnPADBytes != nil {
			d.OnPADBytes(append([]byte(nil), padBytes...))
		}
		if d.OnAudioFrame != nil {
			d.OnAudioFrame(AudioFrame{SubchannelID: d.cfg.SubchannelID, Data: append([]byte(nil), aacPayload...)})
		}
		return
	}
	if d.OnAudioFrame != nil {
		d.OnAudioFrame(AudioFrame{SubchannelID: d.cfg.SubchannelID, Data: append([]byte(nil), au...)})
	}
}
