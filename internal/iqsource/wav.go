package iqsource

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// WAVFormat is the WAV format-chunk audio format code.
type WAVFormat uint16

const (
	WAVFormatPCM        WAVFormat = 1
	WAVFormatIEEEFloat  WAVFormat = 3
	WAVFormatALaw       WAVFormat = 6
	WAVFormatMuLaw      WAVFormat = 7
	WAVFormatExtensible WAVFormat = 0xFFFE
)

// extensiblePCMGUIDSuffix is the trailing 14 bytes every KSDATAFORMAT_SUBTYPE
// GUID shares; only the leading 2 bytes vary (they carry the real format
// code). spec.md §6: "extensible subformat GUID (must match the 14-byte
// reference suffix for PCM)".
var extensiblePCMGUIDSuffix = [14]byte{0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}

// WAVHeader describes one parsed WAV file's audio format.
type WAVHeader struct {
	Format        WAVFormat
	Channels      int
	SampleRate    uint32
	BitsPerSample int
	DataSize      uint32
}

func readWAVHeader(r io.Reader) (*WAVHeader, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("iqsource: read RIFF chunk: %w", err)
	}
	if string(riff[0:4]) != "RIFF" {
		return nil, fmt.Errorf("iqsource: missing RIFF chunk id")
	}
	if string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("iqsource: missing WAVE id")
	}

	var fmtHeader [8]byte
	if _, err := io.ReadFull(r, fmtHeader[:]); err != nil {
		return nil, fmt.Errorf("iqsource: read fmt chunk header: %w", err)
	}
	if string(fmtHeader[0:4]) != "fmt " {
		return nil, fmt.Errorf("iqsource: expected fmt chunk, got %q", fmtHeader[0:4])
	}
	fmtSize := binary.LittleEndian.Uint32(fmtHeader[4:8])
	if fmtSize != 16 && fmtSize != 18 && fmtSize != 40 {
		return nil, fmt.Errorf("iqsource: invalid fmt chunk size %d", fmtSize)
	}
	fmtBody := make([]byte, fmtSize)
	if _, err := io.ReadFull(r, fmtBody); err != nil {
		return nil, fmt.Errorf("iqsource: read fmt chunk body: %w", err)
	}

	header := &WAVHeader{
		Format:        WAVFormat(binary.LittleEndian.Uint16(fmtBody[0:2])),
		Channels:      int(binary.LittleEndian.Uint16(fmtBody[2:4])),
		SampleRate:    binary.LittleEndian.Uint32(fmtBody[4:8]),
		BitsPerSample: int(binary.LittleEndian.Uint16(fmtBody[14:16])),
	}

	if fmtSize > 16 {
		extSize := int(binary.LittleEndian.Uint16(fmtBody[16:18]))
		if 18+extSize != int(fmtSize) {
			return nil, fmt.Errorf("iqsource: fmt extension size mismatch: declared %d, chunk carries %d", extSize, int(fmtSize)-18)
		}
		if extSize == 22 {
			subCode := binary.LittleEndian.Uint16(fmtBody[24:26])
			guid := fmtBody[26:40]
			if !bytes.Equal(guid[:14], extensiblePCMGUIDSuffix[:]) {
				return nil, fmt.Errorf("iqsource: extensible subformat GUID does not match the PCM reference suffix")
			}
			header.Format = WAVFormat(subCode)
		}
	}

	switch header.Format {
	case WAVFormatPCM:
	case WAVFormatIEEEFloat, WAVFormatALaw, WAVFormatMuLaw:
		var factHeader [8]byte
		if _, err := io.ReadFull(r, factHeader[:]); err != nil {
			return nil, fmt.Errorf("iqsource: read fact chunk: %w", err)
		}
		if string(factHeader[0:4]) != "fact" {
			return nil, fmt.Errorf("iqsource: expected fact chunk for non-PCM format, got %q", factHeader[0:4])
		}
		factSize := binary.LittleEndian.Uint32(factHeader[4:8])
		if factSize < 4 {
			return nil, fmt.Errorf("iqsource: fact chunk too small: %d bytes", factSize)
		}
		if _, err := io.CopyN(io.Discard, r, int64(factSize)); err != nil {
			return nil, fmt.Errorf("iqsource: read fact chunk body: %w", err)
		}
	default:
		return nil, fmt.Errorf("iqsource: unsupported wav format code 0x%04x", uint16(header.Format))
	}

	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(r, chunkHeader[:]); err != nil {
			return nil, fmt.Errorf("iqsource: read chunk header: %w", err)
		}
		id := string(chunkHeader[0:4])
		size := binary.LittleEndian.Uint32(chunkHeader[4:8])
		if id == "data" {
			header.DataSize = size
			break
		}
		if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
			return nil, fmt.Errorf("iqsource: skip chunk %q: %w", id, err)
		}
	}

	return header, nil
}

type wavSource struct {
	r              io.Reader
	header         WAVHeader
	bytesPerSample int
	remaining      uint32
	decode         func([]byte) float64
	buf            []byte
}

// OpenWAV parses a WAV header from r and returns a Source that decodes its
// data chunk as interleaved stereo IQ samples (left channel = I, right
// channel = Q), along with the parsed header for diagnostics.
func OpenWAV(r io.Reader) (Source, *WAVHeader, error) {
	header, err := readWAVHeader(r)
	if err != nil {
		return nil, nil, err
	}
	if header.Channels != 2 {
		return nil, nil, fmt.Errorf("iqsource: wav IQ source must be stereo, got %d channel(s)", header.Channels)
	}

	decode, bps, err := wavSampleDecoder(*header)
	if err != nil {
		return nil, nil, err
	}

	return &wavSource{
		r:              r,
		header:         *header,
		bytesPerSample: bps,
		remaining:      header.DataSize,
		decode:         decode,
	}, header, nil
}

func wavSampleDecoder(h WAVHeader) (func([]byte) float64, int, error) {
	switch h.Format {
	case WAVFormatPCM:
		return func(b []byte) float64 {
			v, _ := decodePCMSample(h.BitsPerSample, b)
			return v
		}, h.BitsPerSample / 8, nil
	case WAVFormatIEEEFloat:
		return func(b []byte) float64 {
			v, _ := decodeIEEESample(h.BitsPerSample, b)
			return v
		}, h.BitsPerSample / 8, nil
	case WAVFormatALaw:
		if h.BitsPerSample != 8 {
			return nil, 0, fmt.Errorf("iqsource: A-law wav must be 8 bits per sample, got %d", h.BitsPerSample)
		}
		return func(b []byte) float64 { return decodeALawSample(b[0]) }, 1, nil
	case WAVFormatMuLaw:
		if h.BitsPerSample != 8 {
			return nil, 0, fmt.Errorf("iqsource: mu-law wav must be 8 bits per sample, got %d", h.BitsPerSample)
		}
		return func(b []byte) float64 { return decodeMuLawSample(b[0]) }, 1, nil
	default:
		return nil, 0, fmt.Errorf("iqsource: unhandled wav format code 0x%04x", uint16(h.Format))
	}
}

func (s *wavSource) Read(dest []complex128) (int, error) {
	if s.remaining == 0 {
		return 0, io.EOF
	}
	stride := s.bytesPerSample * 2
	need := len(dest) * stride
	if uint32(need) > s.remaining {
		need = int(s.remaining)
	}
	need -= need % stride
	if need == 0 {
		return 0, io.EOF
	}
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	buf := s.buf[:need]

	n, err := io.ReadFull(s.r, buf)
	full := n / stride
	for i := 0; i < full; i++ {
		off := i * stride
		re := s.decode(buf[off : off+s.bytesPerSample])
		im := s.decode(buf[off+s.bytesPerSample : off+2*s.bytesPerSample])
		dest[i] = complex(re, im)
	}
	s.remaining -= uint32(full * stride)

	if err == io.ErrUnexpectedEOF || err == io.EOF {
		s.remaining = 0
		if full > 0 {
			return full, nil
		}
		return 0, io.EOF
	}
	if err != nil {
		return full, err
	}
	return full, nil
}
