package iqsource

import (
	"encoding/binary"
	"math"
)

// Numeric-max / mid-scale constants for spec.md §6's conversion formulas:
// "signed -> divide by numeric_max; unsigned -> subtract mid-scale then
// divide by mid-scale".
const (
	maxInt8   = 127
	midU8     = 128
	maxInt16  = 32767
	midU16    = 32768
	maxInt24  = 1<<23 - 1
	midU24    = 1 << 23
	maxInt32  = math.MaxInt32
	midU32    = 1 << 31
)

func decodeRawSample(f RawFormat, b []byte) float64 {
	switch f {
	case FormatU8:
		return (float64(b[0]) - midU8) / midU8
	case FormatS8:
		return float64(int8(b[0])) / maxInt8
	case FormatS16LE:
		return float64(int16(binary.LittleEndian.Uint16(b))) / maxInt16
	case FormatS16BE:
		return float64(int16(binary.BigEndian.Uint16(b))) / maxInt16
	case FormatU16LE:
		return (float64(binary.LittleEndian.Uint16(b)) - midU16) / midU16
	case FormatU16BE:
		return (float64(binary.BigEndian.Uint16(b)) - midU16) / midU16
	case FormatS32LE:
		return float64(int32(binary.LittleEndian.Uint32(b))) / maxInt32
	case FormatS32BE:
		return float64(int32(binary.BigEndian.Uint32(b))) / maxInt32
	case FormatU32LE:
		return (float64(binary.LittleEndian.Uint32(b)) - midU32) / midU32
	case FormatU32BE:
		return (float64(binary.BigEndian.Uint32(b)) - midU32) / midU32
	case FormatF32LE:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case FormatF32BE:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(b)))
	case FormatF64LE:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	case FormatF64BE:
		return math.Float64frombits(binary.BigEndian.Uint64(b))
	default:
		return 0
	}
}

// decodePCMSample reads one little-endian signed PCM sample of the given
// bit depth (8, 16, 24, or 32) and scales it to [-1, 1). 8-bit PCM is the
// one exception to "signed": the WAV format stores 8-bit PCM unsigned.
func decodePCMSample(bitsPerSample int, b []byte) (float64, bool) {
	switch bitsPerSample {
	case 8:
		return (float64(b[0]) - midU8) / midU8, true
	case 16:
		return float64(int16(binary.LittleEndian.Uint16(b))) / maxInt16, true
	case 24:
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if v&0x800000 != 0 {
			v |= ^int32(0xFFFFFF) // sign-extend 24 -> 32 bits
		}
		return float64(v) / maxInt24, true
	case 32:
		return float64(int32(binary.LittleEndian.Uint32(b))) / maxInt32, true
	default:
		return 0, false
	}
}

// decodeIEEESample reads one little-endian IEEE754 float sample of the
// given bit depth (32 or 64).
func decodeIEEESample(bitsPerSample int, b []byte) (float64, bool) {
	switch bitsPerSample {
	case 32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b))), true
	case 64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b)), true
	default:
		return 0, false
	}
}

// decodeALawSample implements ITU-T G.711 A-law expansion to a 13-bit
// signed value, scaled to [-1, 1).
func decodeALawSample(raw byte) float64 {
	v := raw ^ 0b01010101
	sign := (v >> 7) ^ 0b1
	exponent := (v >> 4) & 0b111
	mantissa := int16(v & 0b1111)

	decoded := (mantissa << 1) | 0b1
	if exponent > 0 {
		decoded |= 0b1 << 5
	}
	if exponent > 1 {
		decoded <<= exponent - 1
	}
	if sign != 0 {
		decoded = ^decoded
	}
	const scale = 1.0 / float64(0x1000)
	return float64(decoded) * scale
}

// decodeMuLawSample implements ITU-T G.711 mu-law expansion to a 14-bit
// signed value, scaled to [-1, 1).
func decodeMuLawSample(raw byte) float64 {
	v := raw ^ 0xFF
	sign := v >> 7
	exponent := (v >> 4) & 0b111
	mantissa := int16(v & 0b1111)

	decoded := ((int16(1) << 5) | (mantissa << 1) | 1) << exponent
	if sign != 0 {
		decoded = ^decoded
	}
	const scale = 1.0 / float64(0x2000)
	return float64(decoded) * scale
}
