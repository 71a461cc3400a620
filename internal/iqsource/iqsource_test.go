package iqsource

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"
)

func TestParseRawFormat_KnownModes(t *testing.T) {
	cases := []string{"raw_u8", "raw_s8", "raw_s16l", "raw_s16b", "raw_u16l", "raw_u16b",
		"raw_s32l", "raw_s32b", "raw_u32l", "raw_u32b", "raw_f32l", "raw_f32b", "raw_f64l", "raw_f64b"}
	for _, mode := range cases {
		if _, ok := ParseRawFormat(mode); !ok {
			t.Fatalf("ParseRawFormat(%q) not recognized", mode)
		}
	}
	if _, ok := ParseRawFormat("raw_nonsense"); ok {
		t.Fatalf("ParseRawFormat accepted unknown mode")
	}
}

func TestRawSource_S16LE_UnityScaling(t *testing.T) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(int16(32767)))  // I = max positive
	binary.LittleEndian.PutUint16(buf[2:4], 0x8000)                // Q = max negative (int16 -32768)
	binary.LittleEndian.PutUint16(buf[4:6], uint16(int16(0)))
	binary.LittleEndian.PutUint16(buf[6:8], uint16(int16(0)))

	src := NewRaw(bytes.NewReader(buf), FormatS16LE)
	dest := make([]complex128, 2)
	n, err := src.Read(dest)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if n != 2 {
		t.Fatalf("n = %d, want 2", n)
	}
	if math.Abs(real(dest[0])-1.0) > 1e-6 {
		t.Fatalf("I = %v, want ~1.0", real(dest[0]))
	}
	if dest[0] != complex(real(dest[0]), imag(dest[0])) {
		t.Fatalf("unexpected complex value")
	}
	wantQ := -32768.0 / 32767.0
	if math.Abs(imag(dest[0])-wantQ) > 1e-6 {
		t.Fatalf("Q = %v, want ~%v", imag(dest[0]), wantQ)
	}
	if dest[1] != 0 {
		t.Fatalf("second sample = %v, want 0", dest[1])
	}
}

func TestRawSource_U8_MidScale(t *testing.T) {
	buf := []byte{128, 128, 255, 0} // (I,Q) = (mid, mid), (max, min)
	src := NewRaw(bytes.NewReader(buf), FormatU8)
	dest := make([]complex128, 2)
	n, err := src.Read(dest)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if n != 2 {
		t.Fatalf("n = %d, want 2", n)
	}
	if dest[0] != 0 {
		t.Fatalf("mid-scale sample = %v, want 0", dest[0])
	}
	if math.Abs(real(dest[1])-(127.0/128.0)) > 1e-9 {
		t.Fatalf("I = %v, want ~0.9921875", real(dest[1]))
	}
	if imag(dest[1]) != -1 {
		t.Fatalf("Q = %v, want -1", imag(dest[1]))
	}
}

func TestRawSource_ShortReadReturnsPartialThenEOF(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5, 6} // 3 full u8 IQ pairs, then the stream ends
	src := NewRaw(bytes.NewReader(buf), FormatU8)
	dest := make([]complex128, 4)

	n, err := src.Read(dest)
	if err != nil {
		t.Fatalf("first Read error: %v", err)
	}
	if n != 3 {
		t.Fatalf("n = %d, want 3", n)
	}

	n2, err2 := src.Read(dest)
	if n2 != 0 || err2 != io.EOF {
		t.Fatalf("second Read = (%d, %v), want (0, io.EOF)", n2, err2)
	}
}

func buildMinimalWAV(t *testing.T, format uint16, channels uint16, bitsPerSample uint16, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	writeU32(&buf, uint32(36+len(data)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	writeU32(&buf, 16)
	writeU16(&buf, format)
	writeU16(&buf, channels)
	writeU32(&buf, 44100)
	byteRate := uint32(44100) * uint32(channels) * uint32(bitsPerSample/8)
	writeU32(&buf, byteRate)
	writeU16(&buf, channels*(bitsPerSample/8))
	writeU16(&buf, bitsPerSample)

	buf.WriteString("data")
	writeU32(&buf, uint32(len(data)))
	buf.Write(data)
	return buf.Bytes()
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func TestOpenWAV_PCM16Stereo(t *testing.T) {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint16(data[0:2], uint16(int16(16383)))
	binary.LittleEndian.PutUint16(data[2:4], 0xC000) // int16 -16384
	binary.LittleEndian.PutUint16(data[4:6], 0)
	binary.LittleEndian.PutUint16(data[6:8], 0)

	raw := buildMinimalWAV(t, 1, 2, 16, data)
	src, header, err := OpenWAV(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("OpenWAV error: %v", err)
	}
	if header.Format != WAVFormatPCM || header.Channels != 2 || header.BitsPerSample != 16 {
		t.Fatalf("unexpected header: %+v", header)
	}

	dest := make([]complex128, 2)
	n, err := src.Read(dest)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if n != 2 {
		t.Fatalf("n = %d, want 2", n)
	}
	wantI := 16383.0 / 32767.0
	wantQ := -16384.0 / 32767.0
	if math.Abs(real(dest[0])-wantI) > 1e-6 || math.Abs(imag(dest[0])-wantQ) > 1e-6 {
		t.Fatalf("dest[0] = %v, want (%v,%v)", dest[0], wantI, wantQ)
	}

	_, err = src.Read(dest)
	if err != io.EOF {
		t.Fatalf("expected io.EOF after data chunk exhausted, got %v", err)
	}
}

func TestOpenWAV_RejectsMono(t *testing.T) {
	raw := buildMinimalWAV(t, 1, 1, 16, make([]byte, 4))
	_, _, err := OpenWAV(bytes.NewReader(raw))
	if err == nil {
		t.Fatalf("expected error for mono WAV, got nil")
	}
}

func TestOpenWAV_SkipsUnknownChunkBeforeData(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	writeU32(&buf, 0) // size field not validated by readWAVHeader
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	writeU32(&buf, 16)
	writeU16(&buf, 1)
	writeU16(&buf, 2)
	writeU32(&buf, 44100)
	writeU32(&buf, 44100*2*2)
	writeU16(&buf, 4)
	writeU16(&buf, 16)

	buf.WriteString("LIST")
	writeU32(&buf, 4)
	buf.Write([]byte{'a', 'b', 'c', 'd'})

	data := []byte{1, 2, 3, 4}
	buf.WriteString("data")
	writeU32(&buf, uint32(len(data)))
	buf.Write(data)

	src, _, err := OpenWAV(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenWAV error: %v", err)
	}
	dest := make([]complex128, 1)
	n, err := src.Read(dest)
	if err != nil || n != 1 {
		t.Fatalf("Read = (%d, %v), want (1, nil)", n, err)
	}
}

func TestDecodeALawSample_SilenceRoundTrip(t *testing.T) {
	// 0xD5 is the A-law encoding of analogue zero under the standard even-bit
	// inversion scheme.
	v := decodeALawSample(0xD5)
	if math.Abs(v) > 0.05 {
		t.Fatalf("A-law silence decoded to %v, want near 0", v)
	}
}

func TestDecodeMuLawSample_SilenceRoundTrip(t *testing.T) {
	// 0xFF is the mu-law encoding of analogue zero.
	v := decodeMuLawSample(0xFF)
	if math.Abs(v) > 0.05 {
		t.Fatalf("mu-law silence decoded to %v, want near 0", v)
	}
}
