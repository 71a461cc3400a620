package pad

import (
	"bytes"
	"testing"

	"github.com/jeongseonghan/dabradio/internal/crc16"
)

func packMOTHeader(bodySize uint32, headerSize uint16, contentType uint8, contentSubType uint16) []byte {
	combined := (uint64(bodySize) << 28) | (uint64(headerSize) << 15) | (uint64(contentType) << 9) | uint64(contentSubType)
	out := make([]byte, 7)
	for i := 6; i >= 0; i-- {
		out[i] = byte(combined)
		combined >>= 8
	}
	return out
}

func motField(groupType uint8, transportID uint16, segNum int, isLast bool, payload []byte) []byte {
	segByte := byte(segNum & 0x7F)
	if isLast {
		segByte |= 0x80
	}
	out := []byte{groupType, byte(transportID >> 8), byte(transportID), segByte}
	return append(out, payload...)
}

// TestMOTReassembly_OutOfOrderSegments mirrors spec.md §8 scenario 5: body
// segments sent in order {2,0,3,1}, each 32 bytes, yielding body_size=128;
// the entity must only be emitted once, with bytes in index order.
func TestMOTReassembly_OutOfOrderSegments(t *testing.T) {
	p := NewProcessor()

	var emitted []MOTEntity
	p.OnMOTEntity.Subscribe(func(e MOTEntity) { emitted = append(emitted, e) })

	const transportID = 42
	header := packMOTHeader(128, 7, 2, 1)
	p.handleMOTField(motField(MOTGroupHeader, transportID, 0, true, header))

	segments := map[int][]byte{
		0: bytes.Repeat([]byte{0x00}, 32),
		1: bytes.Repeat([]byte{0x11}, 32),
		2: bytes.Repeat([]byte{0x22}, 32),
		3: bytes.Repeat([]byte{0x33}, 32),
	}
	order := []int{2, 0, 3, 1}
	for _, idx := range order {
		isLast := idx == 3
		p.handleMOTField(motField(MOTGroupBody, transportID, idx, isLast, segments[idx]))
	}

	if len(emitted) != 1 {
		t.Fatalf("got %d MOT entity events, want 1", len(emitted))
	}
	want := append(append(append(append([]byte{}, segments[0]...), segments[1]...), segments[2]...), segments[3]...)
	if !bytes.Equal(emitted[0].Body, want) {
		t.Fatalf("body mismatch: got %x, want %x", emitted[0].Body, want)
	}
	if emitted[0].ContentType != 2 {
		t.Fatalf("ContentType = %d, want 2", emitted[0].ContentType)
	}
}

func TestDynamicLabel_AssemblesAcrossSegments(t *testing.T) {
	p := NewProcessor()
	var events []LabelEvent
	p.OnLabelChange.Subscribe(func(e LabelEvent) { events = append(events, e) })

	// single-segment label: first == last segment 0.
	header := byte(0x80 | 0x40 | 0x00) // first + last, segNum 0
	charset := byte(0x00)
	totalSegsMinus1 := byte(0x00)
	text := []byte("HELLO")
	data := append([]byte{header, charset, totalSegsMinus1}, text...)

	p.handleDynamicLabelSegment(data)

	if len(events) != 1 {
		t.Fatalf("got %d label events, want 1", len(events))
	}
	if events[0].Text != "HELLO" {
		t.Fatalf("label text = %q, want %q", events[0].Text, "HELLO")
	}
}

func TestParseCIList_StopsAtEndMarker(t *testing.T) {
	xpad := []byte{0x00, 0xFF, 0xFF, 0xFF}
	fields, consumed := parseCIList(xpad)
	if len(fields) != 0 {
		t.Fatalf("got %d fields, want 0 (immediate end marker)", len(fields))
	}
	if consumed != 1 {
		t.Fatalf("consumed = %d, want 1", consumed)
	}
}

func TestParseLengthIndicator_RoundTrip(t *testing.T) {
	raw := []byte{0x01, 0x2C} // length 0x012C = 300
	withCRC := crc16.Append(raw)
	length, ok := parseLengthIndicator(withCRC)
	if !ok {
		t.Fatalf("parseLengthIndicator failed CRC check")
	}
	if length != 300 {
		t.Fatalf("length = %d, want 300", length)
	}
}

func TestParseLengthIndicator_RejectsOversizedLength(t *testing.T) {
	raw := []byte{0xFF, 0xFF} // 65535, well past the 16 KB ceiling
	withCRC := crc16.Append(raw)
	if _, ok := parseLengthIndicator(withCRC); ok {
		t.Fatalf("parseLengthIndicator accepted a length over the 16 KB ceiling")
	}
}
