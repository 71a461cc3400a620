package pad

import (
	"strings"

	"github.com/jeongseonghan/dabradio/internal/lru"
)

// MOT data-group types, per spec.md §4.5.
const (
	MOTGroupConditionalAccess uint8 = 1
	MOTGroupHeader            uint8 = 3
	MOTGroupBody              uint8 = 4
	MOTGroupDirectory6        uint8 = 6
	MOTGroupDirectory7        uint8 = 7
)

// MOTEntity is one fully reassembled MOT object (e.g. a slideshow image).
type MOTEntity struct {
	TransportID     uint16
	ContentType     uint8
	ContentSubType  uint16
	ContentName     string
	Body            []byte
}

// motAssembler reassembles one segmented stream (a MOT header or a MOT
// body) from out-of-order segments. Grounded on
// original_source/src/modules/dab/mot/MOT_assembler.h's unordered-buffer ->
// ordered-buffer design, re-expressed with a map keyed by segment index in
// place of the original's flat byte buffer indexed by
// segment_index*max_segment_size — functionally equivalent, more natural in
// Go.
type motAssembler struct {
	segments      map[int][]byte
	totalSegments int // -1 until the last-segment flag is observed
	haveLast      bool
}

func newMOTAssembler() *motAssembler {
	return &motAssembler{segments: make(map[int][]byte), totalSegments: -1}
}

func (m *motAssembler) addSegment(index int, data []byte, isLast bool) {
	m.segments[index] = append([]byte(nil), data...)
	if isLast {
		m.totalSegments = index + 1
		m.haveLast = true
	}
}

func (m *motAssembler) isComplete() bool {
	if !m.haveLast || m.totalSegments <= 0 {
		return false
	}
	for i := 0; i < m.totalSegments; i++ {
		if _, ok := m.segments[i]; !ok {
			return false
		}
	}
	return true
}

func (m *motAssembler) orderedBytes() []byte {
	var out []byte
	for i := 0; i < m.totalSegments; i++ {
		out = append(out, m.segments[i]...)
	}
	return out
}

type motState struct {
	header *motAssembler
	body   *motAssembler
}

// motStore keeps one (header, body) assembler pair per transport id, LRU
// evicted, per spec.md §4.5's "Per-transport-id assembler tables live in an
// LRU cache (default 10); eviction silently drops incomplete assemblies."
type motStore struct {
	cache *lru.Cache[uint16, *motState]
}

func newMOTStore(capacity int) *motStore {
	return &motStore{cache: lru.New[uint16, *motState](capacity)}
}

func (s *motStore) get(transportID uint16) *motState {
	return s.cache.GetOrCreate(transportID, func() *motState {
		return &motState{header: newMOTAssembler(), body: newMOTAssembler()}
	})
}

func (s *motStore) remove(transportID uint16) {
	s.cache.Remove(transportID)
}

// parseMOTDataGroupHeader reads this implementation's simplified MOT
// data-group framing: 1 byte group type, 2 bytes transport id, 1 byte
// (last-segment flag in bit 7, segment number in bits 6:0), then payload.
// The real ETSI EN 300 401 data-group header has optional extension/CRC/
// user-access fields this does not reproduce; documented in DESIGN.md.
func parseMOTDataGroupHeader(data []byte) (groupType uint8, transportID uint16, segNum int, isLast bool, payload []byte, ok bool) {
	if len(data) < 4 {
		return 0, 0, 0, false, nil, false
	}
	groupType = data[0]
	transportID = uint16(data[1])<<8 | uint16(data[2])
	segByte := data[3]
	isLast = segByte&0x80 != 0
	segNum = int(segByte & 0x7F)
	payload = data[4:]
	return groupType, transportID, segNum, isLast, payload, true
}

// parseMOTHeader decodes the fixed 7-byte MOT header prefix (body_size:28,
// header_size:13, content_type:6, content_sub_type:9), per spec.md §4.5.
func parseMOTHeader(data []byte) (bodySize uint32, headerSize uint16, contentType uint8, contentSubType uint16, ok bool) {
	if len(data) < 7 {
		return 0, 0, 0, 0, false
	}
	var combined uint64
	for i := 0; i < 7; i++ {
		combined = (combined << 8) | uint64(data[i])
	}
	bodySize = uint32((combined >> 28) & 0xFFFFFFF)
	headerSize = uint16((combined >> 15) & 0x1FFF)
	contentType = uint8((combined >> 9) & 0x3F)
	contentSubType = uint16(combined & 0x1FF)
	return bodySize, headerSize, contentType, contentSubType, true
}

// motParamContentName is the MOT header-extension parameter id for
// ContentName, per ETSI TS 101 499 clause 6.2.
const motParamContentName uint8 = 0x0C

// parseMOTContentName walks the MOT header's extension field (everything
// past the fixed 7-byte prefix, up to headerSize) looking for a ContentName
// parameter and returns its decoded text, or "" if none is present. Other
// extension parameters (TriggerTime, ExpireTime, ...) are skipped; this
// receiver only surfaces the one the scraper's filenames need.
func parseMOTContentName(data []byte, headerSize uint16) string {
	if int(headerSize) > len(data) {
		return ""
	}
	ext := data[7:headerSize]
	for len(ext) >= 1 {
		pli := ext[0] >> 6
		paramID := ext[0] & 0x3F
		ext = ext[1:]

		var paramLen int
		switch pli {
		case 0:
			paramLen = 0
		case 1:
			paramLen = 1
		case 2:
			paramLen = 4
		default: // 3: variable length
			if len(ext) < 1 {
				return ""
			}
			dataFieldLen := int(ext[0] & 0x7F)
			extended := ext[0]&0x80 != 0
			ext = ext[1:]
			if extended {
				if len(ext) < 1 {
					return ""
				}
				ext = ext[1:] // second length-extension octet, not modelled
			}
			paramLen = dataFieldLen
		}
		if len(ext) < paramLen {
			return ""
		}
		param := ext[:paramLen]
		ext = ext[paramLen:]

		if paramID == motParamContentName && paramLen >= 1 {
			return strings.TrimRight(string(param[1:]), "\x00")
		}
	}
	return ""
}
