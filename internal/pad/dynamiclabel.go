package pad

// Dynamic label limits, matching
// original_source/src/dab/pad/pad_dynamic_label_assembler.h's
// m_MAX_MESSAGE_BYTES=128, m_MAX_SEGMENT_BYTES=16, m_MAX_SEGMENTS=8.
const (
	maxLabelSegments    = 8
	maxLabelSegmentSize = 16
)

// LabelCommand identifies a dynamic label command group, e.g. clear
// display.
type LabelCommand uint8

const (
	// CommandClearDisplay asks the receiver to blank the current label.
	CommandClearDisplay LabelCommand = 0x01
)

// dynamicLabelAssembler combines 1..8 label segments into the completed
// label text, the first segment supplying the charset and the last
// supplying the total segment count, per spec.md §4.5. Grounded on
// original_source/src/dab/pad/pad_dynamic_label_assembler.cpp's
// UpdateSegment/CombineSegments pattern, using a Go slice-of-segments in
// place of the original's flat unordered byte buffer.
type dynamicLabelAssembler struct {
	segments         [maxLabelSegments][]byte
	requiredSegments int
	charset          uint8
	changed          bool
	lastCombined     []byte
}

func newDynamicLabelAssembler() *dynamicLabelAssembler {
	return &dynamicLabelAssembler{}
}

func (a *dynamicLabelAssembler) reset() {
	*a = dynamicLabelAssembler{}
}

func (a *dynamicLabelAssembler) setTotalSegments(n int) {
	if n != a.requiredSegments {
		a.changed = true
	}
	a.requiredSegments = n
}

func (a *dynamicLabelAssembler) setCharset(cs uint8) {
	if cs != a.charset {
		a.changed = true
	}
	a.charset = cs
}

// updateSegment stores segNum's bytes and reports whether the label is now
// fully assembled and changed from its previous value.
func (a *dynamicLabelAssembler) updateSegment(segNum int, data []byte) bool {
	if segNum < 0 || segNum >= maxLabelSegments {
		return false
	}
	if len(data) == 0 || len(data) > maxLabelSegmentSize {
		return false
	}

	prev := a.segments[segNum]
	mismatch := len(prev) != len(data)
	if !mismatch {
		for i := range data {
			if prev[i] != data[i] {
				mismatch = true
				break
			}
		}
	}
	a.segments[segNum] = append([]byte(nil), data...)
	if mismatch {
		a.changed = true
	}

	if !a.changed {
		return false
	}
	if combined, ok := a.combine(); ok {
		a.changed = false
		a.lastCombined = combined
		return true
	}
	return false
}

func (a *dynamicLabelAssembler) combine() ([]byte, bool) {
	if a.requiredSegments == 0 {
		return nil, false
	}
	var out []byte
	for i := 0; i < a.requiredSegments; i++ {
		if a.segments[i] == nil {
			return nil, false
		}
		out = append(out, a.segments[i]...)
	}
	return out, true
}

func (a *dynamicLabelAssembler) charsetValue() uint8 { return a.charset }
