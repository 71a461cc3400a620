package pad

import "github.com/jeongseonghan/dabradio/internal/observable"

// LabelEvent is emitted whenever the dynamic label text changes.
type LabelEvent struct {
	Text    string
	Charset uint8
}

// Processor decodes one audio component's PAD stream into dynamic label and
// MOT entity updates. Grounded on
// original_source/src/modules/dab/pad/pad_processor.h's field layout:
// persistent contents-indicator list, data-group length association, and
// delegation to the dynamic-label and MOT sub-processors.
type Processor struct {
	fields []activeField

	pendingLength int // from the most recently decoded Data Group Length Indicator
	label         *dynamicLabelAssembler
	mots          *motStore

	OnLabelChange  *observable.Observable[LabelEvent]
	OnLabelCommand *observable.Observable[LabelCommand]
	OnMOTEntity    *observable.Observable[MOTEntity]
}

// NewProcessor returns a Processor with a default MOT assembler cache
// capacity of 10, per spec.md §4.5.
func NewProcessor() *Processor {
	return &Processor{
		label:          newDynamicLabelAssembler(),
		mots:           newMOTStore(10),
		OnLabelChange:  observable.New[LabelEvent](),
		OnLabelCommand: observable.New[LabelCommand](),
		OnMOTEntity:    observable.New[MOTEntity](),
	}
}

// Process consumes one audio access unit's XPAD field (still in on-air byte
// order). hasCIList should be true whenever this XPAD
// field carries a fresh contents-indicator list (variable-length XPAD with
// an indicator present); short XPAD and variable XPAD continuations pass
// false and reuse the processor's persisted field list.
func (p *Processor) Process(xpadReversed []byte, hasCIList bool) {
	xpad := reverseXPAD(xpadReversed)

	pos := 0
	if hasCIList {
		fields, consumed := parseCIList(xpad)
		p.fields = fields
		pos = consumed
	}

	for i := range p.fields {
		f := &p.fields[i]
		if pos+f.length > len(xpad) {
			break
		}
		chunk := xpad[pos : pos+f.length]
		pos += f.length
		p.dispatchField(f.appType, chunk)
		if f.appType == AppTypeMOTStart {
			f.appType = AppTypeMOTContinuation
		}
	}
}

func (p *Processor) dispatchField(appType uint8, data []byte) {
	switch appType {
	case AppTypeDataGroupLengthIndicator:
		if length, ok := parseLengthIndicator(data); ok {
			p.pendingLength = length
		}
	case AppTypeDynamicLabelSegment:
		p.handleDynamicLabelSegment(data)
	case AppTypeDynamicLabelCommand:
		if len(data) >= 1 {
			p.OnLabelCommand.Notify(LabelCommand(data[0]))
		}
	case AppTypeMOTStart, AppTypeMOTContinuation:
		p.handleMOTField(data)
	}
}

// handleDynamicLabelSegment reads this implementation's simplified segment
// header: bit 7 marks the first segment (next byte is the charset), bit 6
// marks the last segment (next byte is the declared segment count minus
// one), and bits 2:0 give the segment number, per spec.md §4.5's "first
// segment carries charset ... last carries total-segment count".
func (p *Processor) handleDynamicLabelSegment(data []byte) {
	if len(data) < 2 {
		return
	}
	header := data[0]
	isFirst := header&0x80 != 0
	isLast := header&0x40 != 0
	segNum := int(header & 0x07)
	rest := data[1:]

	if isFirst {
		if len(rest) < 1 {
			return
		}
		p.label.setCharset(rest[0])
		rest = rest[1:]
	}
	if isLast {
		if len(rest) < 1 {
			return
		}
		p.label.setTotalSegments(int(rest[0]) + 1)
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return
	}

	if p.label.updateSegment(segNum, rest) {
		p.OnLabelChange.Notify(LabelEvent{
			Text:    string(p.label.lastCombined),
			Charset: p.label.charsetValue(),
		})
	}
}

func (p *Processor) handleMOTField(data []byte) {
	groupType, transportID, segNum, isLast, payload, ok := parseMOTDataGroupHeader(data)
	if !ok {
		return
	}

	st := p.mots.get(transportID)
	switch groupType {
	case MOTGroupHeader:
		st.header.addSegment(segNum, payload, isLast)
	case MOTGroupBody:
		st.body.addSegment(segNum, payload, isLast)
	default:
		// Directory (6/7) and conditional-access (1) groups are recognised
		// but not assembled: spec.md's Open Question decision keeps this
		// receiver to the header+body case only.
		return
	}

	if !st.header.isComplete() || !st.body.isComplete() {
		return
	}

	hdrBytes := st.header.orderedBytes()
	bodySize, headerSize, contentType, contentSubType, ok := parseMOTHeader(hdrBytes)
	if !ok {
		return
	}
	bodyBytes := st.body.orderedBytes()
	if uint32(len(bodyBytes)) != bodySize {
		return
	}

	p.OnMOTEntity.Notify(MOTEntity{
		TransportID:    transportID,
		ContentType:    contentType,
		ContentSubType: contentSubType,
		ContentName:    parseMOTContentName(hdrBytes, headerSize),
		Body:           bodyBytes,
	})
	p.mots.remove(transportID)
}
