package fic

import (
	"testing"

	"github.com/jeongseonghan/dabradio/internal/crc16"
	"github.com/jeongseonghan/dabradio/internal/database"
	"github.com/jeongseonghan/dabradio/internal/scrambler"
	"github.com/jeongseonghan/dabradio/internal/viterbi"
)

func buildLabelFIB(t *testing.T) [FIBBytes]byte {
	t.Helper()
	label := "BBC NATIONAL DAB"
	if len(label) != 16 {
		t.Fatalf("test label must be exactly 16 bytes, got %d", len(label))
	}

	payload := make([]byte, 0, 22)
	payload = append(payload, 0x00)       // extension 0 (ensemble label), rfu bits zero
	payload = append(payload, 0x00)       // charset 0 / rfu 0
	payload = append(payload, 0xC1, 0x81) // ensemble reference
	payload = append(payload, []byte(label)...)
	payload = append(payload, 0x00, 0x00) // character-flag field, unused here

	header := byte(1)<<5 | byte(len(payload))

	content := make([]byte, 0, 30)
	content = append(content, header)
	content = append(content, payload...)
	content = append(content, 0xFF) // FIG type 7 length 31 end marker
	for len(content) < 30 {
		content = append(content, 0x00)
	}

	var fib [FIBBytes]byte
	withCRC := crc16.Append(content)
	copy(fib[:], withCRC)
	return fib
}

func emptyFIB() [FIBBytes]byte {
	content := make([]byte, 30)
	var fib [FIBBytes]byte
	copy(fib[:], crc16.Append(content))
	return fib
}

// punctureFull extracts the compacted "as transmitted" stream from a full
// rate-1/4 code-bit stream, the inverse of viterbi.Depuncture.
func punctureFull(full []uint16, pattern []bool) []uint16 {
	out := make([]uint16, 0, len(full))
	for i, v := range full {
		if pattern[i%len(pattern)] {
			out = append(out, v)
		}
	}
	return out
}

// TestFIBRoundTrip_EnsembleLabel builds one FIB group containing an
// ensemble-label FIG 1/0, puts it through scramble -> convolutional encode
// -> puncture -> GroupDecoder.Decode -> FIG parse -> dispatch, and checks
// that the ensemble label update fires.
func TestFIBRoundTrip_EnsembleLabel(t *testing.T) {
	fib0 := buildLabelFIB(t)
	fib1 := emptyFIB()
	fib2 := emptyFIB()

	group := make([]byte, 0, InfoBytesPerGroup)
	group = append(group, fib0[:]...)
	group = append(group, fib1[:]...)
	group = append(group, fib2[:]...)

	scrambled := scrambler.Descramble(append([]byte(nil), group...))

	enc := viterbi.NewDefaultDecoder()
	full := enc.Encode(scrambled, InfoBytesPerGroup*8)

	pattern := viterbi.FICPuncturePattern()
	received := punctureFull(full, pattern)

	gd := NewGroupDecoder()
	results := gd.Decode(received)

	if !results[0].CRCValid {
		t.Fatalf("FIB 0 failed CRC after round trip")
	}
	if results[0].Data != fib0 {
		t.Fatalf("FIB 0 data mismatch after round trip:\n got %x\nwant %x", results[0].Data, fib0)
	}

	db := database.New()
	var labelEvents []database.Event
	db.OnUpdate.Subscribe(func(e database.Event) {
		if e.Entity == "ensemble" && e.Field == "label" {
			labelEvents = append(labelEvents, e)
		}
	})

	disp := NewDispatcher(db)
	for _, fib := range results {
		if !fib.CRCValid {
			continue
		}
		for _, fig := range ParseFIBFIGs(fib.Data[:30]) {
			disp.Dispatch(fig)
		}
	}

	if len(labelEvents) != 1 {
		t.Fatalf("got %d ensemble label update events, want 1", len(labelEvents))
	}
	if labelEvents[0].Result != database.Success {
		t.Fatalf("ensemble label update result = %v, want Success", labelEvents[0].Result)
	}
	if db.Ensemble().Label != "BBC NATIONAL DAB" {
		t.Fatalf("ensemble label = %q, want %q", db.Ensemble().Label, "BBC NATIONAL DAB")
	}
	if db.Ensemble().Reference != 0xC181 {
		t.Fatalf("ensemble reference = %x, want 0xC181", db.Ensemble().Reference)
	}
}

func TestParseFIBFIGs_StopsAtEndMarker(t *testing.T) {
	content := make([]byte, 30)
	content[0] = 0xFF // immediate end marker
	figs := ParseFIBFIGs(content)
	if len(figs) != 0 {
		t.Fatalf("got %d FIGs before end marker, want 0", len(figs))
	}
}

func TestDispatch_ServiceOrganisation_AudioComponentGetsDABPlusType(t *testing.T) {
	db := database.New()
	disp := NewDispatcher(db)

	// serviceID=0x1234, 1 component: tmID=stream-audio, componentID=1,
	// subChID=15, ASCTy=0x3F (DAB+).
	payload := []byte{0x12, 0x34, 0x01, 0x01, 0x3F}
	fig := FIG{Type: 0, Extension: 2, Payload: payload}

	disp.Dispatch(fig)

	comp := db.Component(0x1234, 1)
	if comp.TransportMode != database.TransportStreamAudio {
		t.Fatalf("TransportMode = %v, want TransportStreamAudio", comp.TransportMode)
	}
	if comp.AudioType != database.AudioServiceDABPlus {
		t.Fatalf("AudioType = %v, want AudioServiceDABPlus", comp.AudioType)
	}
	svc := db.Service(0x1234)
	if svc.CountryID != 0x1 {
		t.Fatalf("Service.CountryID = %x, want 0x1", svc.CountryID)
	}
}

func TestDispatch_SubchannelOrganisation_UEP(t *testing.T) {
	db := database.New()
	disp := NewDispatcher(db)

	// subChID=1, startAddr=100, UEP table index 5.
	startHi := byte(1<<2) | byte((100>>8)&0x03)
	startLo := byte(100 & 0xFF)
	payload := []byte{startHi, startLo, 0x05}
	fig := FIG{Type: 0, Extension: 1, Payload: payload}

	disp.Dispatch(fig)

	sc := db.Subchannel(1)
	if !sc.IsUEP {
		t.Fatalf("subchannel should be UEP")
	}
	if sc.StartAddress != 100 {
		t.Fatalf("StartAddress = %d, want 100", sc.StartAddress)
	}
}
