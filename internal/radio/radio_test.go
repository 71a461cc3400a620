package radio

import (
	"testing"

	"github.com/jeongseonghan/dabradio/internal/database"
	"github.com/jeongseonghan/dabradio/internal/ofdm"
)

func TestSplitCIFs_EvenSplit(t *testing.T) {
	bits := make([]uint16, 40)
	cifs := splitCIFs(bits, 4)
	if len(cifs) != 4 {
		t.Fatalf("got %d CIFs, want 4", len(cifs))
	}
	for _, c := range cifs {
		if len(c) != 10 {
			t.Fatalf("CIF length = %d, want 10", len(c))
		}
	}
}

func TestSplitFICAndMSC_FixedPrefix(t *testing.T) {
	bits := make([]uint16, ficBitsPerCIF+50)
	fic, msc := splitFICAndMSC(bits)
	if len(fic) != ficBitsPerCIF {
		t.Fatalf("fic portion = %d, want %d", len(fic), ficBitsPerCIF)
	}
	if len(msc) != 50 {
		t.Fatalf("msc portion = %d, want 50", len(msc))
	}
}

func TestSubchannelSlice_ContiguousByOrder(t *testing.T) {
	mscBits := make([]uint16, 100)
	order := []uint8{1, 2, 3}
	lengths := map[uint8]int{1: 20, 2: 30, 3: 50}

	got1 := subchannelSlice(mscBits, order, lengths, 1)
	got2 := subchannelSlice(mscBits, order, lengths, 2)
	got3 := subchannelSlice(mscBits, order, lengths, 3)

	if len(got1) != 20 {
		t.Fatalf("subchannel 1 slice length = %d, want 20", len(got1))
	}
	if len(got2) != 30 {
		t.Fatalf("subchannel 2 slice length = %d, want 30", len(got2))
	}
	if len(got3) != 50 {
		t.Fatalf("subchannel 3 slice length = %d, want 50", len(got3))
	}
}

// TestTryBindSubchannel_CreatesDecoderOnlyWhenComplete exercises the
// binding gate in tryBindSubchannel: an incomplete subchannel record must
// not produce an MSC decoder or an OnDABPlusChannel notification, and a
// completed EEP-protected DAB+ audio component/subchannel pair must.
func TestTryBindSubchannel_CreatesDecoderOnlyWhenComplete(t *testing.T) {
	r := New(Config{OFDM: ofdm.Config{Params: ofdm.ParamsFor(ofdm.ModeI)}})
	defer r.Stop()

	var channels []Channel
	r.OnDABPlusChannel.Subscribe(func(c Channel) { channels = append(channels, c) })

	const serviceRef, componentID, subchannelID = uint32(0x1001), uint8(0), uint8(5)

	comp := r.db.Component(serviceRef, componentID)
	comp.SetTransportMode(database.TransportStreamAudio)
	comp.SetAudioServiceType(database.AudioServiceDABPlus)
	comp.SetSubchannel(subchannelID)

	// Subchannel record is still incomplete (no protection info yet): no
	// binding should succeed.
	r.tryBindSubchannel(subchannelID, serviceRef, componentID)
	if len(channels) != 0 {
		t.Fatalf("got %d channels before subchannel was complete, want 0", len(channels))
	}

	sub := r.db.Subchannel(subchannelID)
	sub.SetStartAddress(0)
	sub.SetLength(24)
	sub.SetIsUEP(false)
	sub.SetEEPProtLevel(2)
	sub.SetEEPType(database.EEPTypeA)
	sub.SetFECScheme(0)

	r.tryBindSubchannel(subchannelID, serviceRef, componentID)
	if len(channels) != 1 {
		t.Fatalf("got %d channels after subchannel completed, want 1", len(channels))
	}
	if channels[0].SubchannelID != subchannelID || channels[0].ServiceRef != serviceRef {
		t.Fatalf("unexpected channel record: %+v", channels[0])
	}

	r.mu.Lock()
	_, hasMSC := r.mscDecoders[subchannelID]
	_, hasPAD := r.padProcessors[subchannelID]
	r.mu.Unlock()
	if !hasMSC || !hasPAD {
		t.Fatalf("expected MSC decoder and PAD processor to be created")
	}

	// Re-binding an already-bound subchannel must not duplicate the
	// notification.
	r.tryBindSubchannel(subchannelID, serviceRef, componentID)
	if len(channels) != 1 {
		t.Fatalf("got %d channels after re-bind, want still 1", len(channels))
	}
}

// TestHandleFrame_DispatchesFIBGroupsWithoutPanicking exercises handleFrame
// end-to-end with an all-zero frame: no bound subchannels exist, so only
// the FIC path runs. A correct CRC never arises from zero data, so no
// database writes are expected, but the demux/pool plumbing must not panic
// or deadlock.
func TestHandleFrame_DispatchesFIBGroupsWithoutPanicking(t *testing.T) {
	p := ofdm.ParamsFor(ofdm.ModeI)
	r := New(Config{OFDM: ofdm.Config{Params: p}, PoolWorkers: 2})
	defer r.Stop()

	bits := make([]uint16, (p.NumFrameSymbols-1)*p.NumDataCarriers*2)
	r.handleFrame(ofdm.Frame{SoftBits: bits})
}
