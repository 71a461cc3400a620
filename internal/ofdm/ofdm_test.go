package ofdm

import (
	"math"
	"testing"
)

func TestParamsFor_AllModes(t *testing.T) {
	cases := []struct {
		mode Mode
		want Params
	}{
		{ModeI, Params{ModeI, 76, 2552, 2656, 2048, 504, 1536, 1000}},
		{ModeII, Params{ModeII, 76, 638, 664, 512, 126, 384, 4000}},
		{ModeIII, Params{ModeIII, 153, 319, 345, 256, 63, 192, 8000}},
		{ModeIV, Params{ModeIV, 76, 1276, 1328, 1024, 252, 768, 2000}},
	}
	for _, c := range cases {
		got := ParamsFor(c.mode)
		if got != c.want {
			t.Fatalf("ParamsFor(%v) = %+v, want %+v", c.mode, got, c.want)
		}
		if got.NumCyclicPrefix != got.NumSymbolPeriod-got.NumFFT {
			t.Fatalf("mode %v: cyclic prefix invariant violated", c.mode)
		}
	}
}

func TestCarrierBins_ModeI_ContiguousHalvesAroundDC(t *testing.T) {
	p := ParamsFor(ModeI)
	bins := CarrierBins(p.NumFFT, p.NumDataCarriers)
	if len(bins) != p.NumDataCarriers {
		t.Fatalf("len(bins) = %d, want %d", len(bins), p.NumDataCarriers)
	}

	half := p.NumDataCarriers / 2
	// First half occupies the negative-frequency bins just below nb_fft.
	if bins[0] != p.NumFFT-half {
		t.Fatalf("bins[0] = %d, want %d", bins[0], p.NumFFT-half)
	}
	if bins[half-1] != p.NumFFT-1 {
		t.Fatalf("bins[half-1] = %d, want %d", bins[half-1], p.NumFFT-1)
	}
	// Second half occupies the positive-frequency bins starting at 1.
	if bins[half] != 1 {
		t.Fatalf("bins[half] = %d, want 1", bins[half])
	}
	if bins[len(bins)-1] != half {
		t.Fatalf("bins[last] = %d, want %d", bins[len(bins)-1], half)
	}
	// DC (bin 0) must never appear.
	for _, b := range bins {
		if b == 0 {
			t.Fatalf("bin 0 (DC) must not be a data carrier")
		}
	}
}

func TestDQPSKSoftBits_ReferencePhases(t *testing.T) {
	const mag = 1.0
	cases := []struct {
		phase    float64
		wantBit1 bool // true means "confidently 1" (soft value above Punctured)
		wantBit0 bool
	}{
		{3 * math.Pi / 4, true, true},   // -> 11
		{math.Pi / 4, false, true},      // -> 01
		{-math.Pi / 4, false, false},    // -> 00
		{-3 * math.Pi / 4, true, false}, // -> 10
	}
	for _, c := range cases {
		y := complex(mag*math.Cos(c.phase), mag*math.Sin(c.phase))
		b1, b0 := dqpskSoftBits(y)
		gotBit1 := b1 > 128
		gotBit0 := b0 > 128
		if gotBit1 != c.wantBit1 || gotBit0 != c.wantBit0 {
			t.Fatalf("phase %.4f: got bits (%v,%v), want (%v,%v)", c.phase, gotBit1, gotBit0, c.wantBit1, c.wantBit0)
		}
	}
}

func TestSplitRanges_DisjointAndCovering(t *testing.T) {
	ranges := splitRanges(75, 4)
	total := 0
	prevEnd := 0
	for _, r := range ranges {
		if r.start != prevEnd {
			t.Fatalf("ranges not contiguous: got start %d, want %d", r.start, prevEnd)
		}
		if r.end <= r.start {
			t.Fatalf("empty or invalid range %+v", r)
		}
		total += r.end - r.start
		prevEnd = r.end
	}
	if total != 75 {
		t.Fatalf("ranges cover %d symbols, want 75", total)
	}
}

// TestNullDetection_ModeI mirrors spec.md §8 scenario 4: a synthetic stream
// of 2656 zero samples followed by 76*2552 unit-magnitude samples must
// trigger a frame boundary exactly at sample 2656.
func TestNullDetection_ModeI(t *testing.T) {
	p := ParamsFor(ModeI)
	d := NewDemodulator(Config{Params: p, NumWorkers: 2})

	samples := make([]complex128, p.NumNullPeriod+p.NumFrameSymbols*p.NumSymbolPeriod)
	for i := p.NumNullPeriod; i < len(samples); i++ {
		samples[i] = complex(1, 0)
	}

	var boundaries []int
	d.OnNullBoundary.Subscribe(func(b int) { boundaries = append(boundaries, b) })

	var frames []Frame
	d.OnFrame.Subscribe(func(f Frame) { frames = append(frames, f) })

	d.Feed(samples)

	if len(boundaries) != 1 {
		t.Fatalf("got %d null boundaries, want 1", len(boundaries))
	}
	if boundaries[0] != p.NumNullPeriod {
		t.Fatalf("null boundary = %d, want %d", boundaries[0], p.NumNullPeriod)
	}
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	wantBits := (p.NumFrameSymbols - 1) * p.NumDataCarriers * 2
	if len(frames[0].SoftBits) != wantBits {
		t.Fatalf("frame soft bits = %d, want %d", len(frames[0].SoftBits), wantBits)
	}
}

func TestFindNullWindow_NoDipReturnsNegativeOne(t *testing.T) {
	samples := make([]complex128, 100)
	for i := range samples {
		samples[i] = complex(1, 0)
	}
	if got := findNullWindow(samples, 0, 50, 1.0, 0.35); got != -1 {
		t.Fatalf("findNullWindow = %d, want -1 (no dip present)", got)
	}
}
