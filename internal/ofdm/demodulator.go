package ofdm

import (
	"runtime"

	"github.com/jeongseonghan/dabradio/internal/fft"
	"github.com/jeongseonghan/dabradio/internal/observable"
)

// Config configures a Demodulator for one transmission mode.
type Config struct {
	Params Params

	// NumWorkers is K in spec.md §4.1 ("K = min(hardware_threads,
	// nb_frame_symbols-1)"). Zero selects runtime.NumCPU().
	NumWorkers int

	// NullThresholdFraction is the power-dip threshold (spec.md §4.1's
	// "threshold ≈ 0.35"). Zero selects the default.
	NullThresholdFraction float64

	// InitialPowerEstimate seeds the running data-symbol power baseline
	// used by null detection before any frame has been demodulated. Zero
	// selects 1.0 (matched to AGC-normalised unit-magnitude input).
	InitialPowerEstimate float64

	// PRSFreqRef is the reference PRS spectrum (length Params.NumFFT),
	// used to resolve the integer carrier offset. Nil skips that step
	// (assumes zero integer offset) — grounded on
	// original_source/src/modules/ofdm/ofdm_modulator.cpp, which takes
	// this same reference spectrum as an external constructor parameter
	// rather than deriving it internally.
	PRSFreqRef []complex128

	// IntegerOffsetSearchRange bounds the cyclic-rotation search in
	// estimateIntegerCarrierOffset. Zero selects Params.NumDataCarriers/2.
	IntegerOffsetSearchRange int
}

const defaultNullThresholdFraction = 0.35

// Frame is one demodulated OFDM frame: the soft bits for all data symbols,
// MSC+FIC combined, in transmission order.
type Frame struct {
	SoftBits []uint16
	// NullBoundary is the sample index, relative to the whole stream fed
	// into this Demodulator, at which the null period ended and the PRS
	// began — spec.md §8 scenario 4's "frame boundary".
	NullBoundary int
}

// Demodulator converts a continuous complex baseband IQ stream into
// soft-bit Frames. It is not safe for concurrent Feed calls from multiple
// goroutines, matching spec.md §4.1's single coordinator + worker model.
type Demodulator struct {
	cfg         Config
	carrierBins []int

	buf      []complex128
	consumed int
	avgPower float64

	OnNullBoundary *observable.Observable[int]
	OnFrame        *observable.Observable[Frame]
}

// NewDemodulator builds a Demodulator for cfg, filling in defaults for any
// zero-valued tuning fields.
func NewDemodulator(cfg Config) *Demodulator {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = runtime.NumCPU()
	}
	if cfg.NullThresholdFraction <= 0 {
		cfg.NullThresholdFraction = defaultNullThresholdFraction
	}
	if cfg.InitialPowerEstimate <= 0 {
		cfg.InitialPowerEstimate = 1.0
	}
	if cfg.IntegerOffsetSearchRange <= 0 {
		cfg.IntegerOffsetSearchRange = cfg.Params.NumDataCarriers / 2
	}

	return &Demodulator{
		cfg:            cfg,
		carrierBins:    CarrierBins(cfg.Params.NumFFT, cfg.Params.NumDataCarriers),
		avgPower:       cfg.InitialPowerEstimate,
		OnNullBoundary: observable.New[int](),
		OnFrame:        observable.New[Frame](),
	}
}

// Feed appends samples to the internal buffer and runs the state machine
// (FINDING_NULL_POWER_DIP -> READING_NULL_AND_PRS -> APPLY_PRS_CORRELATION
// -> READING_SYMBOLS -> PROCESS_FRAME) as far as the buffered data allows,
// emitting zero or more Frames via OnFrame. Per spec.md §4.1's failure
// mode, a null that fails to appear within 2x a frame's worth of samples
// causes the stale prefix to be dropped so the state machine keeps
// scanning rather than stalling forever; no frame is emitted for that
// interval.
func (d *Demodulator) Feed(samples []complex128) {
	d.buf = append(d.buf, samples...)
	for d.step() {
	}
}

func (d *Demodulator) step() bool {
	p := d.cfg.Params
	nullStart := findNullWindow(d.buf, 0, p.NumNullPeriod, d.avgPower, d.cfg.NullThresholdFraction)
	if nullStart < 0 {
		if maxStall := 2 * frameSampleCount(p); len(d.buf) > maxStall {
			drop := len(d.buf) - p.NumNullPeriod
			d.consumed += drop
			d.buf = d.buf[drop:]
		}
		return false
	}

	nullEnd := nullStart + p.NumNullPeriod
	frameLen := p.NumFrameSymbols * p.NumSymbolPeriod
	if nullEnd+frameLen > len(d.buf) {
		return false
	}

	boundary := d.consumed + nullEnd
	d.OnNullBoundary.Notify(boundary)

	frameRaw := d.buf[nullEnd : nullEnd+frameLen]
	corrected := d.correctFrequency(frameRaw)

	symbols := make([][]complex128, p.NumFrameSymbols)
	for i := range symbols {
		symbols[i] = corrected[i*p.NumSymbolPeriod : (i+1)*p.NumSymbolPeriod]
	}

	prsFFT := fft.FFT(symbols[0][p.NumCyclicPrefix:])
	if d.cfg.PRSFreqRef != nil {
		shift := estimateIntegerCarrierOffset(prsFFT, d.cfg.PRSFreqRef, d.cfg.IntegerOffsetSearchRange)
		if shift != 0 {
			prsFFT = rotateBins(prsFFT, shift)
		}
	}

	softBits := d.runPipeline(symbols, prsFFT)
	d.avgPower = framePower(symbols[1:], p.NumCyclicPrefix)

	d.OnFrame.Notify(Frame{SoftBits: softBits, NullBoundary: boundary})

	total := nullEnd + frameLen
	d.consumed += total
	d.buf = d.buf[total:]
	return true
}

// correctFrequency estimates the residual fractional frequency offset from
// the cyclic-prefix autocorrelation accumulated across every symbol in the
// frame, then applies a single NCO rotation across the whole frame.
func (d *Demodulator) correctFrequency(frameRaw []complex128) []complex128 {
	p := d.cfg.Params
	symbols := make([][]complex128, p.NumFrameSymbols)
	for i := range symbols {
		symbols[i] = frameRaw[i*p.NumSymbolPeriod : (i+1)*p.NumSymbolPeriod]
	}
	phase := fractionalFreqOffsetPhase(symbols, p.NumCyclicPrefix, p.NumFFT)
	phaseIncrement := phase / float64(p.NumFFT)
	return applyFrequencyCorrection(frameRaw, phaseIncrement)
}

func frameSampleCount(p Params) int {
	return p.NumNullPeriod + p.NumFrameSymbols*p.NumSymbolPeriod
}
