// Package ofdm demodulates a baseband IQ stream into per-frame soft-bit
// buffers: null-symbol detection, fractional/integer frequency correction,
// per-symbol FFT, and differential QPSK soft-bit extraction, run across a
// small worker pipeline per frame. Grounded on
// original_source/src/ofdm/ofdm_demodulator_threads.{h,cpp} for the state
// machine and worker-barrier structure, and
// original_source/src/modules/ofdm/ofdm_modulator.cpp for carrier layout and
// the reference PRS, re-expressed with Go channels/WaitGroups in place of
// the original's condition-variable barriers, per spec.md §4.1.
package ofdm

// Mode identifies one of the four DAB transmission modes.
type Mode int

const (
	ModeI Mode = iota + 1
	ModeII
	ModeIII
	ModeIV
)

// Params holds the constant record selected by transmission mode, per
// spec.md §3 "OFDM parameters". Values below are taken from
// original_source/src/ofdm/dab_ofdm_params_ref.cpp; spec.md itself only
// gives Mode I's numbers.
type Params struct {
	Mode             Mode
	NumFrameSymbols  int // nb_frame_symbols, including the null symbol
	NumSymbolPeriod  int // nb_symbol_period (cyclic prefix + FFT length)
	NumNullPeriod    int // nb_null_period
	NumFFT           int // nb_fft
	NumCyclicPrefix  int // nb_cyclic_prefix = nb_symbol_period - nb_fft
	NumDataCarriers  int // nb_data_carriers
	CarrierSpacingHz int // freq_carrier_spacing
}

var paramTable = map[Mode]Params{
	ModeI:   {ModeI, 76, 2552, 2656, 2048, 504, 1536, 1000},
	ModeII:  {ModeII, 76, 638, 664, 512, 126, 384, 4000},
	ModeIII: {ModeIII, 153, 319, 345, 256, 63, 192, 8000},
	ModeIV:  {ModeIV, 76, 1276, 1328, 1024, 252, 768, 2000},
}

// ParamsFor returns the constant record for the given transmission mode.
// It panics on an unrecognised mode, since the mode is a build-time
// configuration choice, not untrusted input.
func ParamsFor(m Mode) Params {
	p, ok := paramTable[m]
	if !ok {
		panic("ofdm: unknown transmission mode")
	}
	return p
}
