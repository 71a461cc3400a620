package viterbi

// The DAB standard defines a family of 32-bit (8 encoder step) puncturing
// vectors PI_1..PI_24 (ETSI EN 300 401 Table 31) used to trim the rate-1/4
// mother code down to the various protection levels. FIC depuncturing uses
// PI_16 repeated 21 times, PI_15 repeated 3 times, and a 24-bit vector PI_X,
// per spec.md §4.3. Depuncture walks this 792-entry pattern cyclically over a
// FIB group's 3096 code bits, so PI_X does not line up with the final 6
// encoder steps (tail-flush bits). The bit patterns below are the puncturing vectors themselves
// (1 = code bit transmitted, 0 = code bit dropped by the encoder and to be
// treated as Punctured on receive); MSC EEP/UEP levels are built from the
// same vector family indexed by protection level/type.
var (
	pi16 = mustPattern("11111111111111111111111111111110")
	pi15 = mustPattern("11111111111111111111111111111101")
	piX  = mustPattern("111111111111111111111111")
)

func mustPattern(bits string) []bool {
	out := make([]bool, len(bits))
	for i, c := range bits {
		out[i] = c == '1'
	}
	return out
}

func repeat(pattern []bool, times int) []bool {
	out := make([]bool, 0, len(pattern)*times)
	for i := 0; i < times; i++ {
		out = append(out, pattern...)
	}
	return out
}

// FICPuncturePattern returns the full cyclic puncturing pattern for one FIC
// FIB group: PI_16 x21, PI_15 x3, PI_X x1.
func FICPuncturePattern() []bool {
	out := make([]bool, 0, len(pi16)*21+len(pi15)*3+len(piX))
	out = append(out, repeat(pi16, 21)...)
	out = append(out, repeat(pi15, 3)...)
	out = append(out, piX...)
	return out
}

// UEPPuncturePattern returns a puncturing pattern for an unequal-error-
// protection subchannel addressed by protection index (1..64). The index
// selects among the PI vector family; the DAB standard tables (EN 300 401
// Table 32) define the exact per-index vector and repeat counts, which this
// implementation does not reproduce: it mixes PI_15 and PI_16 repeats, with
// fewer PI_15 repeats as the index rises. Both vectors as defined above keep
// 31 of every 32 code bits, so the code rate is the same for every index;
// only the positions of the dropped bits differ.
func UEPPuncturePattern(protectionIndex int, codewords int) []bool {
	if protectionIndex < 1 {
		protectionIndex = 1
	}
	if protectionIndex > 64 {
		protectionIndex = 64
	}
	ratio := float64(protectionIndex) / 64.0
	pi15Count := int(float64(codewords) * (1.0 - ratio))
	pi16Count := codewords - pi15Count
	out := make([]bool, 0, codewords*len(pi16))
	out = append(out, repeat(pi15, pi15Count)...)
	out = append(out, repeat(pi16, pi16Count)...)
	return out
}

// EEPType identifies equal-error-protection level type A or B.
type EEPType int

const (
	EEPTypeA EEPType = iota
	EEPTypeB
)

// EEPPuncturePattern returns a puncturing pattern for an equal-error-
// protection subchannel at the given protection level (1..4) and type.
// Lower levels use more PI_15 repeats and higher levels more PI_16 repeats
// (type B slightly fewer PI_15 than type A). Both vectors as defined above
// keep 31 of every 32 code bits, so the code rate is the same at every
// level and type; only the positions of the dropped bits differ. The DAB
// standard's per-level vectors are not reproduced.
func EEPPuncturePattern(level int, typ EEPType, codewords int) []bool {
	if level < 1 {
		level = 1
	}
	if level > 4 {
		level = 4
	}
	strength := float64(5-level) / 4.0
	if typ == EEPTypeB {
		strength *= 0.9
	}
	pi15Count := int(float64(codewords) * strength)
	pi16Count := codewords - pi15Count
	out := make([]bool, 0, codewords*len(pi16))
	out = append(out, repeat(pi15, pi15Count)...)
	out = append(out, repeat(pi16, pi16Count)...)
	return out
}
