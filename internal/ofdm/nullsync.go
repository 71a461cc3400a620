package ofdm

// power returns the instantaneous squared-magnitude power of one complex
// sample.
func power(s complex128) float64 {
	re, im := real(s), imag(s)
	return re*re + im*im
}

// findNullWindow scans samples, starting no earlier than minStart, for the
// first window of length nullPeriod whose average power is below
// thresholdFraction times baselinePower — spec.md §4.1's
// FINDING_NULL_POWER_DIP: "a null symbol is a window of length ≈
// nb_null_period whose average power is below a running-average fraction
// (threshold ≈ 0.35)". Returns the window's start index, or -1 if no
// window in range qualifies (more data is needed).
//
// baselinePower is the caller's running estimate of the data-symbol power,
// carried over from the previous frame (or a seed value before the first
// frame is found) rather than recomputed from the samples currently under
// the null-detection window itself — recomputing it from the same window
// would make the comparison self-referential and unable to detect a dip.
func findNullWindow(samples []complex128, minStart, nullPeriod int, baselinePower, thresholdFraction float64) int {
	n := len(samples)
	if minStart < 0 {
		minStart = 0
	}
	if minStart+nullPeriod > n {
		return -1
	}

	var sum float64
	for i := minStart; i < minStart+nullPeriod; i++ {
		sum += power(samples[i])
	}
	threshold := thresholdFraction * baselinePower

	start := minStart
	for {
		if sum/float64(nullPeriod) < threshold {
			return start
		}
		nextStart := start + 1
		if nextStart+nullPeriod > n {
			return -1
		}
		sum += power(samples[nextStart+nullPeriod-1]) - power(samples[start])
		start = nextStart
	}
}

// framePower averages the power of the cyclic-prefix-stripped portion of
// each data symbol, to seed the next frame's null-detection baseline.
func framePower(dataSymbols [][]complex128, cyclicPrefixLen int) float64 {
	var sum float64
	var count int
	for _, sym := range dataSymbols {
		for i := cyclicPrefixLen; i < len(sym); i++ {
			sum += power(sym[i])
			count++
		}
	}
	if count == 0 {
		return 1.0
	}
	return sum / float64(count)
}
