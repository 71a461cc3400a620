package pad

import "github.com/jeongseonghan/dabradio/internal/crc16"

// maxDataGroupLength is the boundary past which a declared data-group
// length is rejected as invalid rather than acted on, per spec.md §8.
const maxDataGroupLength = 16 * 1024

// parseLengthIndicator parses the 4-byte Data Group Length Indicator: a
// 16-bit length field plus a trailing CRC-16, per spec.md §4.5's "declared
// required length ... is itself a 4-byte MSC data group". A length beyond
// maxDataGroupLength is rejected rather than acted on.
func parseLengthIndicator(data []byte) (length int, ok bool) {
	if len(data) != 4 {
		return 0, false
	}
	if !crc16.Verify(data) {
		return 0, false
	}
	length = int(data[0])<<8 | int(data[1])
	if length > maxDataGroupLength {
		return 0, false
	}
	return length, true
}
