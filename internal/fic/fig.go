package fic

// FIG is one parsed Fast Information Group record from a FIB.
type FIG struct {
	Type      uint8
	Extension uint8 // only meaningful for type 0/1/2
	CN        bool  // FIG 0 only: "change" flag
	OE        bool  // FIG 0 only: "other ensemble" flag
	PD        bool  // FIG 0 only: programme(0)/data(32-bit id, 1) flag
	Payload   []byte
}

// ParseFIBFIGs walks the 30-byte FIG-list portion of a FIB (CRC bytes
// excluded), splitting it into individual FIG records per spec.md §4.3's
// "Header byte supplies FIG type and length (length excludes the header
// byte)". A header byte of 0xFF (FIG type 7, length 31) is the list
// terminator and padding
// bytes after it are ignored.
func ParseFIBFIGs(fibList []byte) []FIG {
	var figs []FIG
	pos := 0
	for pos < len(fibList) {
		header := fibList[pos]
		figType := header >> 5
		length := int(header & 0x1F)
		pos++

		if figType == 7 && length == 31 {
			break // end marker
		}
		if pos+length > len(fibList) {
			break // truncated/corrupt: stop rather than read out of bounds
		}
		payload := fibList[pos : pos+length]
		pos += length

		fig := FIG{Type: figType, Payload: payload}
		if figType == 0 && length > 0 {
			b := payload[0]
			fig.CN = b&0x80 != 0
			fig.OE = b&0x40 != 0
			fig.PD = b&0x20 != 0
			fig.Extension = b & 0x1F
			fig.Payload = payload[1:]
		} else if (figType == 1 || figType == 2) && length > 0 {
			fig.Extension = payload[0] & 0x07
			fig.Payload = payload // type 1/2 handlers parse their own header byte
		}
		figs = append(figs, fig)
	}
	return figs
}
