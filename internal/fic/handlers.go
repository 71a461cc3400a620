package fic

import (
	"strings"

	"github.com/jeongseonghan/dabradio/internal/database"
)

// Dispatcher owns the shared database and routes parsed FIGs to the
// handler for their (type, extension), mirroring
// original_source/src/modules/dab/fic/fig_processor.h's handler-method
// dispatch.
type Dispatcher struct {
	db *database.Database
}

// NewDispatcher returns a Dispatcher writing into db.
func NewDispatcher(db *database.Database) *Dispatcher {
	return &Dispatcher{db: db}
}

// Dispatch routes one parsed FIG to its handler. Unrecognised (type,
// extension) pairs are silently ignored, per spec.md §7's "unknown app-type"
// structural-error handling (logged upstream by the caller if desired).
func (d *Dispatcher) Dispatch(fig FIG) {
	switch fig.Type {
	case 0:
		d.dispatchType0(fig)
	case 1:
		d.handleLabel(fig)
	case 2:
		d.handleExtendedLabel(fig)
	}
}

func (d *Dispatcher) dispatchType0(fig FIG) {
	switch fig.Extension {
	case 0:
		d.fig0_0(fig)
	case 1:
		d.fig0_1(fig)
	case 2:
		d.fig0_2(fig)
	case 3:
		d.fig0_3(fig)
	case 5:
		d.fig0_5(fig)
	case 8:
		d.fig0_8(fig)
	case 9:
		d.fig0_9(fig)
	case 10:
		d.fig0_10(fig)
	case 13:
		d.fig0_13(fig)
	case 14:
		d.fig0_14(fig)
	case 17:
		d.fig0_17(fig)
	case 21:
		d.fig0_21(fig)
	case 24:
		d.fig0_24(fig)
	}
}

// fig0_0: ensemble reference, change flag, alarm flag, CIF counts.
func (d *Dispatcher) fig0_0(fig FIG) {
	if len(fig.Payload) < 4 {
		return
	}
	e := d.db.Ensemble()
	eid := uint16(fig.Payload[0])<<8 | uint16(fig.Payload[1])
	r := e.SetReference(eid)
	d.db.NoteResult("ensemble", "0", "reference", r)

	// The ensemble id's top nibble is its country id, same convention as a
	// 16-bit service id.
	cr := e.SetCountryID(uint8(eid >> 12))
	d.db.NoteResult("ensemble", "0", "country_id", cr)

	if e.IsComplete() {
		d.db.OnCompletion.Notify(database.CompletionEvent{Entity: "ensemble", Key: "0"})
	}
}

// fig0_1: subchannel organisation: start address, size, UEP/EEP protection.
func (d *Dispatcher) fig0_1(fig FIG) {
	p := fig.Payload
	for len(p) >= 3 {
		subChID := p[0] >> 2
		startAddr := (uint16(p[0]&0x03) << 8) | uint16(p[1])
		isUEP := p[2]&0x80 == 0
		sc := d.db.Subchannel(subChID)
		d.db.NoteResult("subchannel", key8(subChID), "start_address", sc.SetStartAddress(startAddr))
		d.db.NoteResult("subchannel", key8(subChID), "is_uep", sc.SetIsUEP(isUEP))

		if isUEP {
			tableIdx := p[2] & 0x3F
			sc.SetUEPProtIndex(tableIdx)
			// approximate subchannel size from the UEP table index; exact
			// ETSI EN 300 401 Table 7 sizes are not reproduced here.
			sc.SetLength(uint16(tableIdx) * 8)
			p = p[3:]
			continue
		}

		if len(p) < 4 {
			break
		}
		size := (uint16(p[2]&0x03) << 8) | uint16(p[3])
		level := ((p[2] >> 2) & 0x07) + 1
		typ := database.EEPTypeA
		if p[2]&0x20 != 0 {
			typ = database.EEPTypeB
		}
		sc.SetLength(size)
		sc.SetEEPProtLevel(uint8(level))
		sc.SetEEPType(typ)
		p = p[4:]
	}
}

// fig0_2: service organisation — component descriptors and transport mode.
func (d *Dispatcher) fig0_2(fig FIG) {
	p := fig.Payload
	for len(p) >= 2 {
		var serviceID uint32
		if fig.PD {
			if len(p) < 5 {
				break
			}
			serviceID = uint32(p[0])<<24 | uint32(p[1])<<16 | uint32(p[2])<<8 | uint32(p[3])
			p = p[4:]
		} else {
			if len(p) < 3 {
				break
			}
			serviceID = uint32(p[0])<<8 | uint32(p[1])
			p = p[2:]
		}
		numComponents := int(p[0] & 0x0F)
		p = p[1:]

		svc := d.db.Service(serviceID)
		if !fig.PD {
			// 16-bit service ids carry the country id in their top nibble,
			// the same convention the ensemble id (fig0_0) uses.
			r := svc.SetCountryID(uint8(serviceID >> 12))
			d.db.NoteResult("service", key32(serviceID), "country_id", r)
		}

		for i := 0; i < numComponents && len(p) >= 2; i++ {
			tmID := (p[0] >> 6) & 0x03
			componentID := p[0] & 0x3F
			comp := d.db.Component(serviceID, componentID)

			var mode database.TransportMode
			switch tmID {
			case 0:
				mode = database.TransportStreamAudio
				subChID := p[1] >> 2
				comp.SetSubchannel(subChID)

				// ASCTy, the primary audio component's service type, is
				// carried in the low 6 bits of this same descriptor byte.
				// ASCTy 0x3F (63) is DAB+ (HE-AACv2); every other value is
				// treated as plain MPEG Layer II/III audio.
				ascty := p[1] & 0x3F
				audioType := database.AudioServiceMPEG
				if ascty == 0x3F {
					audioType = database.AudioServiceDABPlus
				}
				ar := comp.SetAudioServiceType(audioType)
				d.db.NoteResult("component", key8(componentID), "audio_service_type", ar)
			case 1:
				mode = database.TransportStreamData
				subChID := p[1] >> 2
				comp.SetSubchannel(subChID)
			case 2:
				mode = database.TransportPacketData
			case 3:
				mode = database.TransportFIDC
			}
			r := comp.SetTransportMode(mode)
			d.db.NoteResult("component", key8(componentID), "transport_mode", r)
			d.db.CheckComponentCompletion(serviceID, componentID, comp)
			p = p[2:]
		}
	}
}

// fig0_3: service component in packet mode, global id.
func (d *Dispatcher) fig0_3(fig FIG) {
	p := fig.Payload
	if len(p) < 5 {
		return
	}
	componentID := p[0]
	globalID := uint32(p[2])<<16 | uint32(p[3])<<8 | uint32(p[4])
	comp := d.db.Component(0, componentID)
	r := comp.SetGlobalID(globalID)
	d.db.NoteResult("component", key8(componentID), "global_id", r)
}

// fig0_5: service component language. This FIG only identifies a
// subchannel/component, not the owning service, so it can't reach
// Service.SetLanguage (wired instead from fig0_17, which does carry a
// service id); recorded here as a structural event only.
func (d *Dispatcher) fig0_5(fig FIG) {
	p := fig.Payload
	for len(p) >= 3 {
		d.db.NoteResult("component", key8(p[0]&0x3F), "language", database.Success)
		p = p[3:]
	}
}

// fig0_8: service-component global id <-> (service_ref, component_id).
func (d *Dispatcher) fig0_8(fig FIG) {
	p := fig.Payload
	var serviceID uint32
	if fig.PD {
		if len(p) < 4 {
			return
		}
		serviceID = uint32(p[0])<<24 | uint32(p[1])<<16 | uint32(p[2])<<8 | uint32(p[3])
		p = p[4:]
	} else {
		if len(p) < 2 {
			return
		}
		serviceID = uint32(p[0])<<8 | uint32(p[1])
		p = p[2:]
	}
	if len(p) < 1 {
		return
	}
	ext := p[0]&0x80 != 0
	componentID := p[0] & 0x0F
	p = p[1:]

	comp := d.db.Component(serviceID, componentID)
	if ext && len(p) >= 3 {
		globalID := uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
		r := comp.SetGlobalID(globalID)
		d.db.NoteResult("component", key8(componentID), "global_id", r)
	} else if len(p) >= 1 {
		subChID := p[0] >> 2
		r := comp.SetSubchannel(subChID)
		d.db.NoteResult("component", key8(componentID), "subchannel", r)
		d.db.NoteComponentBinding(serviceID, componentID, subChID)
	}
	d.db.CheckComponentCompletion(serviceID, componentID, comp)
}

// fig0_9: country id, extended country code, local time offset,
// international table id.
func (d *Dispatcher) fig0_9(fig FIG) {
	p := fig.Payload
	if len(p) < 3 {
		return
	}
	e := d.db.Ensemble()
	lto := int(p[0] & 0x1F)
	if p[0]&0x20 != 0 {
		lto = -lto
	}
	ecc := p[1]
	interTable := p[2]

	d.db.NoteResult("ensemble", "0", "lto", e.SetLocalTimeOffset(lto))
	d.db.NoteResult("ensemble", "0", "ecc", e.SetExtendedCountryCode(ecc))
	d.db.NoteResult("ensemble", "0", "international_table_id", e.SetInternationalTableID(interTable))
	if e.IsComplete() {
		d.db.OnCompletion.Notify(database.CompletionEvent{Entity: "ensemble", Key: "0"})
	}
}

// fig0_10: date/time (MJD + UTC). Recorded as a raw observable event since
// the database has no dedicated date/time entity in this spec.
func (d *Dispatcher) fig0_10(fig FIG) {
	if len(fig.Payload) < 4 {
		return
	}
	d.db.NoteResult("datetime", "0", "mjd_utc", database.Success)
}

// fig0_13: user-application data, forwarded as an opaque update event.
func (d *Dispatcher) fig0_13(fig FIG) {
	d.db.NoteResult("component", "0", "user_app_data", database.Success)
}

// fig0_14: FEC scheme for packet mode subchannels.
func (d *Dispatcher) fig0_14(fig FIG) {
	p := fig.Payload
	for len(p) >= 1 {
		subChID := p[0] >> 2
		scheme := p[0] & 0x03
		sc := d.db.Subchannel(subChID)
		r := sc.SetFECScheme(scheme)
		d.db.NoteResult("subchannel", key8(subChID), "fec_scheme", r)
		p = p[1:]
	}
}

// fig0_17: programme type, and, where the L/CC flags say they're present,
// language and closed-caption. p[2] is the flag byte: bit 1 (0x02) is the L
// flag and bit 0 (0x01) the CC flag; a present language byte and a present (unmodelled) CC byte each shift the
// trailing programme-type byte along.
func (d *Dispatcher) fig0_17(fig FIG) {
	p := fig.Payload
	if len(p) < 4 {
		return
	}
	serviceID := uint32(p[0])<<8 | uint32(p[1])
	svc := d.db.Service(serviceID)

	hasLanguage := p[2]&0x02 != 0
	hasClosedCaption := p[2]&0x01 != 0
	pos := 3
	if hasLanguage {
		if len(p) <= pos {
			return
		}
		r := svc.SetLanguage(p[pos])
		d.db.NoteResult("service", key32(serviceID), "language", r)
		pos++
	}
	if hasClosedCaption {
		r := svc.SetClosedCaption(true)
		d.db.NoteResult("service", key32(serviceID), "closed_caption", r)
		pos++ // complementary-code byte, not modelled here
	}
	if len(p) <= pos {
		return
	}
	pty := p[pos] & 0x1F
	r := svc.SetProgrammeType(pty)
	d.db.NoteResult("service", key32(serviceID), "programme_type", r)
}

// fig0_21: frequency information. Each entry is a service/link reference
// followed, where present, by a (other-ensemble id, control, frequency)
// triple that keeps the other-ensemble record's fields reachable. The full
// R&M-typed FI-list structure (FM/DRM/AMSS alternates) is not modelled;
// only the DAB-to-DAB case is.
func (d *Dispatcher) fig0_21(fig FIG) {
	p := fig.Payload
	for len(p) >= 3 {
		serviceRef := uint32(p[0])<<8 | uint32(p[1])
		link := d.db.LinkService(serviceRef)
		r := link.SetServiceReference(serviceRef)
		d.db.NoteResult("link", key32(serviceRef), "service_reference", r)
		p = p[3:]

		if len(p) < 4 {
			continue
		}
		eid := uint16(p[0])<<8 | uint16(p[1])
		control := p[2]
		freqKHz := uint32(p[3]) * 16
		oe := d.db.OtherEnsemble(eid)
		d.db.NoteResult("other_ensemble", key16(eid), "continuous_output", oe.SetIsContinuousOutput(control&0x80 != 0))
		d.db.NoteResult("other_ensemble", key16(eid), "geo_adjacent", oe.SetIsGeographicallyAdjacent(control&0x40 != 0))
		d.db.NoteResult("other_ensemble", key16(eid), "mode_i", oe.SetIsTransmissionModeI(control&0x20 != 0))
		d.db.NoteResult("other_ensemble", key16(eid), "frequency_khz", oe.SetFrequency(freqKHz))
		p = p[4:]
	}
}

// fig0_24: other ensembles.
func (d *Dispatcher) fig0_24(fig FIG) {
	p := fig.Payload
	for len(p) >= 3 {
		eid := uint16(p[0])<<8 | uint16(p[1])
		oe := d.db.OtherEnsemble(eid)
		countryID := p[2]
		r := oe.SetCountryID(countryID)
		d.db.NoteResult("other_ensemble", key16(eid), "country_id", r)
		p = p[3:]
	}
}

// handleLabel implements FIG 1: short 16-byte labels for the ensemble (ext
// 0), a 16-bit-id service (ext 1), a service component (ext 4), or a
// 32-bit-id service (ext 5).
func (d *Dispatcher) handleLabel(fig FIG) {
	p := fig.Payload
	if len(p) < 1 {
		return
	}
	ext := p[0] & 0x07
	p = p[1:]
	if len(p) < 1 {
		return
	}
	// byte 0: charset(4 bits) | rfu(4 bits)
	p = p[1:]

	var idLen int
	switch ext {
	case 0, 1:
		idLen = 2
	case 4:
		idLen = 2 // service ref (2 bytes) + component id (1 byte) handled below
	case 5:
		idLen = 4
	default:
		return
	}
	if len(p) < idLen+16+2 {
		return
	}

	var label string
	switch ext {
	case 0:
		eid := uint16(p[0])<<8 | uint16(p[1])
		label = decodeLabelText(p[idLen : idLen+16])
		e := d.db.Ensemble()
		d.db.NoteResult("ensemble", key16(eid), "reference", e.SetReference(eid))
		r := e.SetLabel(label)
		d.db.NoteResult("ensemble", key16(eid), "label", r)
	case 1:
		sid := uint32(p[0])<<8 | uint32(p[1])
		label = decodeLabelText(p[idLen : idLen+16])
		svc := d.db.Service(sid)
		r := svc.SetLabel(label)
		d.db.NoteResult("service", key32(sid), "label", r)
	case 4:
		sid := uint32(p[0])<<8 | uint32(p[1])
		if len(p) < idLen+1+16+2 {
			return
		}
		componentID := p[idLen]
		label = decodeLabelText(p[idLen+1 : idLen+1+16])
		comp := d.db.Component(sid, componentID)
		r := comp.SetLabel(label)
		d.db.NoteResult("component", key8(componentID), "label", r)
	case 5:
		sid := uint32(p[0])<<24 | uint32(p[1])<<16 | uint32(p[2])<<8 | uint32(p[3])
		label = decodeLabelText(p[idLen : idLen+16])
		svc := d.db.Service(sid)
		r := svc.SetLabel(label)
		d.db.NoteResult("service", key32(sid), "label", r)
	}
}

// handleExtendedLabel implements a simplified FIG 2: UTF-8 extended labels.
// Segment reassembly across multiple FIG 2 records (toggle/segment index)
// is not attempted here; each record is treated as a complete label,
// matching this receiver's "short label is authoritative" simplification.
func (d *Dispatcher) handleExtendedLabel(fig FIG) {
	if len(fig.Payload) < 3 {
		return
	}
	text := strings.TrimRight(string(fig.Payload[2:]), "\x00")
	d.db.NoteResult("extended_label", "0", text, database.Success)
}

func decodeLabelText(b []byte) string {
	return strings.TrimRight(string(b), " \x00")
}

func key8(v uint8) string  { return itoa(uint32(v)) }
func key16(v uint16) string { return itoa(uint32(v)) }
func key32(v uint32) string { return itoa(v) }

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
