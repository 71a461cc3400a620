// Package database implements the DAB ensemble database: entities built up
// incrementally by FIG handlers, each tracking which required fields have
// been set via a dirty bitmask, with conflict detection on re-setting an
// already-set field to a different value. Grounded directly on
// original_source/src/modules/dab/database/dab_database_updater.cpp's
// FORM_FIELD_MACRO pattern and its field-flag constants.
package database

// UpdateResult reports the outcome of setting one field on an entity.
type UpdateResult int

const (
	// Success means the field was previously unset and is now set.
	Success UpdateResult = iota
	// NoChange means the field was already set to the same value.
	NoChange
	// Conflict means the field was already set to a different value; the
	// original value is preserved and the conflict is counted.
	Conflict
)

func (r UpdateResult) String() string {
	switch r {
	case Success:
		return "success"
	case NoChange:
		return "no_change"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// TransportMode identifies how a service component's data reaches the MSC.
type TransportMode int

const (
	TransportStreamAudio TransportMode = iota
	TransportStreamData
	TransportPacketData
	TransportFIDC
)

// AudioServiceType distinguishes MPEG vs DAB+ (AAC) audio components.
type AudioServiceType int

const (
	AudioServiceMPEG AudioServiceType = iota
	AudioServiceDABPlus
)

// DataServiceType enumerates FIG 0/2 data component service types.
type DataServiceType int

const (
	DataServiceUnspecified DataServiceType = iota
	DataServiceTMC
	DataServiceEWS
	DataServiceMPEGMultiplex
	DataServiceMOTSlideshow
	DataServiceMOTBroadcastWebsite
	DataServiceTPEG
	DataServiceDGPS
	DataServiceTMCVariant
	DataServiceEPG
)

// EEPProtectionType distinguishes equal-error-protection level families A/B.
type EEPProtectionType int

const (
	EEPTypeA EEPProtectionType = iota
	EEPTypeB
)

// Ensemble-level field flags. REQUIRED excludes LABEL/NB_SERVICES/RCOUNT/LTO,
// matching the original's ENSEMBLE_FLAG_REQUIRED = 0xE1.
const (
	ensembleFlagReference   uint8 = 0b10000000
	ensembleFlagCountryID   uint8 = 0b01000000
	ensembleFlagECC         uint8 = 0b00100000
	ensembleFlagLabel       uint8 = 0b00010000
	ensembleFlagNbServices  uint8 = 0b00001000
	ensembleFlagRCount      uint8 = 0b00000100
	ensembleFlagLTO         uint8 = 0b00000010
	ensembleFlagInterTable  uint8 = 0b00000001
	ensembleFlagRequired    uint8 = 0b11100001
)

// Ensemble is the top-level DAB multiplex record.
type Ensemble struct {
	dirty uint8

	Reference            uint16
	CountryID             uint8
	ExtendedCountryCode   uint8
	Label                 string
	NumberServices        uint8
	ReconfigurationCount  uint16
	LocalTimeOffset       int
	InternationalTableID  uint8
}

func (e *Ensemble) setField(flag uint8, equal func() bool, assign func()) UpdateResult {
	if e.dirty&flag != 0 {
		if equal() {
			return NoChange
		}
		return Conflict
	}
	assign()
	e.dirty |= flag
	return Success
}

// SetReference sets the ensemble's 16-bit reference (EId).
func (e *Ensemble) SetReference(v uint16) UpdateResult {
	return e.setField(ensembleFlagReference, func() bool { return e.Reference == v }, func() { e.Reference = v })
}

// SetCountryID sets the ensemble's country id.
func (e *Ensemble) SetCountryID(v uint8) UpdateResult {
	return e.setField(ensembleFlagCountryID, func() bool { return e.CountryID == v }, func() { e.CountryID = v })
}

// SetExtendedCountryCode sets the ensemble's ECC.
func (e *Ensemble) SetExtendedCountryCode(v uint8) UpdateResult {
	return e.setField(ensembleFlagECC, func() bool { return e.ExtendedCountryCode == v }, func() { e.ExtendedCountryCode = v })
}

// SetLabel sets the ensemble's display label.
func (e *Ensemble) SetLabel(v string) UpdateResult {
	return e.setField(ensembleFlagLabel, func() bool { return e.Label == v }, func() { e.Label = v })
}

// SetNumberServices sets the declared number of services in this ensemble.
func (e *Ensemble) SetNumberServices(v uint8) UpdateResult {
	return e.setField(ensembleFlagNbServices, func() bool { return e.NumberServices == v }, func() { e.NumberServices = v })
}

// SetReconfigurationCount sets the ensemble's reconfiguration counter.
func (e *Ensemble) SetReconfigurationCount(v uint16) UpdateResult {
	return e.setField(ensembleFlagRCount, func() bool { return e.ReconfigurationCount == v }, func() { e.ReconfigurationCount = v })
}

// SetLocalTimeOffset sets the ensemble's local-time offset in half hours.
func (e *Ensemble) SetLocalTimeOffset(v int) UpdateResult {
	return e.setField(ensembleFlagLTO, func() bool { return e.LocalTimeOffset == v }, func() { e.LocalTimeOffset = v })
}

// SetInternationalTableID sets the ensemble's international table id.
func (e *Ensemble) SetInternationalTableID(v uint8) UpdateResult {
	return e.setField(ensembleFlagInterTable, func() bool { return e.InternationalTableID == v }, func() { e.InternationalTableID = v })
}

// IsComplete reports whether every required field has been set.
func (e *Ensemble) IsComplete() bool {
	return e.dirty&ensembleFlagRequired == ensembleFlagRequired
}

// Service-level field flags. REQUIRED is only COUNTRY_ID, matching the
// original's SERVICE_FLAG_REQUIRED = 0x80.
const (
	serviceFlagCountryID   uint8 = 0b10000000
	serviceFlagECC         uint8 = 0b01000000
	serviceFlagLabel       uint8 = 0b00100000
	serviceFlagProgramType uint8 = 0b00010000
	serviceFlagLanguage    uint8 = 0b00001000
	serviceFlagClosedCap   uint8 = 0b00000100
	serviceFlagRequired    uint8 = 0b10000000
)

// Service is a DAB programme service, identified by a 16- or 32-bit id
// depending on the programme/data (pd) flag it was announced under.
type Service struct {
	dirty uint8

	ID                 uint32
	Is32Bit            bool
	CountryID          uint8
	ExtendedCountryCode uint8
	Label              string
	ProgrammeType      uint8
	Language           uint8
	ClosedCaption      bool
}

func (s *Service) setField(flag uint8, equal func() bool, assign func()) UpdateResult {
	if s.dirty&flag != 0 {
		if equal() {
			return NoChange
		}
		return Conflict
	}
	assign()
	s.dirty |= flag
	return Success
}

func (s *Service) SetCountryID(v uint8) UpdateResult {
	return s.setField(serviceFlagCountryID, func() bool { return s.CountryID == v }, func() { s.CountryID = v })
}

func (s *Service) SetExtendedCountryCode(v uint8) UpdateResult {
	return s.setField(serviceFlagECC, func() bool { return s.ExtendedCountryCode == v }, func() { s.ExtendedCountryCode = v })
}

func (s *Service) SetLabel(v string) UpdateResult {
	return s.setField(serviceFlagLabel, func() bool { return s.Label == v }, func() { s.Label = v })
}

func (s *Service) SetProgrammeType(v uint8) UpdateResult {
	return s.setField(serviceFlagProgramType, func() bool { return s.ProgrammeType == v }, func() { s.ProgrammeType = v })
}

func (s *Service) SetLanguage(v uint8) UpdateResult {
	return s.setField(serviceFlagLanguage, func() bool { return s.Language == v }, func() { s.Language = v })
}

func (s *Service) SetClosedCaption(v bool) UpdateResult {
	return s.setField(serviceFlagClosedCap, func() bool { return s.ClosedCaption == v }, func() { s.ClosedCaption = v })
}

func (s *Service) IsComplete() bool {
	return s.dirty&serviceFlagRequired == serviceFlagRequired
}

// ServiceComponent field flags. REQUIRED differs for audio vs data
// components, matching SERVICE_COMPONENT_FLAG_REQUIRED_AUDIO = 0x68 and
// _REQUIRED_DATA = 0x58.
const (
	componentFlagLabel         uint8 = 0b10000000
	componentFlagTransportMode uint8 = 0b01000000
	componentFlagAudioType     uint8 = 0b00100000
	componentFlagDataType      uint8 = 0b00010000
	componentFlagSubchannel    uint8 = 0b00001000
	componentFlagGlobalID      uint8 = 0b00000100

	componentFlagRequiredAudio uint8 = 0b01101000
	componentFlagRequiredData  uint8 = 0b01011000
)

// ServiceComponent links a service to a subchannel and describes what kind
// of payload it carries.
type ServiceComponent struct {
	dirty uint8

	ServiceRef      uint32
	ComponentID     uint8
	Label           string
	TransportMode   TransportMode
	AudioType       AudioServiceType
	DataType        DataServiceType
	SubchannelID    uint8
	GlobalID        uint32
	isAudio         bool
	transportModeSet bool
}

func (c *ServiceComponent) setField(flag uint8, equal func() bool, assign func()) UpdateResult {
	if c.dirty&flag != 0 {
		if equal() {
			return NoChange
		}
		return Conflict
	}
	assign()
	c.dirty |= flag
	return Success
}

func (c *ServiceComponent) SetLabel(v string) UpdateResult {
	return c.setField(componentFlagLabel, func() bool { return c.Label == v }, func() { c.Label = v })
}

func (c *ServiceComponent) SetTransportMode(v TransportMode) UpdateResult {
	res := c.setField(componentFlagTransportMode, func() bool { return c.TransportMode == v }, func() {
		c.TransportMode = v
		c.transportModeSet = true
		c.isAudio = v == TransportStreamAudio
	})
	return res
}

func (c *ServiceComponent) SetAudioServiceType(v AudioServiceType) UpdateResult {
	return c.setField(componentFlagAudioType, func() bool { return c.AudioType == v }, func() { c.AudioType = v })
}

func (c *ServiceComponent) SetDataServiceType(v DataServiceType) UpdateResult {
	return c.setField(componentFlagDataType, func() bool { return c.DataType == v }, func() { c.DataType = v })
}

func (c *ServiceComponent) SetSubchannel(v uint8) UpdateResult {
	return c.setField(componentFlagSubchannel, func() bool { return c.SubchannelID == v }, func() { c.SubchannelID = v })
}

func (c *ServiceComponent) SetGlobalID(v uint32) UpdateResult {
	return c.setField(componentFlagGlobalID, func() bool { return c.GlobalID == v }, func() { c.GlobalID = v })
}

// IsComplete depends on the transport mode: audio components additionally
// require audio-type, data components require data-type.
func (c *ServiceComponent) IsComplete() bool {
	if !c.transportModeSet {
		return false
	}
	if c.isAudio {
		return c.dirty&componentFlagRequiredAudio == componentFlagRequiredAudio
	}
	return c.dirty&componentFlagRequiredData == componentFlagRequiredData
}

// Subchannel field flags. REQUIRED differs for UEP vs EEP subchannels,
// matching SUBCHANNEL_FLAG_REQUIRED_UEP = 0xF0 and _REQUIRED_EEP = 0xEC.
const (
	subchannelFlagStartAddress uint8 = 0b10000000
	subchannelFlagLength       uint8 = 0b01000000
	subchannelFlagIsUEP        uint8 = 0b00100000
	subchannelFlagUEPProtIdx   uint8 = 0b00010000
	subchannelFlagEEPProtLevel uint8 = 0b00001000
	subchannelFlagEEPType      uint8 = 0b00000100
	subchannelFlagFECScheme    uint8 = 0b00000010

	subchannelFlagRequiredUEP uint8 = 0b11110000
	subchannelFlagRequiredEEP uint8 = 0b11101100
)

// Subchannel describes the physical placement and protection of one MSC
// subchannel.
type Subchannel struct {
	dirty uint8

	ID              uint8
	StartAddress    uint16
	Length          uint16
	IsUEP           bool
	uepSet          bool
	UEPProtIndex    uint8
	EEPProtLevel    uint8
	EEPType         EEPProtectionType
	FECScheme       uint8
}

func (s *Subchannel) setField(flag uint8, equal func() bool, assign func()) UpdateResult {
	if s.dirty&flag != 0 {
		if equal() {
			return NoChange
		}
		return Conflict
	}
	assign()
	s.dirty |= flag
	return Success
}

func (s *Subchannel) SetStartAddress(v uint16) UpdateResult {
	return s.setField(subchannelFlagStartAddress, func() bool { return s.StartAddress == v }, func() { s.StartAddress = v })
}

func (s *Subchannel) SetLength(v uint16) UpdateResult {
	return s.setField(subchannelFlagLength, func() bool { return s.Length == v }, func() { s.Length = v })
}

func (s *Subchannel) SetIsUEP(v bool) UpdateResult {
	return s.setField(subchannelFlagIsUEP, func() bool { return s.IsUEP == v }, func() {
		s.IsUEP = v
		s.uepSet = true
	})
}

func (s *Subchannel) SetUEPProtIndex(v uint8) UpdateResult {
	return s.setField(subchannelFlagUEPProtIdx, func() bool { return s.UEPProtIndex == v }, func() { s.UEPProtIndex = v })
}

func (s *Subchannel) SetEEPProtLevel(v uint8) UpdateResult {
	return s.setField(subchannelFlagEEPProtLevel, func() bool { return s.EEPProtLevel == v }, func() { s.EEPProtLevel = v })
}

func (s *Subchannel) SetEEPType(v EEPProtectionType) UpdateResult {
	return s.setField(subchannelFlagEEPType, func() bool { return s.EEPType == v }, func() { s.EEPType = v })
}

func (s *Subchannel) SetFECScheme(v uint8) UpdateResult {
	return s.setField(subchannelFlagFECScheme, func() bool { return s.FECScheme == v }, func() { s.FECScheme = v })
}

// IsComplete depends on whether the subchannel turned out to be UEP or EEP
// protected.
func (s *Subchannel) IsComplete() bool {
	if !s.uepSet {
		return false
	}
	if s.IsUEP {
		return s.dirty&subchannelFlagRequiredUEP == subchannelFlagRequiredUEP
	}
	return s.dirty&subchannelFlagRequiredEEP == subchannelFlagRequiredEEP
}

// LinkService field flags, matching LINK_FLAG_REQUIRED = 0x10. Active/
// hard/international link flags belong to FIG 0/6 (service linking info),
// which this receiver's FIG dispatcher does not implement, so only the
// service-reference flag this module actually carries (from FIG 0/21) is
// tracked.
const (
	linkFlagServiceRef uint8 = 0b00010000
	linkFlagRequired   uint8 = 0b00010000
)

// LinkService records a cross-standard service-following link (FM/DRM/AMSS).
type LinkService struct {
	dirty uint8

	ServiceRef uint32
}

func (l *LinkService) setField(flag uint8, equal func() bool, assign func()) UpdateResult {
	if l.dirty&flag != 0 {
		if equal() {
			return NoChange
		}
		return Conflict
	}
	assign()
	l.dirty |= flag
	return Success
}

func (l *LinkService) SetServiceReference(v uint32) UpdateResult {
	return l.setField(linkFlagServiceRef, func() bool { return l.ServiceRef == v }, func() { l.ServiceRef = v })
}

func (l *LinkService) IsComplete() bool {
	return l.dirty&linkFlagRequired == linkFlagRequired
}

// OtherEnsemble field flags, matching OE_FLAG_REQUIRED = 0x08.
const (
	oeFlagCountryID uint8 = 0b10000000
	oeFlagContOut   uint8 = 0b01000000
	oeFlagGeoAdj    uint8 = 0b00100000
	oeFlagModeI     uint8 = 0b00010000
	oeFlagFreq      uint8 = 0b00001000
	oeFlagRequired  uint8 = 0b00001000
)

// OtherEnsemble records a FIG 0/24 cross-reference to a different ensemble.
type OtherEnsemble struct {
	dirty uint8

	CountryID                  uint8
	IsContinuousOutput         bool
	IsGeographicallyAdjacent   bool
	IsTransmissionModeI        bool
	FrequencyKHz               uint32
}

func (o *OtherEnsemble) setField(flag uint8, equal func() bool, assign func()) UpdateResult {
	if o.dirty&flag != 0 {
		if equal() {
			return NoChange
		}
		return Conflict
	}
	assign()
	o.dirty |= flag
	return Success
}

func (o *OtherEnsemble) SetCountryID(v uint8) UpdateResult {
	return o.setField(oeFlagCountryID, func() bool { return o.CountryID == v }, func() { o.CountryID = v })
}

func (o *OtherEnsemble) SetIsContinuousOutput(v bool) UpdateResult {
	return o.setField(oeFlagContOut, func() bool { return o.IsContinuousOutput == v }, func() { o.IsContinuousOutput = v })
}

func (o *OtherEnsemble) SetIsGeographicallyAdjacent(v bool) UpdateResult {
	return o.setField(oeFlagGeoAdj, func() bool { return o.IsGeographicallyAdjacent == v }, func() { o.IsGeographicallyAdjacent = v })
}

func (o *OtherEnsemble) SetIsTransmissionModeI(v bool) UpdateResult {
	return o.setField(oeFlagModeI, func() bool { return o.IsTransmissionModeI == v }, func() { o.IsTransmissionModeI = v })
}

func (o *OtherEnsemble) SetFrequency(v uint32) UpdateResult {
	return o.setField(oeFlagFreq, func() bool { return o.FrequencyKHz == v }, func() { o.FrequencyKHz = v })
}

func (o *OtherEnsemble) IsComplete() bool {
	return o.dirty&oeFlagRequired == oeFlagRequired
}
