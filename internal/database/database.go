package database

import (
	"sync"

	"github.com/jeongseonghan/dabradio/internal/observable"
)

// Event is emitted whenever a field update completes, no-ops, or conflicts,
// and whenever an entity transitions to complete.
type Event struct {
	Entity string // "ensemble", "service", "component", "subchannel", ...
	Key    string
	Result UpdateResult
	Field  string
}

// CompletionEvent is emitted when an entity's required fields are all set
// for the first time.
type CompletionEvent struct {
	Entity string
	Key    string
}

// BindingEvent is emitted when a service component is bound to its
// subchannel — spec.md §4.3's "subchannel_id on a component creates a
// (service, component)<->subchannel edge".
type BindingEvent struct {
	ServiceRef   uint32
	ComponentID  uint8
	SubchannelID uint8
}

// Database is the shared DAB ensemble database. Its mutex guards the entity
// maps against concurrent accessor calls; callers rely on internal/radio
// serializing FIG dispatch so that no two FIGs ever mutate an entity at the
// same time.
type Database struct {
	mu sync.Mutex

	ensemble    *Ensemble
	services    map[uint32]*Service
	components  map[componentKey]*ServiceComponent
	subchannels map[uint8]*Subchannel
	links       map[uint32]*LinkService
	others      map[uint16]*OtherEnsemble

	completedComponents map[componentKey]bool
	conflicts           int

	OnUpdate     *observable.Observable[Event]
	OnCompletion *observable.Observable[CompletionEvent]
	OnBinding    *observable.Observable[BindingEvent]
}

type componentKey struct {
	ServiceRef  uint32
	ComponentID uint8
}

// New returns an empty Database.
func New() *Database {
	return &Database{
		ensemble:            &Ensemble{},
		services:            make(map[uint32]*Service),
		components:          make(map[componentKey]*ServiceComponent),
		subchannels:         make(map[uint8]*Subchannel),
		links:               make(map[uint32]*LinkService),
		others:              make(map[uint16]*OtherEnsemble),
		completedComponents: make(map[componentKey]bool),
		OnUpdate:            observable.New[Event](),
		OnCompletion:        observable.New[CompletionEvent](),
		OnBinding:           observable.New[BindingEvent](),
	}
}

// Ensemble returns the single ensemble record, which New creates.
func (d *Database) Ensemble() *Ensemble {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ensemble
}

// Service returns (creating if absent) the service record for id.
func (d *Database) Service(id uint32) *Service {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.services[id]
	if !ok {
		s = &Service{ID: id}
		d.services[id] = s
	}
	return s
}

// Component returns (creating if absent) the service-component record for
// (serviceRef, componentID).
func (d *Database) Component(serviceRef uint32, componentID uint8) *ServiceComponent {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := componentKey{serviceRef, componentID}
	c, ok := d.components[key]
	if !ok {
		c = &ServiceComponent{ServiceRef: serviceRef, ComponentID: componentID}
		d.components[key] = c
	}
	return c
}

// Subchannel returns (creating if absent) the subchannel record for id.
func (d *Database) Subchannel(id uint8) *Subchannel {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.subchannels[id]
	if !ok {
		s = &Subchannel{ID: id}
		d.subchannels[id] = s
	}
	return s
}

// LinkService returns (creating if absent) the link-service record for id.
func (d *Database) LinkService(id uint32) *LinkService {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.links[id]
	if !ok {
		l = &LinkService{}
		d.links[id] = l
	}
	return l
}

// OtherEnsemble returns (creating if absent) the other-ensemble record for
// the given ensemble reference.
func (d *Database) OtherEnsemble(reference uint16) *OtherEnsemble {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.others[reference]
	if !ok {
		o = &OtherEnsemble{}
		d.others[reference] = o
	}
	return o
}

// NoteResult records an update's outcome for observability and fires
// OnUpdate; call it immediately after any Set* call. The mutex above only
// guards each accessor's map lookup, not the Set* mutation that follows —
// it is internal/radio's handleFrame that guarantees no two FIGs are ever
// dispatched concurrently, so entity mutation never races in practice.
func (d *Database) NoteResult(entity, key, field string, result UpdateResult) {
	if result == Conflict {
		d.mu.Lock()
		d.conflicts++
		d.mu.Unlock()
	}
	d.OnUpdate.Notify(Event{Entity: entity, Key: key, Result: result, Field: field})
}

// NoteComponentBinding should be called after ServiceComponent.SetSubchannel
// succeeds; it fires the downstream binding event spec.md §4.3 describes.
func (d *Database) NoteComponentBinding(serviceRef uint32, componentID uint8, subchannelID uint8) {
	d.OnBinding.Notify(BindingEvent{ServiceRef: serviceRef, ComponentID: componentID, SubchannelID: subchannelID})
}

// CheckComponentCompletion fires OnCompletion exactly once, the first time
// the named component transitions to complete.
func (d *Database) CheckComponentCompletion(serviceRef uint32, componentID uint8, c *ServiceComponent) {
	if !c.IsComplete() {
		return
	}
	key := componentKey{serviceRef, componentID}
	d.mu.Lock()
	already := d.completedComponents[key]
	if !already {
		d.completedComponents[key] = true
	}
	d.mu.Unlock()
	if !already {
		d.OnCompletion.Notify(CompletionEvent{Entity: "component", Key: keyString(serviceRef, componentID)})
	}
}

// ConflictCount returns the total number of field-set conflicts observed so
// far, across all entities.
func (d *Database) ConflictCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conflicts
}

func keyString(serviceRef uint32, componentID uint8) string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 0, 12)
	buf = append(buf, 's')
	for shift := 28; shift >= 0; shift -= 4 {
		buf = append(buf, hexDigits[(serviceRef>>uint(shift))&0xF])
	}
	buf = append(buf, '/', 'c')
	buf = append(buf, hexDigits[(componentID>>4)&0xF], hexDigits[componentID&0xF])
	return string(buf)
}
