package gamepad

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventType tells listeners whether a gamepad appeared or went away.
type EventType uint8

const (
	Connected EventType = iota
	Disconnected
)

func (t EventType) String() string {
	switch t {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

type Event struct {
	Type EventType
	ID   ID
}

// Listener is notified of registry changes on the goroutine that delivered
// the backend event. It must not block.
type Listener func(Event)

// Record pairs a live connection with the stable id it was registered under.
type Record struct {
	Instance InstanceID
	ID       ID
}

// Registry turns backend hotplug events into stable gamepad ids and reopens
// devices by id.
//
// Backend events are expected from a single goroutine (the input pump).
// Reads through IDs may come from anywhere.
type Registry struct {
	log         *zap.Logger
	backend     Backend
	unsubscribe func()

	mu      sync.RWMutex
	records map[InstanceID]ID

	lmu       sync.Mutex
	listeners map[int]Listener
	nextLis   int
}

// NewRegistry creates a registry and subscribes it to backend events.
func NewRegistry(backend Backend, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}

	r := &Registry{
		log:       log.With(zap.String("component", "registry")),
		backend:   backend,
		records:   make(map[InstanceID]ID),
		listeners: make(map[int]Listener),
	}
	r.unsubscribe = backend.Subscribe(r)
	return r
}

// Subscribe adds a listener and returns a func that removes it.
func (r *Registry) Subscribe(l Listener) func() {
	r.lmu.Lock()
	defer r.lmu.Unlock()

	key := r.nextLis
	r.nextLis++
	r.listeners[key] = l

	return func() {
		r.lmu.Lock()
		delete(r.listeners, key)
		r.lmu.Unlock()
	}
}

func (r *Registry) emit(e Event) {
	r.lmu.Lock()
	keys := make([]int, 0, len(r.listeners))
	for k := range r.listeners {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	ls := make([]Listener, 0, len(keys))
	for _, k := range keys {
		ls = append(ls, r.listeners[k])
	}
	r.lmu.Unlock()

	for _, l := range ls {
		l(e)
	}
}

func (r *Registry) makeID(slot int) (ID, bool) {
	guid := r.backend.GUID(slot)
	if guid == uuid.Nil {
		return "", false
	}
	return MakeID(slot, guid), true
}

// DeviceConnected registers the device at slot. Generic joysticks and
// devices without a GUID are ignored.
func (r *Registry) DeviceConnected(slot int, instance InstanceID) {
	log := r.log.With(
		zap.Int("slot", slot),
		zap.Int32("instance", int32(instance)),
	)

	if !r.backend.IsGamepad(slot) {
		log.Debug("ignored: not a gamepad")
		return
	}

	id, ok := r.makeID(slot)
	if !ok {
		log.Debug("ignored: empty guid")
		return
	}

	r.mu.Lock()
	if _, exists := r.records[instance]; exists {
		r.mu.Unlock()
		return
	}
	r.records[instance] = id
	r.mu.Unlock()

	log.Info("gamepad connected", zap.String("id", string(id)))
	r.emit(Event{Type: Connected, ID: id})
}

// DeviceDisconnected drops the record for instance, if any.
func (r *Registry) DeviceDisconnected(instance InstanceID) {
	r.mu.Lock()
	id, exists := r.records[instance]
	if !exists {
		r.mu.Unlock()
		return
	}
	delete(r.records, instance)
	r.mu.Unlock()

	r.log.Info("gamepad disconnected",
		zap.Int32("instance", int32(instance)),
		zap.String("id", string(id)),
	)
	r.emit(Event{Type: Disconnected, ID: id})
}

// IDs returns the tracked gamepad ids, sorted.
func (r *Registry) IDs() []ID {
	r.mu.RLock()
	ids := make([]ID, 0, len(r.records))
	for _, id := range r.records {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// Records returns the tracked records ordered by id.
func (r *Registry) Records() []Record {
	r.mu.RLock()
	records := make([]Record, 0, len(r.records))
	for instance, id := range r.records {
		records = append(records, Record{Instance: instance, ID: id})
	}
	r.mu.RUnlock()

	slices.SortFunc(records, func(a, b Record) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return int(a.Instance) - int(b.Instance)
		}
	})
	return records
}

// Close stops listening to the backend and reports every tracked gamepad as
// disconnected, whatever its physical state.
func (r *Registry) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}

	records := r.Records()

	r.mu.Lock()
	clear(r.records)
	r.mu.Unlock()

	for _, rec := range records {
		r.emit(Event{Type: Disconnected, ID: rec.ID})
	}

	r.log.Info("registry closed", zap.Int("released", len(records)))
}

// Resolve opens the gamepad identified by id. It fails if id is malformed,
// the slot cannot be opened, or the slot is now occupied by another device.
// The caller owns the returned handle and must Close it.
func (r *Registry) Resolve(id ID) (*Handle, error) {
	slot, err := ParseSlot(id)
	if err != nil {
		return nil, err
	}

	device, err := r.backend.Open(slot)
	if err != nil {
		return nil, &E{C: ErrDeviceUnavailable, Op: "resolve", Msg: string(id), Err: err}
	}
	if device == nil {
		return nil, &E{C: ErrDeviceUnavailable, Op: "resolve", Msg: string(id)}
	}

	current, ok := r.makeID(slot)
	if !ok || current != id {
		device.Close()

		r.log.Warn("slot reused by another device",
			zap.String("want", string(id)),
			zap.String("got", string(current)),
		)
		return nil, &E{C: ErrDeviceChanged, Op: "resolve", Msg: string(id)}
	}

	return newHandle(id, device), nil
}
