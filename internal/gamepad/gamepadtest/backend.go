// Package gamepadtest provides a scripted in-memory gamepad backend.
package gamepadtest

import (
	"errors"

	"github.com/google/uuid"

	"github.com/soar/padremap/internal/gamepad"
)

// Slot describes what the fake backend enumerates at one slot index.
type Slot struct {
	GUID      uuid.UUID
	IsGamepad bool

	// Frames are returned by successive Snapshot calls. The last frame
	// repeats once the list is exhausted.
	Frames []gamepad.Snapshot

	// FailOpen makes Open at this slot fail.
	FailOpen bool

	// GUIDAfterOpen, when set, replaces GUID as soon as the slot is opened.
	// It simulates another device taking the slot between enumeration and open.
	GUIDAfterOpen uuid.UUID
}

// Backend is a gamepad.Backend whose slots are set by the test.
type Backend struct {
	Slots map[int]*Slot

	handlers map[int]gamepad.EventHandler
	nextKey  int

	Opened  int
	Closed  int
	Devices []*Device
}

func NewBackend() *Backend {
	return &Backend{
		Slots:    make(map[int]*Slot),
		handlers: make(map[int]gamepad.EventHandler),
	}
}

// Plug places a device at slot and delivers a connect event for instance.
func (b *Backend) Plug(slot int, instance gamepad.InstanceID, s *Slot) {
	b.Slots[slot] = s
	b.Connect(slot, instance)
}

// Connect delivers a connect event without changing the slot contents.
func (b *Backend) Connect(slot int, instance gamepad.InstanceID) {
	for _, h := range b.subscribers() {
		h.DeviceConnected(slot, instance)
	}
}

// Unplug delivers a disconnect event and marks every open device on slot as
// disconnected.
func (b *Backend) Unplug(slot int, instance gamepad.InstanceID) {
	for _, d := range b.Devices {
		if d.slot == slot {
			d.Gone = true
		}
	}
	delete(b.Slots, slot)

	for _, h := range b.subscribers() {
		h.DeviceDisconnected(instance)
	}
}

func (b *Backend) Subscribers() int {
	return len(b.handlers)
}

func (b *Backend) subscribers() []gamepad.EventHandler {
	hs := make([]gamepad.EventHandler, 0, len(b.handlers))
	for k := 0; k < b.nextKey; k++ {
		if h, ok := b.handlers[k]; ok {
			hs = append(hs, h)
		}
	}
	return hs
}

func (b *Backend) Subscribe(h gamepad.EventHandler) func() {
	key := b.nextKey
	b.nextKey++
	b.handlers[key] = h
	return func() { delete(b.handlers, key) }
}

func (b *Backend) GUID(slot int) uuid.UUID {
	s, ok := b.Slots[slot]
	if !ok {
		return uuid.Nil
	}
	return s.GUID
}

func (b *Backend) IsGamepad(slot int) bool {
	s, ok := b.Slots[slot]
	return ok && s.IsGamepad
}

func (b *Backend) Open(slot int) (gamepad.Device, error) {
	s, ok := b.Slots[slot]
	if !ok || s.FailOpen {
		return nil, errors.New("cannot open slot")
	}

	if s.GUIDAfterOpen != uuid.Nil {
		s.GUID = s.GUIDAfterOpen
	}

	b.Opened++
	d := &Device{backend: b, slot: slot, frames: s.Frames}
	b.Devices = append(b.Devices, d)
	return d, nil
}

// Live returns the number of opened devices not yet closed.
func (b *Backend) Live() int {
	return b.Opened - b.Closed
}

// Device is a fake opened gamepad replaying scripted frames.
type Device struct {
	backend *Backend
	slot    int
	frames  []gamepad.Snapshot
	next    int

	Gone      bool
	Closes    int
	Threshold float32
}

func (d *Device) Snapshot() gamepad.Snapshot {
	if len(d.frames) == 0 {
		return gamepad.Snapshot{}
	}
	i := d.next
	if i >= len(d.frames) {
		i = len(d.frames) - 1
	} else {
		d.next++
	}
	return d.frames[i]
}

func (d *Device) Connected() bool {
	return !d.Gone
}

func (d *Device) SetTriggerThreshold(threshold float32) {
	d.Threshold = threshold
}

func (d *Device) Close() {
	d.Closes++
	d.backend.Closed++
}
