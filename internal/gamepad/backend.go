package gamepad

import "github.com/google/uuid"

// Device is an opened native gamepad. Close releases the native resource
// and must be called once.
type Device interface {
	Snapshot() Snapshot
	Connected() bool
	SetTriggerThreshold(threshold float32)
	Close()
}

// EventHandler receives hotplug notifications from a Backend.
type EventHandler interface {
	DeviceConnected(slot int, instance InstanceID)
	DeviceDisconnected(instance InstanceID)
}

// Backend is the native input layer the registry sits on.
type Backend interface {
	// Open opens the device currently enumerated at slot.
	Open(slot int) (Device, error)

	// GUID returns the hardware GUID at slot, or uuid.Nil when unknown.
	GUID(slot int) uuid.UUID

	// IsGamepad reports whether the device at slot is a full gamepad rather
	// than a generic joystick.
	IsGamepad(slot int) bool

	// Subscribe registers h for hotplug events until the returned func is called.
	Subscribe(h EventHandler) (unsubscribe func())
}
