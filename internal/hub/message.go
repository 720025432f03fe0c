package hub

import (
	"time"

	"github.com/soar/padremap/internal/gamepad"
)

// WSMessage represents a WebSocket message sent from server to client.
type WSMessage struct {
	Type      string       `json:"type"`              // "devices", "event", "assigned", "cancelled", "error"
	Seq       int64        `json:"seq"`               // Sequence number for ordering
	Timestamp int64        `json:"timestamp"`         // Unix timestamp in milliseconds
	Event     string       `json:"event,omitempty"`   // "connected" or "disconnected" for type "event"
	ID        gamepad.ID   `json:"id,omitempty"`      // Gamepad the message is about
	Devices   []gamepad.ID `json:"devices"`           // Connected gamepads for type "devices"
	Control   string       `json:"control,omitempty"` // Resolved control for type "assigned"
	Mode      string       `json:"mode,omitempty"`    // Assignment mode for "assigned" and "cancelled"
	Error     string       `json:"error,omitempty"`   // Error code for type "error"
}

// NewDevicesMessage creates a "devices" message listing every connected gamepad.
func NewDevicesMessage(seq int64, devices []gamepad.ID) *WSMessage {
	if devices == nil {
		devices = []gamepad.ID{}
	}
	return &WSMessage{
		Type:      "devices",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Devices:   devices,
	}
}

// NewEventMessage creates an "event" message for a hotplug change.
func NewEventMessage(seq int64, e gamepad.Event) *WSMessage {
	return &WSMessage{
		Type:      "event",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Event:     e.Type.String(),
		ID:        e.ID,
	}
}

// NewAssignedMessage reports the control picked during an assignment.
func NewAssignedMessage(id gamepad.ID, mode, control string) *WSMessage {
	return &WSMessage{
		Type:      "assigned",
		Timestamp: time.Now().UnixMilli(),
		ID:        id,
		Mode:      mode,
		Control:   control,
	}
}

// NewCancelledMessage reports an assignment that ended without a control.
func NewCancelledMessage(id gamepad.ID, mode string) *WSMessage {
	return &WSMessage{
		Type:      "cancelled",
		Timestamp: time.Now().UnixMilli(),
		ID:        id,
		Mode:      mode,
	}
}

// NewErrorMessage reports a failed request using its error code.
func NewErrorMessage(id gamepad.ID, code gamepad.Code) *WSMessage {
	return &WSMessage{
		Type:      "error",
		Timestamp: time.Now().UnixMilli(),
		ID:        id,
		Error:     string(code),
	}
}

// ClientMessage represents a message sent from the client to the server.
type ClientMessage struct {
	Type string     `json:"type"` // "list", "assign", "cancel"
	ID   gamepad.ID `json:"id,omitempty"`
	Mode string     `json:"mode,omitempty"`
}
