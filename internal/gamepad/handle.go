package gamepad

// Handle owns one opened device. It is only obtainable from Registry.Resolve
// and is meant for a single goroutine. Every method is safe on a nil handle.
type Handle struct {
	id     ID
	device Device
	closed bool
}

func newHandle(id ID, device Device) *Handle {
	return &Handle{id: id, device: device}
}

func (h *Handle) ID() ID {
	if h == nil {
		return ""
	}
	return h.id
}

// Snapshot captures the device state. A closed handle yields an empty snapshot.
func (h *Handle) Snapshot() Snapshot {
	if h == nil || h.closed {
		return Snapshot{}
	}
	return h.device.Snapshot()
}

func (h *Handle) Connected() bool {
	if h == nil || h.closed {
		return false
	}
	return h.device.Connected()
}

func (h *Handle) SetTriggerThreshold(threshold float32) {
	if h == nil || h.closed {
		return
	}
	h.device.SetTriggerThreshold(threshold)
}

// Close releases the native device. Subsequent calls, and calls on a nil
// handle, do nothing.
func (h *Handle) Close() error {
	if h == nil || h.closed {
		return nil
	}
	h.closed = true
	h.device.Close()
	return nil
}
