package assign

import (
	"github.com/soar/padremap/internal/gamepad"
)

// JoystickAssigner detects a control on a gamepad by diffing consecutive
// snapshots and feeding the differences to a Detector.
//
// In button mode a press edge feeds +1 and a release edge feeds -1, so a
// button toggled during sampling straddles its mean. In stick mode the first
// nonzero axis of each stick is fed every tick.
type JoystickAssigner struct {
	handle *gamepad.Handle
	mode   Mode
	state  State

	curr gamepad.Snapshot
	prev gamepad.Snapshot

	buttons *Detector[gamepad.ButtonID]
	sticks  *Detector[gamepad.StickID]
}

// NewJoystickAssigner binds h, which may be nil. The assigner takes
// ownership of h and releases it on Close.
func NewJoystickAssigner(h *gamepad.Handle, triggerThreshold float32, mode Mode) *JoystickAssigner {
	a := &JoystickAssigner{
		handle:  h,
		mode:    mode,
		buttons: NewDetector[gamepad.ButtonID](),
		sticks:  NewDetector[gamepad.StickID](),
	}

	if h != nil {
		h.SetTriggerThreshold(triggerThreshold)
	}

	return a
}

func (a *JoystickAssigner) Mode() Mode   { return a.mode }
func (a *JoystickAssigner) State() State { return a.state }

// Init takes the baseline snapshot so the first Tick sees no edges. Calling
// it again restarts sampling and forgets everything collected so far.
func (a *JoystickAssigner) Init() {
	a.buttons.Reset()
	a.sticks.Reset()

	if a.handle != nil {
		a.curr = a.handle.Snapshot()
		a.prev = a.curr
	}
	a.state = Sampling
}

func (a *JoystickAssigner) Tick() {
	if a.state != Sampling {
		return
	}

	if a.handle != nil {
		a.prev = a.curr
		a.curr = a.handle.Snapshot()
	}

	switch a.mode {
	case ModeStick:
		a.collectSticks()
	default:
		a.collectButtons()
	}
}

func (a *JoystickAssigner) collectButtons() {
	for _, e := range gamepad.Edges(a.prev, a.curr) {
		if e.Pressed {
			a.buttons.Add(e.Button, 1)
		} else {
			a.buttons.Add(e.Button, -1)
		}
	}
}

func (a *JoystickAssigner) collectSticks() {
	for id := gamepad.StickID(0); id < gamepad.StickCount; id++ {
		x, y := a.curr.Stick(id)

		var value float32
		switch {
		case x != 0:
			value = x
		case y != 0:
			value = y
		default:
			continue
		}

		a.sticks.Add(id, value)
	}
}

func (a *JoystickAssigner) HasAnyActuated() bool {
	if a.mode == ModeStick {
		return a.sticks.HasAnyActuated()
	}
	return a.buttons.HasAnyActuated()
}

// ShouldCancel reports whether the bound gamepad is missing or gone.
func (a *JoystickAssigner) ShouldCancel() bool {
	return a.handle == nil || !a.handle.Connected()
}

// ResolvedControl names the actuated control. When several are actuated at
// once the lowest enumeration value wins.
func (a *JoystickAssigner) ResolvedControl() string {
	var name string

	if a.mode == ModeStick {
		if ids := a.sticks.Actuated(); len(ids) > 0 {
			name = ids[0].String()
		}
	} else {
		if ids := a.buttons.Actuated(); len(ids) > 0 {
			name = ids[0].String()
		}
	}

	if name != "" && a.state == Sampling {
		a.state = Resolved
	}
	return name
}

// Cancel stops sampling. Further ticks are ignored.
func (a *JoystickAssigner) Cancel() {
	if a.state == Resolved {
		return
	}
	a.state = Cancelled
}

// Close releases the bound gamepad.
func (a *JoystickAssigner) Close() error {
	if a.handle == nil {
		return nil
	}
	return a.handle.Close()
}
