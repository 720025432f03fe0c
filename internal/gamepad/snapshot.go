package gamepad

// ButtonID identifies a digital control on a full gamepad.
type ButtonID int

const (
	ButtonUnbound ButtonID = iota
	ButtonA
	ButtonB
	ButtonX
	ButtonY
	ButtonLeftStick
	ButtonRightStick
	ButtonLeftShoulder
	ButtonRightShoulder
	ButtonLeftTrigger
	ButtonRightTrigger
	ButtonDpadUp
	ButtonDpadDown
	ButtonDpadLeft
	ButtonDpadRight
	ButtonMinus
	ButtonPlus
	ButtonGuide
	ButtonMisc1
	ButtonPaddle1
	ButtonPaddle2
	ButtonPaddle3
	ButtonPaddle4
	ButtonTouchpad
	ButtonCount
)

var buttonNames = [ButtonCount]string{
	"Unbound",
	"A",
	"B",
	"X",
	"Y",
	"LeftStick",
	"RightStick",
	"LeftShoulder",
	"RightShoulder",
	"LeftTrigger",
	"RightTrigger",
	"DpadUp",
	"DpadDown",
	"DpadLeft",
	"DpadRight",
	"Minus",
	"Plus",
	"Guide",
	"Misc1",
	"Paddle1",
	"Paddle2",
	"Paddle3",
	"Paddle4",
	"Touchpad",
}

func (b ButtonID) String() string {
	if b < 0 || b >= ButtonCount {
		return "Unknown"
	}
	return buttonNames[b]
}

// StickID identifies an analog stick.
type StickID int

const (
	StickUnbound StickID = iota
	StickLeft
	StickRight
	StickCount
)

func (s StickID) String() string {
	switch s {
	case StickUnbound:
		return "Unbound"
	case StickLeft:
		return "Left"
	case StickRight:
		return "Right"
	default:
		return "Unknown"
	}
}

// Vector is a stick position, each component in -1.0..1.0.
type Vector struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Snapshot is an immutable capture of a device's state for one poll tick.
// The With* methods return modified copies.
type Snapshot struct {
	buttons uint64
	sticks  [StickCount]Vector
}

// IsPressed reports whether the button was held when the snapshot was taken.
func (s Snapshot) IsPressed(b ButtonID) bool {
	if b < 0 || b >= ButtonCount {
		return false
	}
	return s.buttons&(1<<uint(b)) != 0
}

// Stick returns the position of the given stick.
func (s Snapshot) Stick(id StickID) (x, y float32) {
	if id < 0 || id >= StickCount {
		return 0, 0
	}
	v := s.sticks[id]
	return v.X, v.Y
}

func (s Snapshot) WithButton(b ButtonID, pressed bool) Snapshot {
	if b < 0 || b >= ButtonCount {
		return s
	}
	if pressed {
		s.buttons |= 1 << uint(b)
	} else {
		s.buttons &^= 1 << uint(b)
	}
	return s
}

func (s Snapshot) WithStick(id StickID, x, y float32) Snapshot {
	if id < 0 || id >= StickCount {
		return s
	}
	s.sticks[id] = Vector{X: x, Y: y}
	return s
}

// Pressed lists the held buttons in enumeration order.
func (s Snapshot) Pressed() []ButtonID {
	var out []ButtonID
	for b := ButtonID(0); b < ButtonCount; b++ {
		if s.IsPressed(b) {
			out = append(out, b)
		}
	}
	return out
}
