package gamepad

import "math"

// Hat bits as reported by SDL for the first joystick hat.
const (
	hatUp    uint8 = 0x01
	hatRight uint8 = 0x02
	hatDown  uint8 = 0x04
	hatLeft  uint8 = 0x08
)

// Deadzones holds the per-stick deadzone radius applied by the native backend.
type Deadzones struct {
	Left  float32
	Right float32
}

// For returns the deadzone of the given stick.
func (d Deadzones) For(id StickID) float32 {
	switch id {
	case StickLeft:
		return d.Left
	case StickRight:
		return d.Right
	default:
		return 0
	}
}

// AxisTarget names what a raw joystick axis drives.
type AxisTarget int

const (
	AxisLeftX AxisTarget = iota
	AxisLeftY
	AxisRightX
	AxisRightY
	AxisLeftTrigger
	AxisRightTrigger
)

// IsTrigger reports whether the axis is an analog trigger.
func (t AxisTarget) IsTrigger() bool {
	return t == AxisLeftTrigger || t == AxisRightTrigger
}

// AxisMapping defines how a raw axis index maps to a stick or trigger.
type AxisMapping struct {
	Index  int32
	Target AxisTarget
	Invert bool
	// For triggers: raw range. Some devices use -32768..32767, others 0..32767.
	RawMin int16
	RawMax int16
}

// ButtonMapping defines how a raw button index maps to a ButtonID.
type ButtonMapping struct {
	Index  int32
	Button ButtonID
}

// DeviceMapping holds the complete mapping for a specific device type.
type DeviceMapping struct {
	Name    string
	Axes    []AxisMapping
	Buttons []ButtonMapping
	HasHat  bool
}

// RawInput is one poll of a joystick's raw axes, buttons and first hat.
type RawInput struct {
	Axes    []int16
	Buttons []bool
	Hat     uint8
	HasHat  bool
}

// Snapshot translates raw joystick input into a Snapshot. Triggers become
// digital buttons under threshold, and sticks get their deadzone applied
// per axis. Indexes the device does not report are skipped.
func (m *DeviceMapping) Snapshot(in RawInput, dz Deadzones, threshold float32) Snapshot {
	var s Snapshot
	var sticks [StickCount][2]float32

	for _, am := range m.Axes {
		if am.Index < 0 || int(am.Index) >= len(in.Axes) {
			continue
		}
		raw := in.Axes[am.Index]

		if am.Target.IsTrigger() {
			pressed := TriggerPressed(NormalizeTrigger(raw, am.RawMin, am.RawMax), threshold)
			if am.Target == AxisLeftTrigger {
				s = s.WithButton(ButtonLeftTrigger, pressed)
			} else {
				s = s.WithButton(ButtonRightTrigger, pressed)
			}
			continue
		}

		v := NormalizeAxis(raw)
		if am.Invert {
			v = -v
		}

		switch am.Target {
		case AxisLeftX:
			sticks[StickLeft][0] = ApplyDeadzone(v, dz.Left)
		case AxisLeftY:
			sticks[StickLeft][1] = ApplyDeadzone(v, dz.Left)
		case AxisRightX:
			sticks[StickRight][0] = ApplyDeadzone(v, dz.Right)
		case AxisRightY:
			sticks[StickRight][1] = ApplyDeadzone(v, dz.Right)
		}
	}
	s = s.WithStick(StickLeft, sticks[StickLeft][0], sticks[StickLeft][1])
	s = s.WithStick(StickRight, sticks[StickRight][0], sticks[StickRight][1])

	for _, bm := range m.Buttons {
		if bm.Index < 0 || int(bm.Index) >= len(in.Buttons) {
			continue
		}
		if in.Buttons[bm.Index] {
			s = s.WithButton(bm.Button, true)
		}
	}

	if m.HasHat && in.HasHat {
		s = s.WithButton(ButtonDpadUp, in.Hat&hatUp != 0)
		s = s.WithButton(ButtonDpadRight, in.Hat&hatRight != 0)
		s = s.WithButton(ButtonDpadDown, in.Hat&hatDown != 0)
		s = s.WithButton(ButtonDpadLeft, in.Hat&hatLeft != 0)
	}

	return s
}

// NormalizeAxis converts a raw axis value (-32768..32767) to -1.0..1.0.
func NormalizeAxis(raw int16) float32 {
	v := float32(raw) / math.MaxInt16
	if v < -1.0 {
		v = -1.0
	}
	return v
}

// NormalizeTrigger converts a raw trigger value to 0.0..1.0.
func NormalizeTrigger(raw int16, rawMin, rawMax int16) float32 {
	if rawMax == rawMin {
		return 0
	}
	v := (float32(raw) - float32(rawMin)) / (float32(rawMax) - float32(rawMin))
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}

// ApplyDeadzone returns 0 if the value is within the deadzone threshold.
func ApplyDeadzone(v float32, threshold float32) float32 {
	if float32(math.Abs(float64(v))) < threshold {
		return 0
	}
	return v
}

// TriggerPressed reports whether a normalized trigger value counts as a
// digital press under the given threshold.
func TriggerPressed(v float32, threshold float32) bool {
	return v > threshold
}

// Built-in mappings for common controllers.

var xboxMapping = &DeviceMapping{
	Name: "xbox",
	Axes: []AxisMapping{
		{Index: 0, Target: AxisLeftX},
		{Index: 1, Target: AxisLeftY, Invert: true},
		{Index: 2, Target: AxisRightX},
		{Index: 3, Target: AxisRightY, Invert: true},
		{Index: 4, Target: AxisLeftTrigger, RawMin: -32768, RawMax: 32767},
		{Index: 5, Target: AxisRightTrigger, RawMin: -32768, RawMax: 32767},
	},
	Buttons: []ButtonMapping{
		{Index: 0, Button: ButtonA},
		{Index: 1, Button: ButtonB},
		{Index: 2, Button: ButtonX},
		{Index: 3, Button: ButtonY},
		{Index: 4, Button: ButtonLeftShoulder},
		{Index: 5, Button: ButtonRightShoulder},
		{Index: 6, Button: ButtonMinus},
		{Index: 7, Button: ButtonPlus},
		{Index: 8, Button: ButtonLeftStick},
		{Index: 9, Button: ButtonRightStick},
		{Index: 10, Button: ButtonGuide},
	},
	HasHat: true,
}

var playstationMapping = &DeviceMapping{
	Name: "playstation",
	Axes: []AxisMapping{
		{Index: 0, Target: AxisLeftX},
		{Index: 1, Target: AxisLeftY, Invert: true},
		{Index: 2, Target: AxisRightX},
		{Index: 3, Target: AxisRightY, Invert: true},
		{Index: 4, Target: AxisLeftTrigger, RawMin: -32768, RawMax: 32767},
		{Index: 5, Target: AxisRightTrigger, RawMin: -32768, RawMax: 32767},
	},
	Buttons: []ButtonMapping{
		{Index: 0, Button: ButtonA},     // Cross
		{Index: 1, Button: ButtonB},     // Circle
		{Index: 2, Button: ButtonX},     // Square
		{Index: 3, Button: ButtonY},     // Triangle
		{Index: 4, Button: ButtonMinus}, // Share / Create
		{Index: 5, Button: ButtonGuide}, // PS button
		{Index: 6, Button: ButtonPlus},  // Options
		{Index: 7, Button: ButtonLeftStick},
		{Index: 8, Button: ButtonRightStick},
		{Index: 9, Button: ButtonLeftShoulder},   // L1
		{Index: 10, Button: ButtonRightShoulder}, // R1
	},
	HasHat: true,
}

var switchProMapping = &DeviceMapping{
	Name: "switch_pro",
	Axes: []AxisMapping{
		{Index: 0, Target: AxisLeftX},
		{Index: 1, Target: AxisLeftY, Invert: true},
		{Index: 2, Target: AxisRightX},
		{Index: 3, Target: AxisRightY, Invert: true},
	},
	Buttons: []ButtonMapping{
		{Index: 0, Button: ButtonA},
		{Index: 1, Button: ButtonB},
		{Index: 2, Button: ButtonX},
		{Index: 3, Button: ButtonY},
		{Index: 4, Button: ButtonLeftShoulder},
		{Index: 5, Button: ButtonRightShoulder},
		{Index: 6, Button: ButtonMinus},
		{Index: 7, Button: ButtonPlus},
		{Index: 8, Button: ButtonLeftStick},
		{Index: 9, Button: ButtonRightStick},
		{Index: 10, Button: ButtonGuide},
	},
	HasHat: true,
}

var genericMapping = &DeviceMapping{
	Name:    "generic",
	Axes:    xboxMapping.Axes,
	Buttons: xboxMapping.Buttons,
	HasHat:  true,
}

// Known vendor/product IDs.
type deviceKey struct {
	VendorID  uint16
	ProductID uint16
}

var knownDevices = map[deviceKey]*DeviceMapping{
	// Microsoft Xbox controllers
	{0x045E, 0x028E}: xboxMapping, // Xbox 360
	{0x045E, 0x02FF}: xboxMapping, // Xbox One
	{0x045E, 0x0B12}: xboxMapping, // Xbox Series X|S
	{0x045E, 0x0B13}: xboxMapping, // Xbox Series X|S (wireless)
	// Sony PlayStation controllers
	{0x054C, 0x0CE6}: playstationMapping, // DualSense
	{0x054C, 0x09CC}: playstationMapping, // DualShock 4 v2
	{0x054C, 0x05C4}: playstationMapping, // DualShock 4 v1
	// Nintendo Switch Pro Controller
	{0x057E, 0x2009}: switchProMapping,
}

// GetMapping returns the mapping for a device identified by vendor/product
// ID, falling back to the generic layout.
func GetMapping(vendorID, productID uint16) *DeviceMapping {
	if m, ok := knownDevices[deviceKey{VendorID: vendorID, ProductID: productID}]; ok {
		return m
	}
	return genericMapping
}
