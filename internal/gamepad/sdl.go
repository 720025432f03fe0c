package gamepad

import (
	"errors"
	"fmt"
	"runtime"
	"slices"

	"github.com/google/uuid"
	"github.com/jupiterrider/purego-sdl3/sdl"
	"go.uber.org/zap"
)

// SDL is the SDL3 backend. Every method, including Init, Poll and Close,
// must run on the same OS-locked goroutine.
type SDL struct {
	log       *zap.Logger
	deadzones Deadzones
	handlers  map[int]EventHandler
	nextKey   int
	devices   map[*sdlDevice]struct{}
}

var _ Backend = (*SDL)(nil)

func NewSDL(deadzones Deadzones, log *zap.Logger) *SDL {
	if log == nil {
		log = zap.NewNop()
	}

	return &SDL{
		log:       log.With(zap.String("component", "sdl")),
		deadzones: deadzones,
		handlers:  make(map[int]EventHandler),
		devices:   make(map[*sdlDevice]struct{}),
	}
}

// Init initializes the SDL joystick and gamepad subsystems and reports the
// devices that are already plugged in.
func (b *SDL) Init() error {
	runtime.LockOSThread()

	if !sdl.Init(sdl.InitJoystick | sdl.InitGamepad) {
		runtime.UnlockOSThread()
		return errors.New("sdl init: " + sdl.GetError())
	}

	b.log.Info("SDL3 gamepad subsystem initialized")

	for slot, id := range sdl.GetJoysticks() {
		b.dispatchConnected(slot, id)
	}
	return nil
}

// Poll drains pending SDL events and forwards hotplug events to subscribers.
func (b *SDL) Poll() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			which := event.JDevice().Which
			slot := slices.Index(sdl.GetJoysticks(), which)
			if slot < 0 {
				continue
			}
			b.dispatchConnected(slot, which)

		case sdl.EventJoystickRemoved:
			which := event.JDevice().Which
			for _, h := range b.subscribers() {
				h.DeviceDisconnected(InstanceID(which))
			}
		}
	}
}

func (b *SDL) dispatchConnected(slot int, which sdl.JoystickID) {
	for _, h := range b.subscribers() {
		h.DeviceConnected(slot, InstanceID(which))
	}
}

func (b *SDL) subscribers() []EventHandler {
	keys := make([]int, 0, len(b.handlers))
	for k := range b.handlers {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	hs := make([]EventHandler, 0, len(keys))
	for _, k := range keys {
		hs = append(hs, b.handlers[k])
	}
	return hs
}

// Close releases devices that were never closed by their owners and shuts
// SDL down.
func (b *SDL) Close() {
	for d := range b.devices {
		d.Close()
	}

	sdl.Quit()
	runtime.UnlockOSThread()

	b.log.Info("SDL3 gamepad subsystem stopped")
}

func (b *SDL) Subscribe(h EventHandler) func() {
	key := b.nextKey
	b.nextKey++
	b.handlers[key] = h

	return func() {
		delete(b.handlers, key)
	}
}

func (b *SDL) joystickAt(slot int) (sdl.JoystickID, bool) {
	ids := sdl.GetJoysticks()
	if slot < 0 || slot >= len(ids) {
		return 0, false
	}
	return ids[slot], true
}

// GUID derives the slot's GUID from its USB vendor and product ids.
func (b *SDL) GUID(slot int) uuid.UUID {
	id, ok := b.joystickAt(slot)
	if !ok {
		return uuid.Nil
	}
	return DeviceGUID(sdl.GetJoystickVendorForID(id), sdl.GetJoystickProductForID(id))
}

// IsGamepad reports whether SDL recognizes the slot as a full gamepad.
func (b *SDL) IsGamepad(slot int) bool {
	id, ok := b.joystickAt(slot)
	if !ok {
		return false
	}
	return slices.Contains(sdl.GetGamepads(), id)
}

func (b *SDL) Open(slot int) (Device, error) {
	id, ok := b.joystickAt(slot)
	if !ok {
		return nil, errors.New("no device at slot")
	}

	js := sdl.OpenJoystick(id)
	if js == nil {
		return nil, errors.New(sdl.GetError())
	}

	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	mapping := GetMapping(vendorID, productID)

	b.log.Debug("joystick opened",
		zap.Int("slot", slot),
		zap.String("name", sdl.GetJoystickName(js)),
		zap.String("vid", fmt.Sprintf("%04X", vendorID)),
		zap.String("pid", fmt.Sprintf("%04X", productID)),
		zap.String("mapping", mapping.Name),
		zap.Int("axes", int(sdl.GetNumJoystickAxes(js))),
		zap.Int("buttons", int(sdl.GetNumJoystickButtons(js))),
		zap.Int("hats", int(sdl.GetNumJoystickHats(js))),
	)

	d := &sdlDevice{
		backend:   b,
		joystick:  js,
		mapping:   mapping,
		deadzones: b.deadzones,
	}
	b.devices[d] = struct{}{}
	return d, nil
}

type sdlDevice struct {
	backend   *SDL
	joystick  *sdl.Joystick
	mapping   *DeviceMapping
	deadzones Deadzones
	threshold float32
	raw       RawInput
}

func (d *sdlDevice) Connected() bool {
	return d.joystick != nil && sdl.JoystickConnected(d.joystick)
}

func (d *sdlDevice) SetTriggerThreshold(threshold float32) {
	d.threshold = threshold
}

func (d *sdlDevice) Snapshot() Snapshot {
	if d.joystick == nil {
		return Snapshot{}
	}
	d.read()
	return d.mapping.Snapshot(d.raw, d.deadzones, d.threshold)
}

// read refreshes d.raw from the joystick, reusing its buffers.
func (d *sdlDevice) read() {
	js := d.joystick

	d.raw.Axes = d.raw.Axes[:0]
	for i := range sdl.GetNumJoystickAxes(js) {
		d.raw.Axes = append(d.raw.Axes, sdl.GetJoystickAxis(js, i))
	}

	d.raw.Buttons = d.raw.Buttons[:0]
	for i := range sdl.GetNumJoystickButtons(js) {
		d.raw.Buttons = append(d.raw.Buttons, sdl.GetJoystickButton(js, i))
	}

	d.raw.HasHat = sdl.GetNumJoystickHats(js) > 0
	d.raw.Hat = 0
	if d.raw.HasHat {
		d.raw.Hat = sdl.GetJoystickHat(js, 0)
	}
}

func (d *sdlDevice) Close() {
	if d.joystick == nil {
		return
	}
	sdl.CloseJoystick(d.joystick)
	d.joystick = nil
	delete(d.backend.devices, d)
}
