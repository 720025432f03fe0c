package assign_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padremap/internal/assign"
	"github.com/soar/padremap/internal/gamepad"
	"github.com/soar/padremap/internal/gamepad/gamepadtest"
)

var guid = uuid.MustParse("03000000-5e04-0000-8e02-000000007200")

func openHandle(t *testing.T, frames ...gamepad.Snapshot) (*gamepad.Handle, *gamepadtest.Backend) {
	t.Helper()

	backend := gamepadtest.NewBackend()
	registry := gamepad.NewRegistry(backend, nil)
	backend.Plug(0, 1, &gamepadtest.Slot{GUID: guid, IsGamepad: true, Frames: frames})

	h, err := registry.Resolve(gamepad.MakeID(0, guid))
	require.NoError(t, err)

	return h, backend
}

func TestButtonAssignment(t *testing.T) {
	assert := assert.New(t)

	var idle gamepad.Snapshot
	pressed := idle.WithButton(gamepad.ButtonB, true)

	h, backend := openHandle(t, idle, idle, pressed, idle)

	a := assign.NewJoystickAssigner(h, 0.5, assign.ModeButton)
	assert.Equal(assign.Unstarted, a.State())
	assert.Equal(float32(0.5), backend.Devices[0].Threshold)

	a.Init()
	assert.Equal(assign.Sampling, a.State())

	for range 3 {
		a.Tick()
		assert.False(a.ShouldCancel())
	}

	assert.True(a.HasAnyActuated())
	assert.Equal("B", a.ResolvedControl())
	assert.Equal(assign.Resolved, a.State())

	assert.NoError(a.Close())
	assert.Equal(0, backend.Live())
}

func TestButtonHeldIsNotResolved(t *testing.T) {
	assert := assert.New(t)

	var idle gamepad.Snapshot
	held := idle.WithButton(gamepad.ButtonA, true)

	// A is already held when sampling starts, so no edge is ever seen.
	h, _ := openHandle(t, held, held, held)

	a := assign.NewJoystickAssigner(h, 0.5, assign.ModeButton)
	a.Init()
	a.Tick()
	a.Tick()

	assert.False(a.HasAnyActuated())
	assert.Empty(a.ResolvedControl())
	assert.Equal(assign.Sampling, a.State())
}

func TestButtonTieBreak(t *testing.T) {
	assert := assert.New(t)

	var idle gamepad.Snapshot
	both := idle.WithButton(gamepad.ButtonY, true).WithButton(gamepad.ButtonX, true)

	h, _ := openHandle(t, idle, both, idle)

	a := assign.NewJoystickAssigner(h, 0.5, assign.ModeButton)
	a.Init()
	a.Tick()
	a.Tick()

	assert.Equal("X", a.ResolvedControl())
}

func TestStickPriority(t *testing.T) {
	assert := assert.New(t)

	var idle gamepad.Snapshot
	diagonal := idle.WithStick(gamepad.StickLeft, 0.9, -0.9)
	down := idle.WithStick(gamepad.StickLeft, 0, -0.9)

	h, _ := openHandle(t, idle, diagonal, down)

	a := assign.NewJoystickAssigner(h, 0.5, assign.ModeStick)
	a.Init()

	a.Tick()
	assert.False(a.HasAnyActuated())

	// x (0.9) is fed for the diagonal tick, y (-0.9) once x is centered.
	// Had y been fed both times the samples would never straddle the mean.
	a.Tick()
	assert.Equal("Left", a.ResolvedControl())
}

func TestStickAssignment(t *testing.T) {
	assert := assert.New(t)

	var idle gamepad.Snapshot
	right := idle.WithStick(gamepad.StickRight, 1, 0)
	left := idle.WithStick(gamepad.StickRight, -1, 0.3)

	h, _ := openHandle(t, idle, right, left, idle)

	a := assign.NewJoystickAssigner(h, 0.5, assign.ModeStick)
	a.Init()
	a.Tick()
	a.Tick()
	a.Tick()

	assert.True(a.HasAnyActuated())
	assert.Equal("Right", a.ResolvedControl())
}

func TestUnboundAssigner(t *testing.T) {
	assert := assert.New(t)

	a := assign.NewJoystickAssigner(nil, 0.5, assign.ModeButton)
	a.Init()
	a.Tick()

	assert.True(a.ShouldCancel())
	assert.Empty(a.ResolvedControl())
	assert.NoError(a.Close())
}

func TestAssignerCancelsOnDisconnect(t *testing.T) {
	assert := assert.New(t)

	var idle gamepad.Snapshot
	h, backend := openHandle(t, idle)

	a := assign.NewJoystickAssigner(h, 0.5, assign.ModeButton)
	a.Init()
	a.Tick()
	assert.False(a.ShouldCancel())

	backend.Unplug(0, 1)
	assert.True(a.ShouldCancel())

	a.Cancel()
	assert.Equal(assign.Cancelled, a.State())

	assert.NoError(a.Close())
	assert.NoError(a.Close())
	assert.Equal(1, backend.Devices[0].Closes)
}

func TestParseMode(t *testing.T) {
	assert := assert.New(t)

	m, err := assign.ParseMode("stick")
	assert.NoError(err)
	assert.Equal(assign.ModeStick, m)

	m, err = assign.ParseMode("")
	assert.NoError(err)
	assert.Equal(assign.ModeButton, m)

	_, err = assign.ParseMode("keyboard")
	assert.Error(err)
}

var _ assign.Assigner = (*assign.JoystickAssigner)(nil)

func TestInitRestartsSampling(t *testing.T) {
	assert := assert.New(t)

	var idle gamepad.Snapshot
	pressed := idle.WithButton(gamepad.ButtonB, true)

	h, _ := openHandle(t, idle, pressed, idle)

	a := assign.NewJoystickAssigner(h, 0.5, assign.ModeButton)
	a.Init()
	a.Tick()
	a.Tick()
	assert.Equal("B", a.ResolvedControl())

	a.Init()
	assert.Equal(assign.Sampling, a.State())
	assert.False(a.HasAnyActuated())

	a.Tick()
	assert.Empty(a.ResolvedControl())
}
