package remap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padremap/internal/assign"
	"github.com/soar/padremap/internal/gamepad"
	"github.com/soar/padremap/internal/gamepad/gamepadtest"
)

var guid = uuid.MustParse("03000000-5e04-0000-8e02-000000007200")

type fakeDriver struct {
	*gamepadtest.Backend

	initErr error
	polls   int
	onPoll  func(n int)
	closed  bool
}

func (d *fakeDriver) Init() error { return d.initErr }

func (d *fakeDriver) Poll() {
	d.polls++
	if d.onPoll != nil {
		d.onPoll(d.polls)
	}
}

func (d *fakeDriver) Close() { d.closed = true }

func run(t *testing.T, pump *Pump) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- pump.Run(ctx)
	}()

	return func() {
		cancel()
		require.NoError(t, <-errCh)
	}
}

func TestAssignButton(t *testing.T) {
	assert := assert.New(t)

	var idle gamepad.Snapshot
	pressed := idle.WithButton(gamepad.ButtonB, true)

	driver := &fakeDriver{Backend: gamepadtest.NewBackend()}
	pump := NewPump(driver, Options{PollInterval: time.Millisecond, TriggerThreshold: 0.4}, nil)

	driver.Plug(0, 1, &gamepadtest.Slot{
		GUID:      guid,
		IsGamepad: true,
		Frames:    []gamepad.Snapshot{idle, idle, pressed, pressed, idle},
	})

	assert.Equal([]gamepad.ID{gamepad.MakeID(0, guid)}, pump.Devices())

	stop := run(t, pump)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	control, err := pump.Assign(ctx, gamepad.MakeID(0, guid), assign.ModeButton)
	assert.NoError(err)
	assert.Equal("B", control)

	stop()

	assert.True(driver.closed)
	assert.Equal(0, driver.Live())
	assert.Equal(float32(0.4), driver.Devices[0].Threshold)
}

func TestAssignCancelledOnUnplug(t *testing.T) {
	assert := assert.New(t)

	driver := &fakeDriver{Backend: gamepadtest.NewBackend()}
	pump := NewPump(driver, Options{PollInterval: time.Millisecond}, nil)

	driver.Plug(0, 1, &gamepadtest.Slot{GUID: guid, IsGamepad: true})

	var events []gamepad.Event
	pump.Subscribe(func(e gamepad.Event) { events = append(events, e) })

	started := false
	driver.onPoll = func(int) {
		if len(driver.Devices) > 0 && !started {
			started = true
			driver.Unplug(0, 1)
		}
	}

	stop := run(t, pump)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := pump.Assign(ctx, gamepad.MakeID(0, guid), assign.ModeButton)
	assert.ErrorIs(err, ErrCancelled)

	stop()

	assert.Equal(0, driver.Live())
	assert.Equal([]gamepad.Event{{Type: gamepad.Disconnected, ID: gamepad.MakeID(0, guid)}}, events)
	assert.Empty(pump.Devices())
}

func TestAssignContextDone(t *testing.T) {
	driver := &fakeDriver{Backend: gamepadtest.NewBackend()}
	pump := NewPump(driver, Options{PollInterval: time.Millisecond}, nil)
	driver.Plug(0, 1, &gamepadtest.Slot{GUID: guid, IsGamepad: true})

	stop := run(t, pump)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := pump.Assign(ctx, gamepad.MakeID(0, guid), assign.ModeStick)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestAssignResolveFailure(t *testing.T) {
	driver := &fakeDriver{Backend: gamepadtest.NewBackend()}
	pump := NewPump(driver, Options{PollInterval: time.Millisecond}, nil)

	stop := run(t, pump)
	defer stop()

	_, err := pump.Assign(context.Background(), "not-an-id", assign.ModeButton)
	assert.ErrorIs(t, err, gamepad.ErrInvalidID)

	_, err = pump.Assign(context.Background(), gamepad.MakeID(2, guid), assign.ModeButton)
	assert.ErrorIs(t, err, gamepad.ErrDeviceUnavailable)
}

func TestShutdownStopsAssignments(t *testing.T) {
	assert := assert.New(t)

	driver := &fakeDriver{Backend: gamepadtest.NewBackend()}
	pump := NewPump(driver, Options{PollInterval: time.Millisecond}, nil)
	driver.Plug(0, 1, &gamepadtest.Slot{GUID: guid, IsGamepad: true})

	var events []gamepad.Event
	pump.Subscribe(func(e gamepad.Event) { events = append(events, e) })

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- pump.Run(ctx) }()

	resCh := make(chan error, 1)
	go func() {
		_, err := pump.Assign(context.Background(), gamepad.MakeID(0, guid), assign.ModeButton)
		resCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	assert.NoError(<-errCh)
	assert.ErrorIs(<-resCh, ErrStopped)
	assert.Equal([]gamepad.Event{{Type: gamepad.Disconnected, ID: gamepad.MakeID(0, guid)}}, events)
	assert.Equal(0, driver.Live())
}

func TestRunInitFailure(t *testing.T) {
	driver := &fakeDriver{Backend: gamepadtest.NewBackend(), initErr: errors.New("no sdl")}
	pump := NewPump(driver, Options{}, nil)

	assert.EqualError(t, pump.Run(context.Background()), "no sdl")

	_, err := pump.Assign(context.Background(), gamepad.MakeID(0, guid), assign.ModeButton)
	assert.ErrorIs(t, err, ErrStopped)
}
