package hub

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/soar/padremap/internal/gamepad"
)

const fullSyncInterval = 5 * time.Second

// DeviceLister returns the currently connected gamepads.
type DeviceLister interface {
	Devices() []gamepad.ID
}

// Broadcaster forwards gamepad hotplug events to every client and
// periodically resends the full device list.
type Broadcaster struct {
	hub     *Hub
	devices DeviceLister
	events  chan gamepad.Event
	seq     atomic.Int64
}

func NewBroadcaster(h *Hub, devices DeviceLister) *Broadcaster {
	return &Broadcaster{
		hub:     h,
		devices: devices,
		events:  make(chan gamepad.Event, 64),
	}
}

// Listen is a gamepad.Listener. It never blocks the caller; events are
// dropped if the broadcaster falls behind, the next full sync repairs the
// client view.
func (b *Broadcaster) Listen(e gamepad.Event) {
	select {
	case b.events <- e:
	default:
	}
}

// Run starts the broadcaster loop. Should be run in a goroutine.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case e := <-b.events:
			b.broadcast(NewEventMessage(b.seq.Add(1), e))

		case <-ticker.C:
			b.broadcast(NewDevicesMessage(b.seq.Add(1), b.devices.Devices()))
		}
	}
}

// SendInitialState sends the current device list to a newly connected client.
func (b *Broadcaster) SendInitialState(c *Client) {
	c.sendJSON(NewDevicesMessage(b.seq.Add(1), b.devices.Devices()))
}

func (b *Broadcaster) broadcast(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.hub.log.Error("marshal broadcast", zap.Error(err))
		return
	}
	b.hub.Broadcast(data)
}
