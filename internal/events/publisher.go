// Package events forwards gamepad hotplug notifications to NATS.
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/soar/padremap/internal/gamepad"
)

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
}

var _ Conn = (*nats.Conn)(nil)

// Message is the JSON payload published for every event.
type Message struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
}

type Publisher struct {
	log    *zap.Logger
	conn   Conn
	prefix string
	now    func() time.Time
}

func NewPublisher(conn Conn, prefix string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}

	return &Publisher{
		log: log.With(
			zap.String("component", "events"),
			zap.String("prefix", prefix),
		),
		conn:   conn,
		prefix: prefix,
		now:    time.Now,
	}
}

// Subject returns the subject an event type is published on.
func (p *Publisher) Subject(t gamepad.EventType) string {
	return p.prefix + "." + t.String()
}

// Listen is a gamepad.Listener. Publishing errors are logged and dropped.
func (p *Publisher) Listen(e gamepad.Event) {
	msg := Message{
		Type:      e.Type.String(),
		ID:        string(e.ID),
		Timestamp: p.now().UnixMilli(),
	}

	data, err := json.Marshal(&msg)
	if err != nil {
		p.log.Error(err.Error())
		return
	}

	subject := p.Subject(e.Type)
	if err := p.conn.Publish(subject, data); err != nil {
		p.log.Error(err.Error(), zap.String("subject", subject))
		return
	}

	p.log.Debug("event published",
		zap.String("subject", subject),
		zap.String("id", msg.ID),
	)
}

// Connect dials the NATS server at url.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("padremap"),
		nats.MaxReconnects(-1),
	)
}
