// Package remap runs the gamepad input pump and the assignment sessions
// started by the front-end.
package remap

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/soar/padremap/internal/assign"
	"github.com/soar/padremap/internal/gamepad"
)

const (
	ErrCancelled gamepad.Code = "cancelled"
	ErrStopped   gamepad.Code = "stopped"
)

type Service interface {
	// Devices lists the ids of the connected gamepads.
	Devices() []gamepad.ID

	// Assign waits until the user actuates a control on gamepad id and
	// returns its name. It fails with ErrCancelled if the gamepad goes away
	// and with ctx.Err() if ctx ends first.
	Assign(ctx context.Context, id gamepad.ID, mode assign.Mode) (string, error)

	Subscribe(l gamepad.Listener) (unsubscribe func())
}

type ServiceMiddleware func(next Service) Service

// Driver is a gamepad backend that also owns the native event loop.
type Driver interface {
	gamepad.Backend
	Init() error
	Poll()
	Close()
}

type Options struct {
	PollInterval     time.Duration
	TriggerThreshold float32
}

// Pump owns the driver, the registry and every running assignment. All of
// them are touched only from the goroutine executing Run.
type Pump struct {
	log      *zap.Logger
	driver   Driver
	registry *gamepad.Registry
	opts     Options

	requests chan *job
	jobs     []*job
	done     chan struct{}
}

func NewPump(driver Driver, opts Options, log *zap.Logger) *Pump {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 16 * time.Millisecond
	}

	return &Pump{
		log:      log.With(zap.String("service", "remap")),
		driver:   driver,
		registry: gamepad.NewRegistry(driver, log),
		opts:     opts,
		requests: make(chan *job),
		done:     make(chan struct{}),
	}
}

type result struct {
	control string
	err     error
}

type job struct {
	ctx      context.Context
	id       gamepad.ID
	mode     assign.Mode
	assigner assign.Assigner
	result   chan result
}

func (j *job) finish(control string, err error) {
	if j.assigner != nil {
		j.assigner.Close()
	}
	j.result <- result{control, err}
}

// Run initializes the driver and pumps events and assignments until ctx is
// done. It must be called once, from a goroutine it may lock to its thread.
func (p *Pump) Run(ctx context.Context) error {
	defer close(p.done)

	if err := p.driver.Init(); err != nil {
		return err
	}

	ticker := time.NewTicker(p.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.shutdown()
			return nil

		case j := <-p.requests:
			p.start(j)

		case <-ticker.C:
			p.driver.Poll()
			p.tick()
		}
	}
}

func (p *Pump) start(j *job) {
	h, err := p.registry.Resolve(j.id)
	if err != nil {
		j.finish("", err)
		return
	}

	j.assigner = assign.NewJoystickAssigner(h, p.opts.TriggerThreshold, j.mode)
	j.assigner.Init()
	p.jobs = append(p.jobs, j)
}

func (p *Pump) tick() {
	running := p.jobs[:0]
	for _, j := range p.jobs {
		if err := j.ctx.Err(); err != nil {
			j.finish("", err)
			continue
		}

		if j.assigner.ShouldCancel() {
			j.finish("", ErrCancelled)
			continue
		}

		j.assigner.Tick()

		if j.assigner.HasAnyActuated() {
			if control := j.assigner.ResolvedControl(); control != "" {
				j.finish(control, nil)
				continue
			}
		}

		running = append(running, j)
	}

	clear(p.jobs[len(running):])
	p.jobs = running
}

func (p *Pump) shutdown() {
	for _, j := range p.jobs {
		j.finish("", ErrStopped)
	}
	p.jobs = nil

	p.registry.Close()
	p.driver.Close()
}

func (p *Pump) Devices() []gamepad.ID {
	return p.registry.IDs()
}

func (p *Pump) Subscribe(l gamepad.Listener) func() {
	return p.registry.Subscribe(l)
}

func (p *Pump) Assign(ctx context.Context, id gamepad.ID, mode assign.Mode) (string, error) {
	j := &job{
		ctx:    ctx,
		id:     id,
		mode:   mode,
		result: make(chan result, 1),
	}

	select {
	case p.requests <- j:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-p.done:
		return "", ErrStopped
	}

	r := <-j.result
	return r.control, r.err
}
