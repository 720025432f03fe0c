// Package assign detects which control a user is pressing during an
// interactive remap.
package assign

import "errors"

// Assigner drives one remap interaction. Callers Init once, then Tick on
// every poll cycle, checking ShouldCancel before trusting ResolvedControl.
type Assigner interface {
	Init()
	Tick()
	HasAnyActuated() bool
	ShouldCancel() bool

	// ResolvedControl returns the name of the actuated control, or "" while
	// nothing has been detected.
	ResolvedControl() string

	Close() error
}

// Mode selects which kind of control an assigner listens for.
type Mode int

const (
	ModeButton Mode = iota
	ModeStick
)

func ParseMode(s string) (Mode, error) {
	switch s {
	case "button", "":
		return ModeButton, nil
	case "stick":
		return ModeStick, nil
	default:
		return -1, errors.New("mode not supported")
	}
}

func (m Mode) String() string {
	switch m {
	case ModeButton:
		return "button"
	case ModeStick:
		return "stick"
	default:
		return "unknown"
	}
}

// State is the lifecycle position of an assignment.
type State int

const (
	Unstarted State = iota
	Sampling
	Resolved
	Cancelled
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Sampling:
		return "sampling"
	case Resolved:
		return "resolved"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
