package system

import (
	"fmt"
	"time"
)

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput    Phase = iota // drain console input into the session
	PhaseDispatch              // deliver queued session events
	PhasePersist               // journal flush
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseDispatch:
		return "dispatch"
	case PhasePersist:
		return "persist"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// System is one step of the tick loop. Update runs on the loop goroutine
// that owns the session.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
