package system

import (
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
)

// Runner executes systems in phase order each tick. Systems of the same
// phase run in registration order. A panicking system is logged and the
// tick continues with the next one.
type Runner struct {
	systems []System
	sorted  bool
	panics  int
	log     *zap.Logger
}

func NewRunner(log *zap.Logger) *Runner {
	return &Runner{
		systems: make([]System, 0, 4),
		log:     log,
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		r.update(s, dt)
	}
}

// TickPhase runs only the systems of one phase; shutdown uses it to drain
// events without reading more input.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			r.update(s, dt)
		}
	}
}

// Panics reports how many Update calls have been recovered.
func (r *Runner) Panics() int { return r.panics }

func (r *Runner) update(s System, dt time.Duration) {
	defer func() {
		if v := recover(); v != nil {
			r.panics++
			r.log.Error("system update panicked",
				zap.String("system", fmt.Sprintf("%T", s)),
				zap.Stringer("phase", s.Phase()),
				zap.Any("panic", v),
				zap.Stack("stack"),
			)
		}
	}()
	s.Update(dt)
}

func (r *Runner) ensureSorted() {
	if r.sorted {
		return
	}
	slices.SortStableFunc(r.systems, func(a, b System) int {
		return int(a.Phase()) - int(b.Phase())
	})
	r.sorted = true
}
