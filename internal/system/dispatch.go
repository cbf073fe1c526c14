package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/mwhost/server/internal/core/system"
)

// Flusher delivers queued events; *session.Session implements it.
type Flusher interface {
	Flush() int
}

// DispatchSystem delivers the events produced by this tick's input.
// Phase 1 (Dispatch).
type DispatchSystem struct {
	flusher Flusher
	log     *zap.Logger
}

func NewDispatchSystem(f Flusher, log *zap.Logger) *DispatchSystem {
	return &DispatchSystem{flusher: f, log: log}
}

func (s *DispatchSystem) Phase() coresys.Phase { return coresys.PhaseDispatch }

func (s *DispatchSystem) Update(_ time.Duration) {
	if n := s.flusher.Flush(); n > 0 {
		s.log.Debug("events dispatched", zap.Int("count", n))
	}
}
