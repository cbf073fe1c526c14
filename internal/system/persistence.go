package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	coresys "github.com/mwhost/server/internal/core/system"
)

// JournalFlusher writes buffered journal rows; *persist.Batcher implements it.
type JournalFlusher interface {
	Flush(ctx context.Context) error
	Pending() int
}

// PersistenceSystem flushes the journal every interval ticks. Phase 2 (Persist).
type PersistenceSystem struct {
	journal   JournalFlusher
	log       *zap.Logger
	tickCount int
	interval  int // flush every N ticks
	timeout   time.Duration
}

func NewPersistenceSystem(j JournalFlusher, intervalTicks int, log *zap.Logger) *PersistenceSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	return &PersistenceSystem{
		journal:  j,
		log:      log,
		interval: intervalTicks,
		timeout:  10 * time.Second,
	}
}

// IntervalTicks converts a flush interval to a tick count, at least 1.
func IntervalTicks(interval, tick time.Duration) int {
	if tick <= 0 {
		return 1
	}
	n := int(interval / tick)
	if n < 1 {
		return 1
	}
	return n
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.FlushNow()
}

// FlushNow writes everything pending immediately. Called for graceful
// shutdown. Failed rows stay buffered for the next attempt.
func (s *PersistenceSystem) FlushNow() {
	if s.journal.Pending() == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.journal.Flush(ctx); err != nil {
		s.log.Error("journal flush failed", zap.Int("pending", s.journal.Pending()), zap.Error(err))
	}
}
