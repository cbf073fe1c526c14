package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/mwhost/server/internal/core/system"
)

// LineHandler executes one console line and reports whether the server
// should keep running. *command.Console implements it.
type LineHandler interface {
	Handle(line string) bool
}

// InputSystem drains queued console lines into the handler. Phase 0 (Input).
type InputSystem struct {
	lines      <-chan string
	handler    LineHandler
	maxPerTick int
	quit       bool
	log        *zap.Logger
}

func NewInputSystem(lines <-chan string, handler LineHandler, maxPerTick int, log *zap.Logger) *InputSystem {
	if maxPerTick <= 0 {
		maxPerTick = 16
	}
	return &InputSystem{
		lines:      lines,
		handler:    handler,
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	for i := 0; i < s.maxPerTick && !s.quit; i++ {
		select {
		case line, ok := <-s.lines:
			if !ok {
				// input closed; keep serving until signalled
				s.log.Info("console input closed")
				s.lines = nil
				return
			}
			if !s.handler.Handle(line) {
				s.quit = true
			}
		default:
			return
		}
	}
}

// Quit reports whether a console command asked the server to stop.
func (s *InputSystem) Quit() bool { return s.quit }
