package persist

import (
	"context"
	"time"

	"github.com/mwhost/server/internal/hint"
	"github.com/mwhost/server/internal/netdata"
)

// CheckRow is one journaled location check.
type CheckRow struct {
	SessionID string
	Team      int
	Slot      int
	Location  int64
	CheckedAt time.Time
}

// HintRow is the latest state of one hint in the book of (Team, Slot).
// Payload is the codec-encoded announcement as clients received it.
type HintRow struct {
	SessionID string
	Team      int
	Slot      int
	Hint      hint.Hint
	Payload   string
	UpdatedAt time.Time
}

// SlotStateRow is the latest client status and hint spending of (Team, Slot).
type SlotStateRow struct {
	SessionID  string
	Team       int
	Slot       int
	Status     netdata.ClientStatus
	HintsSpent int
	UpdatedAt  time.Time
}

// Journal persists session progress so a restarted server can resume it.
// Writes are idempotent: recording the same check, hint or slot state twice
// keeps one row.
type Journal interface {
	RecordChecks(ctx context.Context, rows []CheckRow) error
	RecordHints(ctx context.Context, rows []HintRow) error
	LoadChecks(ctx context.Context, sessionID string) ([]CheckRow, error)
	LoadHints(ctx context.Context, sessionID string) ([]HintRow, error)
	RecordSlotStates(ctx context.Context, rows []SlotStateRow) error
	LoadSlotStates(ctx context.Context, sessionID string) ([]SlotStateRow, error)
	Close() error
}
