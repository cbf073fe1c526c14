package persist

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mwhost/server/internal/codec"
	"github.com/mwhost/server/internal/core/event"
	"github.com/mwhost/server/internal/hint"
	"github.com/mwhost/server/internal/netdata"
	"github.com/mwhost/server/internal/world"
)

type hintRowKey struct {
	session string
	book    world.TeamSlot
	hint    hint.Key
}

type slotRowKey struct {
	session string
	slot    world.TeamSlot
}

// Batcher buffers session changes from the event bus and writes them to the
// journal when flushed. Only the latest state of each hint and each slot is
// kept.
type Batcher struct {
	journal   Journal
	checks    []CheckRow
	hints     map[hintRowKey]HintRow
	hintOrder []hintRowKey
	slots     map[slotRowKey]SlotStateRow
	slotOrder []slotRowKey
	now       func() time.Time
	log       *zap.Logger
}

func NewBatcher(j Journal, log *zap.Logger) *Batcher {
	return &Batcher{
		journal: j,
		hints:   make(map[hintRowKey]HintRow),
		slots:   make(map[slotRowKey]SlotStateRow),
		now:     time.Now,
		log:     log,
	}
}

// Attach subscribes the batcher to the session events it journals.
func (b *Batcher) Attach(bus *event.Bus) {
	event.Subscribe(bus, b.onLocationsChecked)
	event.Subscribe(bus, b.onHintUpdated)
	event.Subscribe(bus, b.onSlotStateChanged)
}

func (b *Batcher) onLocationsChecked(e event.LocationsChecked) {
	at := b.now()
	for _, loc := range e.Locations {
		b.checks = append(b.checks, CheckRow{
			SessionID: e.SessionID,
			Team:      e.Team,
			Slot:      e.Slot,
			Location:  loc,
			CheckedAt: at,
		})
	}
}

func (b *Batcher) onHintUpdated(e event.HintUpdated) {
	payload, err := codec.Encode(e.Announcement.Payload())
	if err != nil {
		b.log.Warn("encode hint payload", zap.Error(err))
	}
	k := hintRowKey{session: e.SessionID, book: world.TeamSlot{Team: e.Team, Slot: e.Slot}, hint: e.Hint.Key()}
	if _, ok := b.hints[k]; !ok {
		b.hintOrder = append(b.hintOrder, k)
	}
	b.hints[k] = HintRow{
		SessionID: e.SessionID,
		Team:      e.Team,
		Slot:      e.Slot,
		Hint:      e.Hint,
		Payload:   payload,
		UpdatedAt: b.now(),
	}
}

func (b *Batcher) onSlotStateChanged(e event.SlotStateChanged) {
	k := slotRowKey{session: e.SessionID, slot: world.TeamSlot{Team: e.Team, Slot: e.Slot}}
	if _, ok := b.slots[k]; !ok {
		b.slotOrder = append(b.slotOrder, k)
	}
	b.slots[k] = SlotStateRow{
		SessionID:  e.SessionID,
		Team:       e.Team,
		Slot:       e.Slot,
		Status:     e.Status,
		HintsSpent: e.HintsSpent,
		UpdatedAt:  b.now(),
	}
}

// Pending is the number of rows waiting for the next Flush.
func (b *Batcher) Pending() int {
	return len(b.checks) + len(b.hintOrder) + len(b.slotOrder)
}

// Flush writes buffered rows. Rows that failed to write stay buffered and
// are retried by the next Flush.
func (b *Batcher) Flush(ctx context.Context) error {
	if len(b.checks) > 0 {
		if err := b.journal.RecordChecks(ctx, b.checks); err != nil {
			return fmt.Errorf("flush checks: %w", err)
		}
		b.checks = b.checks[:0]
	}
	if len(b.hintOrder) > 0 {
		rows := make([]HintRow, 0, len(b.hintOrder))
		for _, k := range b.hintOrder {
			rows = append(rows, b.hints[k])
		}
		if err := b.journal.RecordHints(ctx, rows); err != nil {
			return fmt.Errorf("flush hints: %w", err)
		}
		clear(b.hints)
		b.hintOrder = b.hintOrder[:0]
	}
	if len(b.slotOrder) > 0 {
		rows := make([]SlotStateRow, 0, len(b.slotOrder))
		for _, k := range b.slotOrder {
			rows = append(rows, b.slots[k])
		}
		if err := b.journal.RecordSlotStates(ctx, rows); err != nil {
			return fmt.Errorf("flush slot states: %w", err)
		}
		clear(b.slots)
		b.slotOrder = b.slotOrder[:0]
	}
	return nil
}

// Restorer receives journaled state on startup.
type Restorer interface {
	Restore(team, slot int, ids []int64)
	RestoreHint(team, slot int, h hint.Hint)
	RestoreSlotState(team, slot int, status netdata.ClientStatus, hintsSpent int)
}

// ReplayStats counts the rows Replay handed to the restorer.
type ReplayStats struct {
	Checks int
	Hints  int
	Slots  int
}

// Replay loads a session's journal into r. Checks go first so restored
// hints see their locations as checked.
func Replay(ctx context.Context, j Journal, sessionID string, r Restorer) (ReplayStats, error) {
	var stats ReplayStats
	rows, err := j.LoadChecks(ctx, sessionID)
	if err != nil {
		return stats, err
	}
	byTeamSlot := make(map[world.TeamSlot][]int64)
	var order []world.TeamSlot
	for _, row := range rows {
		k := world.TeamSlot{Team: row.Team, Slot: row.Slot}
		if _, ok := byTeamSlot[k]; !ok {
			order = append(order, k)
		}
		byTeamSlot[k] = append(byTeamSlot[k], row.Location)
	}
	for _, k := range order {
		r.Restore(k.Team, k.Slot, byTeamSlot[k])
	}
	stats.Checks = len(rows)

	hintRows, err := j.LoadHints(ctx, sessionID)
	if err != nil {
		return stats, err
	}
	for _, row := range hintRows {
		r.RestoreHint(row.Team, row.Slot, row.Hint)
	}
	stats.Hints = len(hintRows)

	slotRows, err := j.LoadSlotStates(ctx, sessionID)
	if err != nil {
		return stats, err
	}
	for _, row := range slotRows {
		r.RestoreSlotState(row.Team, row.Slot, row.Status, row.HintsSpent)
	}
	stats.Slots = len(slotRows)
	return stats, nil
}
