package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/mwhost/server/internal/netdata"
)

// PGJournal is the Postgres Journal.
type PGJournal struct {
	db  *DB
	log *zap.Logger
}

var _ Journal = (*PGJournal)(nil)

// OpenPGJournal connects and migrates the journal schema.
func OpenPGJournal(ctx context.Context, db *DB, log *zap.Logger) (*PGJournal, error) {
	if err := RunMigrations(ctx, db.Pool); err != nil {
		return nil, err
	}
	return &PGJournal{db: db, log: log}, nil
}

// RecordChecks writes a batch of checks in a single transaction.
func (j *PGJournal) RecordChecks(ctx context.Context, rows []CheckRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := j.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("checks begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(
			`INSERT INTO location_checks (session_id, team, slot, location, checked_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT DO NOTHING`,
			r.SessionID, r.Team, r.Slot, r.Location, r.CheckedAt,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("checks insert: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("checks commit: %w", err)
	}
	j.log.Debug("journaled checks", zap.Int("rows", len(rows)))
	return nil
}

// RecordHints upserts a batch of hints in a single transaction.
func (j *PGJournal) RecordHints(ctx context.Context, rows []HintRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := j.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("hints begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, r := range rows {
		h := r.Hint
		batch.Queue(
			`INSERT INTO hints (session_id, team, slot, receiving, finding, location, item, entrance,
			                    item_flags, found, status, payload, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			 ON CONFLICT (session_id, team, slot, receiving, finding, location, item, entrance)
			 DO UPDATE SET found = EXCLUDED.found, status = EXCLUDED.status,
			               payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
			r.SessionID, r.Team, r.Slot, h.Receiving, h.Finding, h.Location, h.Item, h.Entrance,
			int(h.ItemFlags), h.Found, int(h.Status), r.Payload, r.UpdatedAt,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("hints upsert: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("hints commit: %w", err)
	}
	j.log.Debug("journaled hints", zap.Int("rows", len(rows)))
	return nil
}

// LoadChecks returns every check of a session, oldest first.
func (j *PGJournal) LoadChecks(ctx context.Context, sessionID string) ([]CheckRow, error) {
	rows, err := j.db.Pool.Query(ctx,
		`SELECT team, slot, location, checked_at FROM location_checks
		 WHERE session_id = $1 ORDER BY checked_at, team, slot, location`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load checks: %w", err)
	}
	defer rows.Close()

	var out []CheckRow
	for rows.Next() {
		r := CheckRow{SessionID: sessionID}
		if err := rows.Scan(&r.Team, &r.Slot, &r.Location, &r.CheckedAt); err != nil {
			return nil, fmt.Errorf("scan check: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadHints returns every hint of a session.
func (j *PGJournal) LoadHints(ctx context.Context, sessionID string) ([]HintRow, error) {
	rows, err := j.db.Pool.Query(ctx,
		`SELECT team, slot, receiving, finding, location, item, entrance, item_flags, found, status, payload, updated_at
		 FROM hints WHERE session_id = $1 ORDER BY team, slot, updated_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load hints: %w", err)
	}
	defer rows.Close()

	var out []HintRow
	for rows.Next() {
		r := HintRow{SessionID: sessionID}
		var flags, status int
		h := &r.Hint
		if err := rows.Scan(&r.Team, &r.Slot, &h.Receiving, &h.Finding, &h.Location, &h.Item, &h.Entrance,
			&flags, &h.Found, &status, &r.Payload, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan hint: %w", err)
		}
		h.ItemFlags = netdata.ItemFlags(flags)
		h.Status = netdata.HintStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecordSlotStates upserts the latest state of each slot.
func (j *PGJournal) RecordSlotStates(ctx context.Context, rows []SlotStateRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := j.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("slot states begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(
			`INSERT INTO slot_states (session_id, team, slot, client_status, hints_spent, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (session_id, team, slot)
			 DO UPDATE SET client_status = EXCLUDED.client_status, hints_spent = EXCLUDED.hints_spent,
			               updated_at = EXCLUDED.updated_at`,
			r.SessionID, r.Team, r.Slot, int(r.Status), r.HintsSpent, r.UpdatedAt,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("slot states upsert: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("slot states commit: %w", err)
	}
	j.log.Debug("journaled slot states", zap.Int("rows", len(rows)))
	return nil
}

// LoadSlotStates returns the journaled state of every slot of a session.
func (j *PGJournal) LoadSlotStates(ctx context.Context, sessionID string) ([]SlotStateRow, error) {
	rows, err := j.db.Pool.Query(ctx,
		`SELECT team, slot, client_status, hints_spent, updated_at FROM slot_states
		 WHERE session_id = $1 ORDER BY team, slot`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load slot states: %w", err)
	}
	defer rows.Close()

	var out []SlotStateRow
	for rows.Next() {
		r := SlotStateRow{SessionID: sessionID}
		var status int
		if err := rows.Scan(&r.Team, &r.Slot, &status, &r.HintsSpent, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan slot state: %w", err)
		}
		r.Status = netdata.ClientStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (j *PGJournal) Close() error {
	j.db.Close()
	return nil
}
