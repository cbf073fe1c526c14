package persist

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mwhost/server/internal/netdata"
)

// SQLiteJournal is the embedded Journal for single-host deployments.
type SQLiteJournal struct {
	db  *sql.DB
	log *zap.Logger
}

var _ Journal = (*SQLiteJournal)(nil)

// OpenSQLiteJournal opens (creating if needed) the journal at path and
// migrates its schema.
func OpenSQLiteJournal(ctx context.Context, path string, log *zap.Logger) (*SQLiteJournal, error) {
	if path == "" {
		return nil, fmt.Errorf("empty journal path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, p := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("journal pragma: %w", err)
		}
	}
	if err := runSQLiteMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteJournal{db: db, log: log}, nil
}

func (j *SQLiteJournal) RecordChecks(ctx context.Context, rows []CheckRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("checks begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO location_checks (session_id, team, slot, location, checked_at)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("checks prepare: %w", err)
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.SessionID, r.Team, r.Slot, r.Location, r.CheckedAt.UnixNano()); err != nil {
			return fmt.Errorf("checks insert: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("checks commit: %w", err)
	}
	j.log.Debug("journaled checks", zap.Int("rows", len(rows)))
	return nil
}

func (j *SQLiteJournal) RecordHints(ctx context.Context, rows []HintRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("hints begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO hints (session_id, team, slot, receiving, finding, location, item, entrance,
		                    item_flags, found, status, payload, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (session_id, team, slot, receiving, finding, location, item, entrance)
		 DO UPDATE SET found = excluded.found, status = excluded.status,
		               payload = excluded.payload, updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("hints prepare: %w", err)
	}
	defer stmt.Close()
	for _, r := range rows {
		h := r.Hint
		if _, err := stmt.ExecContext(ctx,
			r.SessionID, r.Team, r.Slot, h.Receiving, h.Finding, h.Location, h.Item, h.Entrance,
			int(h.ItemFlags), h.Found, int(h.Status), r.Payload, r.UpdatedAt.UnixNano(),
		); err != nil {
			return fmt.Errorf("hints upsert: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("hints commit: %w", err)
	}
	j.log.Debug("journaled hints", zap.Int("rows", len(rows)))
	return nil
}

func (j *SQLiteJournal) LoadChecks(ctx context.Context, sessionID string) ([]CheckRow, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT team, slot, location, checked_at FROM location_checks
		 WHERE session_id = ? ORDER BY checked_at, team, slot, location`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load checks: %w", err)
	}
	defer rows.Close()

	var out []CheckRow
	for rows.Next() {
		r := CheckRow{SessionID: sessionID}
		var at int64
		if err := rows.Scan(&r.Team, &r.Slot, &r.Location, &at); err != nil {
			return nil, fmt.Errorf("scan check: %w", err)
		}
		r.CheckedAt = time.Unix(0, at).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) LoadHints(ctx context.Context, sessionID string) ([]HintRow, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT team, slot, receiving, finding, location, item, entrance, item_flags, found, status, payload, updated_at
		 FROM hints WHERE session_id = ? ORDER BY team, slot, updated_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load hints: %w", err)
	}
	defer rows.Close()

	var out []HintRow
	for rows.Next() {
		r := HintRow{SessionID: sessionID}
		var flags, status int
		var at int64
		h := &r.Hint
		if err := rows.Scan(&r.Team, &r.Slot, &h.Receiving, &h.Finding, &h.Location, &h.Item, &h.Entrance,
			&flags, &h.Found, &status, &r.Payload, &at); err != nil {
			return nil, fmt.Errorf("scan hint: %w", err)
		}
		h.ItemFlags = netdata.ItemFlags(flags)
		h.Status = netdata.HintStatus(status)
		r.UpdatedAt = time.Unix(0, at).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) RecordSlotStates(ctx context.Context, rows []SlotStateRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("slot states begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO slot_states (session_id, team, slot, client_status, hints_spent, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (session_id, team, slot)
		 DO UPDATE SET client_status = excluded.client_status, hints_spent = excluded.hints_spent,
		               updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("slot states prepare: %w", err)
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.SessionID, r.Team, r.Slot, int(r.Status), r.HintsSpent, r.UpdatedAt.UnixNano()); err != nil {
			return fmt.Errorf("slot states upsert: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("slot states commit: %w", err)
	}
	j.log.Debug("journaled slot states", zap.Int("rows", len(rows)))
	return nil
}

func (j *SQLiteJournal) LoadSlotStates(ctx context.Context, sessionID string) ([]SlotStateRow, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT team, slot, client_status, hints_spent, updated_at FROM slot_states
		 WHERE session_id = ? ORDER BY team, slot`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load slot states: %w", err)
	}
	defer rows.Close()

	var out []SlotStateRow
	for rows.Next() {
		r := SlotStateRow{SessionID: sessionID}
		var status int
		var at int64
		if err := rows.Scan(&r.Team, &r.Slot, &status, &r.HintsSpent, &at); err != nil {
			return nil, fmt.Errorf("scan slot state: %w", err)
		}
		r.Status = netdata.ClientStatus(status)
		r.UpdatedAt = time.Unix(0, at).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
