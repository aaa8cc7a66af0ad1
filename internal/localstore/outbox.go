package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Outbox operation kinds, matched by the sync dispatcher to server endpoints.
const (
	KindSession = "session"
	KindRecords = "records"
	KindCursor  = "cursor"
	KindMission = "mission"
)

// PendingOp is one queued remote operation.
type PendingOp struct {
	ID        int64
	Kind      string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// Pending returns queued operations oldest first, up to limit (0 = all).
func (s *Store) Pending(ctx context.Context, limit int) ([]PendingOp, error) {
	query := `SELECT id, kind, payload, created_at FROM outbox ORDER BY id ASC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying outbox: %w", err)
	}
	defer rows.Close()

	var ops []PendingOp
	for rows.Next() {
		var op PendingOp
		var payload string
		if err := rows.Scan(&op.ID, &op.Kind, &payload, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning outbox row: %w", err)
		}
		op.Payload = json.RawMessage(payload)
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// MarkDone removes a confirmed operation from the queue.
func (s *Store) MarkDone(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM outbox WHERE id = ?`, id); err != nil {
		return fmt.Errorf("removing outbox row %d: %w", id, err)
	}
	return nil
}

// PendingCount returns the number of operations awaiting sync.
func (s *Store) PendingCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outbox`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting outbox: %w", err)
	}
	return n, nil
}

// enqueueTx appends an operation to the outbox inside an open transaction so
// the queue entry commits atomically with the local write it mirrors.
func enqueueTx(ctx context.Context, tx *sql.Tx, kind string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", kind, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO outbox (kind, payload) VALUES (?, ?)`, kind, string(payload)); err != nil {
		return fmt.Errorf("enqueueing %s: %w", kind, err)
	}
	return nil
}
