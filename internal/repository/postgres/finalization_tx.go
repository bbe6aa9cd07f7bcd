package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"contestdraw/internal/domain"
)

// finalizationTx implements domain.FinalizationTx on a *sql.Tx.
type finalizationTx struct {
	tx *sql.Tx
}

func (t *finalizationTx) LockEvent(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
		FOR UPDATE
	`
	return scanEvent(t.tx.QueryRowContext(ctx, query, id))
}

func (t *finalizationTx) ListEntries(ctx context.Context, event *domain.Event) ([]domain.Entry, error) {
	return listEntries(ctx, t.tx, event)
}

// SaveEntryPositions writes every entry's position (and has_won for contests) in one
// statement. The update must touch exactly len(entries) rows.
func (t *finalizationTx) SaveEntryPositions(ctx context.Context, kind domain.EventKind, entries []domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	table, err := entryTable(kind)
	if err != nil {
		return err
	}
	eventID := entries[0].EventID
	ids := make([]string, len(entries))
	positions := make([]int64, len(entries))
	won := make([]bool, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		positions[i] = int64(e.Position)
		won[i] = e.HasWon
	}

	var result sql.Result
	if kind == domain.KindGuessingContest {
		query := `
			UPDATE contest_attempts AS a
			SET position = v.position, has_won = v.has_won
			FROM unnest($1::uuid[], $2::int[], $3::bool[]) AS v(id, position, has_won)
			WHERE a.id = v.id AND a.event_id = $4
		`
		result, err = t.tx.ExecContext(ctx, query, pq.Array(ids), pq.Array(positions), pq.Array(won), eventID)
	} else {
		query := fmt.Sprintf(`
			UPDATE %s AS e
			SET position = v.position
			FROM unnest($1::uuid[], $2::int[]) AS v(id, position)
			WHERE e.id = v.id AND e.event_id = $3
		`, table)
		result, err = t.tx.ExecContext(ctx, query, pq.Array(ids), pq.Array(positions), eventID)
	}
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if int(n) != len(entries) {
		return fmt.Errorf("%w: updated %d of %d entries", domain.ErrConcurrentModification, n, len(entries))
	}
	return nil
}

func (t *finalizationTx) FinalizeEvent(ctx context.Context, id string, version int) error {
	query := `
		UPDATE events SET status = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND status = $3 AND version = $4
	`
	result, err := t.tx.ExecContext(ctx, query, domain.StatusFinalized, id, domain.StatusClosed, version)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrConcurrentModification
	}
	return nil
}

func (t *finalizationTx) AppendAuditAction(ctx context.Context, event *domain.Event, action *domain.AuditAction) error {
	return appendAuditAction(ctx, t.tx, event, action)
}

func (t *finalizationTx) Commit() error {
	return t.tx.Commit()
}

func (t *finalizationTx) Rollback() error {
	err := t.tx.Rollback()
	if err == sql.ErrTxDone {
		return nil
	}
	return err
}
