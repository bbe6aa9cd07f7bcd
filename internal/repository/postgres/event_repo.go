package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"contestdraw/internal/domain"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

const eventColumns = `id, title, creator_id, category, kind, status, winners_count, target_number, start_date, end_date, version, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var category sql.NullString
	var target sql.NullInt64
	err := row.Scan(
		&e.ID, &e.Title, &e.CreatorID, &category, &e.Kind, &e.Status, &e.WinnersCount, &target,
		&e.StartDate, &e.EndDate, &e.Version, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if category.Valid {
		e.Category = category.String
	}
	if target.Valid {
		e.TargetNumber = int(target.Int64)
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	return scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) ListDueForClose(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE status = $1 AND end_date <= $2
		ORDER BY end_date ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, domain.StatusOpen, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) TransitionStatus(ctx context.Context, id string, from, to domain.EventStatus) (bool, error) {
	if !from.CanTransition(to) {
		return false, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidState, from, to)
	}
	query := `
		UPDATE events SET status = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`
	result, err := r.DB.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *eventRepository) BeginFinalization(ctx context.Context) (domain.FinalizationTx, error) {
	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	return &finalizationTx{tx: tx}, nil
}
