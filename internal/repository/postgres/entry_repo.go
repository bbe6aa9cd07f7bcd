package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"contestdraw/internal/domain"
)

type entryRepository struct {
	DB *sql.DB
}

func NewEntryRepository(db *sql.DB) domain.EntryRepository {
	return &entryRepository{DB: db}
}

// entryTable returns the table holding entries of the given kind.
func entryTable(kind domain.EventKind) (string, error) {
	switch kind {
	case domain.KindGiveaway:
		return "giveaway_entries", nil
	case domain.KindRaffle:
		return "raffle_tickets", nil
	case domain.KindGuessingContest:
		return "contest_attempts", nil
	}
	return "", fmt.Errorf("%w: no entry table for kind %q", domain.ErrNoStrategy, kind)
}

const (
	listGiveawayEntriesQuery = `
		SELECT g.id, g.event_id, g.user_id, g.position,
			u.name, u.last_name, u.email, u.phone
		FROM giveaway_entries g
		JOIN users u ON u.id = g.user_id
		WHERE g.event_id = $1
		ORDER BY g.created_at ASC, g.id ASC
	`
	listRaffleTicketsQuery = `
		SELECT t.id, t.event_id, t.owner_id, t.position, t.ticket_number,
			u.name, u.last_name, u.email, u.phone
		FROM raffle_tickets t
		JOIN users u ON u.id = t.owner_id
		WHERE t.event_id = $1
		ORDER BY t.ticket_number ASC
	`
	listContestAttemptsQuery = `
		SELECT a.id, a.event_id, a.user_id, a.position, a.attempted_numbers, a.attempt_count,
			a.duration_ms, a.has_won, a.submitted_at,
			u.name, u.last_name, u.email, u.phone
		FROM contest_attempts a
		JOIN users u ON u.id = a.user_id
		WHERE a.event_id = $1
		ORDER BY a.submitted_at ASC, a.id ASC
	`
)

// listEntries loads the roster of event in a stable order, which makes the seeded
// shuffle reproducible from the same roster.
func listEntries(ctx context.Context, q querier, event *domain.Event) ([]domain.Entry, error) {
	var query string
	switch event.Kind {
	case domain.KindGiveaway:
		query = listGiveawayEntriesQuery
	case domain.KindRaffle:
		query = listRaffleTicketsQuery
	case domain.KindGuessingContest:
		query = listContestAttemptsQuery
	default:
		_, err := entryTable(event.Kind)
		return nil, err
	}

	rows, err := q.QueryContext(ctx, query, event.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]domain.Entry, 0)
	for rows.Next() {
		var e domain.Entry
		var surname, phone sql.NullString
		switch event.Kind {
		case domain.KindGiveaway:
			err = rows.Scan(&e.ID, &e.EventID, &e.UserID, &e.Position,
				&e.Owner.Name, &surname, &e.Owner.Email, &phone)
		case domain.KindRaffle:
			err = rows.Scan(&e.ID, &e.EventID, &e.UserID, &e.Position, &e.TicketNumber,
				&e.Owner.Name, &surname, &e.Owner.Email, &phone)
		case domain.KindGuessingContest:
			var durationMs int64
			err = rows.Scan(&e.ID, &e.EventID, &e.UserID, &e.Position, &e.Attempts, &e.AttemptCount,
				&durationMs, &e.HasWon, &e.SubmittedAt,
				&e.Owner.Name, &surname, &e.Owner.Email, &phone)
			e.Duration = time.Duration(durationMs) * time.Millisecond
		}
		if err != nil {
			return nil, err
		}
		e.Owner.Surname = surname.String
		e.Owner.Phone = phone.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *entryRepository) CountByEvent(ctx context.Context, event *domain.Event) (int, error) {
	table, err := entryTable(event.Kind)
	if err != nil {
		return 0, err
	}
	var n int
	query := `SELECT COUNT(*) FROM ` + table + ` WHERE event_id = $1`
	if err := r.DB.QueryRowContext(ctx, query, event.ID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
