package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"contestdraw/internal/domain"
)

type auditRepository struct {
	DB *sql.DB
}

func NewAuditRepository(db *sql.DB) domain.AuditRepository {
	return &auditRepository{DB: db}
}

// appendAuditAction inserts the audit event for event if missing, then the action and its
// participants. Rows are only ever inserted.
func appendAuditAction(ctx context.Context, q querier, event *domain.Event, action *domain.AuditAction) error {
	auditEventQuery := `
		WITH ins AS (
			INSERT INTO audit_events (id, event_id, title, kind, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (event_id) DO NOTHING
			RETURNING id
		)
		SELECT id FROM ins
		UNION ALL
		SELECT id FROM audit_events WHERE event_id = $2
		LIMIT 1
	`
	var auditEventID string
	err := q.QueryRowContext(ctx, auditEventQuery, uuid.NewString(), event.ID, event.Title, event.Kind, action.CreatedAt).
		Scan(&auditEventID)
	if err != nil {
		return err
	}

	actionID := uuid.NewString()
	actionQuery := `
		INSERT INTO audit_actions (id, audit_event_id, event_id, action_type, actor, details, seed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = q.ExecContext(ctx, actionQuery, actionID, auditEventID, event.ID, action.ActionType, action.Actor, action.Details, action.Seed, action.CreatedAt)
	if err != nil {
		return err
	}

	if n := len(action.Participants); n > 0 {
		ordinals := make([]int64, n)
		entryIDs := make([]string, n)
		names := make([]string, n)
		surnames := make([]string, n)
		emails := make([]string, n)
		phones := make([]string, n)
		positions := make([]int64, n)
		tickets := make([]int64, n)
		for i, p := range action.Participants {
			ordinals[i] = int64(i)
			entryIDs[i] = p.EntryID
			names[i] = p.Name
			surnames[i] = p.Surname
			emails[i] = p.Email
			phones[i] = p.Phone
			positions[i] = int64(p.Position)
			tickets[i] = int64(p.TicketNumber)
		}
		participantsQuery := `
			INSERT INTO audit_participants (audit_action_id, ordinal, entry_id, name, surname, email, phone, position, ticket_number)
			SELECT $1, v.ordinal, v.entry_id, v.name, v.surname, v.email, v.phone, v.position, v.ticket_number
			FROM unnest($2::int[], $3::text[], $4::text[], $5::text[], $6::text[], $7::text[], $8::int[], $9::int[])
				AS v(ordinal, entry_id, name, surname, email, phone, position, ticket_number)
		`
		_, err = q.ExecContext(ctx, participantsQuery, actionID,
			pq.Array(ordinals), pq.Array(entryIDs), pq.Array(names), pq.Array(surnames),
			pq.Array(emails), pq.Array(phones), pq.Array(positions), pq.Array(tickets))
		if err != nil {
			return err
		}
	}

	action.ID = actionID
	action.AuditEventID = auditEventID
	return nil
}

const auditActionColumns = `id, audit_event_id, event_id, action_type, actor, details, seed, created_at`

func scanAuditAction(row rowScanner) (*domain.AuditAction, error) {
	a := &domain.AuditAction{}
	err := row.Scan(&a.ID, &a.AuditEventID, &a.EventID, &a.ActionType, &a.Actor, &a.Details, &a.Seed, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *auditRepository) ListByEvent(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.AuditAction, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_actions WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*domain.AuditAction{}, 0, nil
	}

	query := `SELECT ` + auditActionColumns + `
		FROM audit_actions
		WHERE event_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT NULLIF($2::int, 0) OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	actions := make([]*domain.AuditAction, 0)
	byID := make(map[string]*domain.AuditAction)
	ids := make([]string, 0)
	for rows.Next() {
		a, err := scanAuditAction(rows)
		if err != nil {
			return nil, 0, err
		}
		actions = append(actions, a)
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return actions, total, nil
	}
	if err := r.loadParticipants(ctx, ids, byID); err != nil {
		return nil, 0, err
	}
	return actions, total, nil
}

func (r *auditRepository) loadParticipants(ctx context.Context, actionIDs []string, byID map[string]*domain.AuditAction) error {
	query := `
		SELECT audit_action_id, entry_id, name, surname, email, phone, position, ticket_number
		FROM audit_participants
		WHERE audit_action_id = ANY($1)
		ORDER BY audit_action_id, ordinal ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(actionIDs))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var actionID string
		var p domain.AuditParticipant
		if err := rows.Scan(&actionID, &p.EntryID, &p.Name, &p.Surname, &p.Email, &p.Phone, &p.Position, &p.TicketNumber); err != nil {
			return err
		}
		if a, ok := byID[actionID]; ok {
			a.Participants = append(a.Participants, p)
		}
	}
	return rows.Err()
}

func (r *auditRepository) GetAction(ctx context.Context, actionID string) (*domain.AuditAction, *domain.AuditEvent, error) {
	query := `
		SELECT a.id, a.audit_event_id, a.event_id, a.action_type, a.actor, a.details, a.seed, a.created_at,
			e.id, e.event_id, e.title, e.kind, e.created_at
		FROM audit_actions a
		JOIN audit_events e ON e.id = a.audit_event_id
		WHERE a.id = $1
	`
	a := &domain.AuditAction{}
	ev := &domain.AuditEvent{}
	err := r.DB.QueryRowContext(ctx, query, actionID).Scan(
		&a.ID, &a.AuditEventID, &a.EventID, &a.ActionType, &a.Actor, &a.Details, &a.Seed, &a.CreatedAt,
		&ev.ID, &ev.EventID, &ev.Title, &ev.Kind, &ev.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, err
	}
	if err := r.loadParticipants(ctx, []string{a.ID}, map[string]*domain.AuditAction{a.ID: a}); err != nil {
		return nil, nil, err
	}
	return a, ev, nil
}
