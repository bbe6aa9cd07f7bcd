package domain

import (
	"context"
	"time"
)

// AuditActionType names what an audit action records.
type AuditActionType string

const (
	AuditEventExecuted AuditActionType = "EVENT_EXECUTED"
)

// AuditEvent mirrors one platform event and outlives its mutable fields.
// swagger:model AuditEvent
type AuditEvent struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Title     string    `json:"title"`
	Kind      EventKind `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditAction is an immutable record of one selection run.
// swagger:model AuditAction
type AuditAction struct {
	ID           string             `json:"id"`
	AuditEventID string             `json:"audit_event_id"`
	EventID      string             `json:"event_id"`
	ActionType   AuditActionType    `json:"action_type"`
	Actor        string             `json:"actor"`
	Details      string             `json:"details"`
	Seed         int64              `json:"seed"`
	CreatedAt    time.Time          `json:"created_at"`
	Participants []AuditParticipant `json:"participants"`
}

// AuditParticipant is the snapshot of one evaluated entry at selection time.
// swagger:model AuditParticipant
type AuditParticipant struct {
	EntryID      string `json:"entry_id"`
	Name         string `json:"name"`
	Surname      string `json:"surname"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Position     int    `json:"position"`
	TicketNumber int    `json:"ticket_number,omitempty"`
}

// AuditWriter appends audit actions. Implementations never update existing rows.
type AuditWriter interface {
	// AppendAuditAction stores the action and its participants, creating the AuditEvent for
	// event on first use. It fills in action.ID and action.AuditEventID.
	AppendAuditAction(ctx context.Context, event *Event, action *AuditAction) error
}

// AuditRepository reads the audit trail.
type AuditRepository interface {
	ListByEvent(ctx context.Context, eventID string, params PaginationParams) ([]*AuditAction, int, error)
	GetAction(ctx context.Context, actionID string) (*AuditAction, *AuditEvent, error)
}
