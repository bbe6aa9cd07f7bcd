package domain

import (
	"context"
	"time"
)

// FinalizationResult is returned by a successful finalization.
// swagger:model FinalizationResult
type FinalizationResult struct {
	Event         *Event  `json:"event"`
	Seed          int64   `json:"seed"`
	Winners       []Entry `json:"winners"`
	Note          string  `json:"note,omitempty"`
	AuditActionID string  `json:"audit_action_id"`
}

// ReplayResult reports whether re-running a recorded selection reproduces it.
// swagger:model ReplayResult
type ReplayResult struct {
	ActionID   string             `json:"action_id"`
	Seed       int64              `json:"seed"`
	Matches    bool               `json:"matches"`
	Recorded   []AuditParticipant `json:"recorded"`
	Reproduced []AuditParticipant `json:"reproduced"`
}

// FinalizationService drives the OPEN -> CLOSED -> FINALIZED state machine.
type FinalizationService interface {
	// Close moves an OPEN event to CLOSED. It returns false without error when the event is not OPEN.
	Close(ctx context.Context, eventID string) (bool, error)
	// Finalize selects winners of a CLOSED event and moves it to FINALIZED.
	Finalize(ctx context.Context, eventID, actor string) (*FinalizationResult, error)
	// CloseExpired closes every OPEN event whose end date is not after now and returns how many were closed.
	CloseExpired(ctx context.Context, now time.Time) (int, error)
	AuditTrail(ctx context.Context, eventID string, params PaginationParams) ([]*AuditAction, int, error)
	// Replay re-runs the selection recorded by an audit action from its seed and snapshot.
	Replay(ctx context.Context, actionID string) (*ReplayResult, error)
}
