package services

import (
	"context"
	"fmt"
	"time"

	"contestdraw/internal/domain"
)

// AuditTrail builds and appends immutable audit actions.
type AuditTrail struct {
	now func() time.Time
}

// NewAuditTrail returns an AuditTrail stamping actions with the given clock (time.Now when nil).
func NewAuditTrail(now func() time.Time) *AuditTrail {
	if now == nil {
		now = time.Now
	}
	return &AuditTrail{now: now}
}

// Record appends one action for event through w. The snapshot keeps every evaluated
// entry in roster order, which together with seed reproduces a randomized selection.
func (a *AuditTrail) Record(ctx context.Context, w domain.AuditWriter, event *domain.Event, actor string, actionType domain.AuditActionType, details string, seed int64, snapshot []domain.Entry) (*domain.AuditAction, error) {
	action := &domain.AuditAction{
		EventID:      event.ID,
		ActionType:   actionType,
		Actor:        actor,
		Details:      details,
		Seed:         seed,
		CreatedAt:    a.now().UTC(),
		Participants: SnapshotParticipants(snapshot),
	}
	if err := w.AppendAuditAction(ctx, event, action); err != nil {
		return nil, fmt.Errorf("append audit action: %w", err)
	}
	return action, nil
}

// SnapshotParticipants converts entries to audit participants, keeping order.
func SnapshotParticipants(entries []domain.Entry) []domain.AuditParticipant {
	out := make([]domain.AuditParticipant, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.AuditParticipant{
			EntryID:      e.ID,
			Name:         e.Owner.Name,
			Surname:      e.Owner.Surname,
			Email:        e.Owner.Email,
			Phone:        e.Owner.Phone,
			Position:     e.Position,
			TicketNumber: e.TicketNumber,
		})
	}
	return out
}

// entriesFromSnapshot rebuilds a roster from an audit snapshot with positions cleared.
func entriesFromSnapshot(eventID string, participants []domain.AuditParticipant) []domain.Entry {
	out := make([]domain.Entry, 0, len(participants))
	for _, p := range participants {
		out = append(out, domain.Entry{
			ID:           p.EntryID,
			EventID:      eventID,
			Owner:        domain.Contact{Name: p.Name, Surname: p.Surname, Email: p.Email, Phone: p.Phone},
			TicketNumber: p.TicketNumber,
		})
	}
	return out
}

// selectionDetails summarises a selection for the audit action details column.
func selectionDetails(event *domain.Event, sel *domain.Selection) string {
	details := fmt.Sprintf("%s %q: %d winner(s) of %d participant(s), winners_count=%d",
		event.Kind, event.Title, len(sel.Winners), len(sel.Entries), event.WinnersCount)
	if sel.Note != "" {
		details += "; " + sel.Note
	}
	return details
}
