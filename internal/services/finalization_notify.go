package services

import (
	"context"

	"contestdraw/internal/domain"
)

// The helpers below run after the state change is durable. They only log on failure.

func (s *finalizationService) notifyClosed(ctx context.Context, event *domain.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.contextTimeout)
	defer cancel()

	creator, ok := s.creatorContact(ctx, event)
	if !ok {
		return
	}
	count, err := s.entryRepo.CountByEvent(ctx, event)
	if err != nil {
		s.logger.WarnContext(ctx, "count participants for close summary", "event_id", event.ID, "err", err)
		count = 0
	}
	s.queue.Enqueue(creator, domain.Message{
		Kind:             domain.MessageEventClosed,
		EventID:          event.ID,
		EventTitle:       event.Title,
		Category:         event.Category,
		EndDate:          event.EndDate,
		ParticipantCount: count,
	})
}

func (s *finalizationService) notifyFinalized(ctx context.Context, event *domain.Event, sel *domain.Selection) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.contextTimeout)
	defer cancel()

	winners := make([]domain.Contact, 0, len(sel.Winners))
	for _, w := range sel.Winners {
		winners = append(winners, w.Owner)
		s.queue.Enqueue(w.Owner, domain.Message{
			Kind:         domain.MessageWinner,
			EventID:      event.ID,
			EventTitle:   event.Title,
			Category:     event.Category,
			Position:     w.Position,
			TicketNumber: w.TicketNumber,
		})
	}

	creator, ok := s.creatorContact(ctx, event)
	if !ok {
		return
	}
	s.queue.Enqueue(creator, domain.Message{
		Kind:             domain.MessageEventFinalized,
		EventID:          event.ID,
		EventTitle:       event.Title,
		Category:         event.Category,
		EndDate:          event.EndDate,
		ParticipantCount: len(sel.Entries),
		Winners:          winners,
		Note:             sel.Note,
	})
}

func (s *finalizationService) creatorContact(ctx context.Context, event *domain.Event) (domain.Contact, bool) {
	if event.CreatorID == "" {
		return domain.Contact{}, false
	}
	creator, err := s.userRepo.GetByID(ctx, event.CreatorID)
	if err != nil {
		s.logger.WarnContext(ctx, "load event creator for notification", "event_id", event.ID, "creator_id", event.CreatorID, "err", err)
		return domain.Contact{}, false
	}
	return creator.Contact(), true
}
