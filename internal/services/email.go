package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"contestdraw/internal/domain"
)

// errNoRecipient is returned when a contact has no email address to notify.
var errNoRecipient = errors.New("recipient has no email address")

type emailNotifier struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailNotifier returns a Notifier that renders the template named after the message
// kind and sends it with the given Mailer.
func NewEmailNotifier(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.Notifier {
	return &emailNotifier{mailer: mailer, renderer: renderer, logger: logger}
}

// notificationEmailData is the data passed to notification templates.
type notificationEmailData struct {
	RecipientName    string
	EventID          string
	EventTitle       string
	Category         string
	EndDate          string
	ParticipantCount int
	Position         int
	TicketNumber     int
	Winners          []domain.Contact
	Note             string
}

func (s *emailNotifier) Notify(ctx context.Context, to domain.Contact, msg domain.Message) error {
	if to.Email == "" {
		return errNoRecipient
	}
	data := notificationEmailData{
		RecipientName:    to.FullName(),
		EventID:          msg.EventID,
		EventTitle:       msg.EventTitle,
		Category:         msg.Category,
		ParticipantCount: msg.ParticipantCount,
		Position:         msg.Position,
		TicketNumber:     msg.TicketNumber,
		Winners:          msg.Winners,
		Note:             msg.Note,
	}
	if !msg.EndDate.IsZero() {
		data.EndDate = msg.EndDate.UTC().Format(time.RFC1123)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(string(msg.Kind), data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", msg.Kind, err)
	}
	if err := s.mailer.Send(ctx, to.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", msg.Kind, err)
	}
	s.logger.InfoContext(ctx, "notification email sent", "kind", msg.Kind, "event_id", msg.EventID, "to", to.Email)
	return nil
}
