package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// MessageKind names the notification template to use.
type MessageKind string

const (
	MessageEventClosed    MessageKind = "event_closed"
	MessageWinner         MessageKind = "winner"
	MessageEventFinalized MessageKind = "event_finalized"
)

// Message is the content of one notification. Only the fields relevant to Kind are set.
type Message struct {
	Kind             MessageKind
	EventID          string
	EventTitle       string
	Category         string
	EndDate          time.Time
	ParticipantCount int
	Position         int
	TicketNumber     int
	Winners          []Contact
	Note             string
}

// Notifier informs a recipient about an event outcome. Delivery is best-effort.
type Notifier interface {
	Notify(ctx context.Context, to Contact, msg Message) error
}

// NotificationQueue hands notifications to a post-commit delivery stage.
// Enqueue never blocks; it reports false when the notification was dropped.
type NotificationQueue interface {
	Enqueue(to Contact, msg Message) bool
}
