package domain

import (
	"context"
	"time"
)

// Contact identifies the person behind an entry, for notifications and audit snapshots.
type Contact struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// FullName returns name and surname joined by a space.
func (c Contact) FullName() string {
	if c.Surname == "" {
		return c.Name
	}
	if c.Name == "" {
		return c.Surname
	}
	return c.Name + " " + c.Surname
}

// Entry is one participant record of an event. Which fields are meaningful depends on the event kind:
// giveaway entries are (user, event); raffle entries add a ticket number; guessing contest
// entries add the attempt log, duration and submission time.
// Position is 0 for non-winners and 1..n for ranked winners.
// swagger:model Entry
type Entry struct {
	ID       string  `json:"id"`
	EventID  string  `json:"event_id"`
	UserID   string  `json:"user_id"`
	Owner    Contact `json:"owner"`
	Position int     `json:"position"`

	TicketNumber int `json:"ticket_number,omitempty"`

	// Attempts is the comma separated log of numbers tried, e.g. "3,5,7".
	Attempts     string        `json:"attempts,omitempty"`
	AttemptCount int           `json:"attempt_count,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	HasWon       bool          `json:"has_won,omitempty"`
	SubmittedAt  time.Time     `json:"submitted_at,omitzero"`
}

// IsWinner reports whether the entry holds a rank.
func (e Entry) IsWinner() bool {
	return e.Position > 0
}

// CloneEntries returns a shallow copy of entries so selections never mutate their input.
func CloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// EntryRepository reads participant counts outside a finalization. The roster itself is
// loaded through FinalizationTx.ListEntries so it is read under the event row lock.
type EntryRepository interface {
	CountByEvent(ctx context.Context, event *Event) (int, error)
}
