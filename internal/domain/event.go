package domain

import (
	"context"
	"fmt"
	"time"
)

// EventKind selects the winner selection algorithm for an event.
type EventKind string

const (
	KindGiveaway        EventKind = "giveaway"
	KindRaffle          EventKind = "raffle"
	KindGuessingContest EventKind = "guessing_contest"
)

// Kinds lists every known event kind.
func Kinds() []EventKind {
	return []EventKind{KindGiveaway, KindRaffle, KindGuessingContest}
}

// Valid reports whether k is one of the known kinds.
func (k EventKind) Valid() bool {
	switch k {
	case KindGiveaway, KindRaffle, KindGuessingContest:
		return true
	}
	return false
}

// Randomized reports whether selections for this kind depend on a seed.
func (k EventKind) Randomized() bool {
	switch k {
	case KindGiveaway, KindRaffle:
		return true
	case KindGuessingContest:
		return false
	}
	return false
}

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	StatusOpen      EventStatus = "OPEN"
	StatusClosed    EventStatus = "CLOSED"
	StatusFinalized EventStatus = "FINALIZED"
	StatusBlocked   EventStatus = "BLOCKED"
)

// Terminal reports whether no further transition is allowed from s.
func (s EventStatus) Terminal() bool {
	return s == StatusFinalized || s == StatusBlocked
}

// CanTransition reports whether the state machine allows s -> to.
// OPEN -> CLOSED -> FINALIZED; BLOCKED is reachable from any non-terminal state.
func (s EventStatus) CanTransition(to EventStatus) bool {
	if s.Terminal() {
		return false
	}
	switch to {
	case StatusClosed:
		return s == StatusOpen
	case StatusFinalized:
		return s == StatusClosed
	case StatusBlocked:
		return true
	}
	return false
}

// Event represents a giveaway, raffle or guessing contest
// swagger:model Event
type Event struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	CreatorID    string      `json:"creator_id"`
	Category     string      `json:"category"`
	Kind         EventKind   `json:"kind"`
	Status       EventStatus `json:"status"`
	WinnersCount int         `json:"winners_count"`
	// TargetNumber is the number participants must guess. Only used by guessing contests.
	TargetNumber int       `json:"target_number,omitempty"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewEvent returns a new open Event with the given fields. ID is typically set by the repository on create.
func NewEvent(title, creatorID string, kind EventKind, winnersCount int, startDate, endDate time.Time) *Event {
	return &Event{
		Title:        title,
		CreatorID:    creatorID,
		Kind:         kind,
		Status:       StatusOpen,
		WinnersCount: winnersCount,
		StartDate:    startDate,
		EndDate:      endDate,
	}
}

// Validate checks the invariants a selection run depends on.
func (e *Event) Validate() error {
	if e.WinnersCount < 0 {
		return ErrInvalidWinnersCount
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: kind %q", ErrNoStrategy, e.Kind)
	}
	return nil
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*Event, error)
	// ListDueForClose returns OPEN events whose end date is not after now.
	ListDueForClose(ctx context.Context, now time.Time) ([]*Event, error)
	// TransitionStatus moves the event from one status to another only if it is still in from.
	// It reports false when no row matched.
	TransitionStatus(ctx context.Context, id string, from, to EventStatus) (bool, error)
	BeginFinalization(ctx context.Context) (FinalizationTx, error)
}

// FinalizationTx is the single transaction boundary of a finalization: positions,
// status and audit record are committed together or not at all.
type FinalizationTx interface {
	AuditWriter
	// LockEvent reads the event row with a row lock held until commit or rollback.
	LockEvent(ctx context.Context, id string) (*Event, error)
	ListEntries(ctx context.Context, event *Event) ([]Entry, error)
	SaveEntryPositions(ctx context.Context, kind EventKind, entries []Entry) error
	// FinalizeEvent moves a CLOSED event at the given version to FINALIZED.
	FinalizeEvent(ctx context.Context, id string, version int) error
	Commit() error
	Rollback() error
}
