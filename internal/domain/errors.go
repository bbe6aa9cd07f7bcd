package domain

import "errors"

// Sentinel errors shared by repositories, services and controllers.
var (
	ErrNotFound = errors.New("not found")

	// ErrNoStrategy means no WinnerSelector is registered for an event kind.
	// It is a configuration error and is never retried.
	ErrNoStrategy = errors.New("no winner selection strategy registered")

	// ErrInvalidState is returned when a transition is requested from a status that does not allow it.
	ErrInvalidState = errors.New("invalid event state")

	// ErrEmptyRoster is returned when a selection is requested for an event without entries.
	ErrEmptyRoster = errors.New("event has no participants")

	ErrInvalidWinnersCount = errors.New("winners count must not be negative")

	// ErrConcurrentModification is returned when the event row changed between read and transition.
	ErrConcurrentModification = errors.New("event was modified concurrently")
)
