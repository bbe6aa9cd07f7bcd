package services

import (
	"fmt"

	"contestdraw/internal/domain"
)

// SelectorRegistry maps an event kind to its winner selector.
type SelectorRegistry struct {
	selectors []domain.WinnerSelector
}

// DefaultSelectors returns one selector per known event kind.
func DefaultSelectors() []domain.WinnerSelector {
	return []domain.WinnerSelector{
		NewGiveawaySelector(),
		NewRaffleSelector(),
		NewGuessingContestSelector(),
	}
}

// NewSelectorRegistry returns a registry over the given selectors. Lookup is first match.
func NewSelectorRegistry(selectors ...domain.WinnerSelector) *SelectorRegistry {
	return &SelectorRegistry{selectors: selectors}
}

// Get returns the selector registered for kind, or an error wrapping domain.ErrNoStrategy.
func (r *SelectorRegistry) Get(kind domain.EventKind) (domain.WinnerSelector, error) {
	for _, s := range r.selectors {
		if s.Kind() == kind {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: no strategy for kind %q", domain.ErrNoStrategy, kind)
}

// CheckComplete returns an error naming the first known kind without a selector.
// main calls it at startup so a missing registration fails before serving traffic.
func (r *SelectorRegistry) CheckComplete() error {
	for _, k := range domain.Kinds() {
		if _, err := r.Get(k); err != nil {
			return err
		}
	}
	return nil
}
