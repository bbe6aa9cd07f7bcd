package services

import (
	"fmt"
	"strings"

	"contestdraw/internal/domain"
)

// raffleSelector draws a uniform random subset of numbered tickets.
type raffleSelector struct{}

// NewRaffleSelector returns the selector for raffle events.
func NewRaffleSelector() domain.WinnerSelector {
	return raffleSelector{}
}

func (raffleSelector) Kind() domain.EventKind { return domain.KindRaffle }

// SelectWinners ranks tickets exactly like a giveaway ranks users. The note lists the
// winning tickets with their owners so the audit record names them.
func (raffleSelector) SelectWinners(event *domain.Event, tickets []domain.Entry, seed int64) (*domain.Selection, error) {
	ranked, err := shuffleAndRank(event, tickets, seed)
	if err != nil {
		return nil, err
	}
	sel := domain.NewSelection(domain.KindRaffle, seed, ranked)
	sel.Note = describeTickets(sel.Winners)
	return sel, nil
}

func describeTickets(winners []domain.Entry) string {
	if len(winners) == 0 {
		return domain.NoWinnersNote
	}
	parts := make([]string, 0, len(winners))
	for _, w := range winners {
		parts = append(parts, fmt.Sprintf("#%d ticket %d (%s)", w.Position, w.TicketNumber, w.Owner.FullName()))
	}
	return strings.Join(parts, "; ")
}
