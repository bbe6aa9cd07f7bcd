package services

import (
	"fmt"
	"math/rand"

	"contestdraw/internal/domain"
)

// giveawaySelector draws a uniform random subset of the entries.
type giveawaySelector struct{}

// NewGiveawaySelector returns the selector for giveaway events.
func NewGiveawaySelector() domain.WinnerSelector {
	return giveawaySelector{}
}

func (giveawaySelector) Kind() domain.EventKind { return domain.KindGiveaway }

func (giveawaySelector) SelectWinners(event *domain.Event, entries []domain.Entry, seed int64) (*domain.Selection, error) {
	ranked, err := shuffleAndRank(event, entries, seed)
	if err != nil {
		return nil, err
	}
	return domain.NewSelection(domain.KindGiveaway, seed, ranked), nil
}

// shuffleAndRank resets every position, shuffles a permutation of the roster with a
// generator seeded by seed and ranks the first min(WinnersCount, len) entries of the
// permutation. The returned entries keep roster order.
func shuffleAndRank(event *domain.Event, entries []domain.Entry, seed int64) ([]domain.Entry, error) {
	if len(entries) == 0 {
		return nil, domain.ErrEmptyRoster
	}
	if event.WinnersCount < 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidWinnersCount, event.WinnersCount)
	}

	out := domain.CloneEntries(entries)
	for i := range out {
		out[i].Position = 0
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	n := min(event.WinnersCount, len(out))
	for rank := 1; rank <= n; rank++ {
		out[order[rank-1]].Position = rank
	}
	return out, nil
}
