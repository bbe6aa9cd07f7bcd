package domain

import "sort"

// NoWinnersNote is recorded when a selection run found no eligible entries.
const NoWinnersNote = "no winners"

// Selection is the outcome of one winner selection run.
// Entries holds every evaluated entry in roster order with its assigned position;
// Winners holds the ranked entries ordered by position.
type Selection struct {
	Kind    EventKind `json:"kind"`
	Seed    int64     `json:"seed"`
	Entries []Entry   `json:"entries"`
	Winners []Entry   `json:"winners"`
	Note    string    `json:"note,omitempty"`
}

// NewSelection builds a Selection from entries that already carry their positions.
func NewSelection(kind EventKind, seed int64, entries []Entry) *Selection {
	winners := make([]Entry, 0)
	for _, e := range entries {
		if e.IsWinner() {
			winners = append(winners, e)
		}
	}
	sort.Slice(winners, func(i, j int) bool { return winners[i].Position < winners[j].Position })
	return &Selection{Kind: kind, Seed: seed, Entries: entries, Winners: winners}
}

// WinnerSelector is one winner selection algorithm. SelectWinners must not mutate entries
// and must return the same Selection for the same (event, entries, seed).
type WinnerSelector interface {
	Kind() EventKind
	SelectWinners(event *Event, entries []Entry, seed int64) (*Selection, error)
}
