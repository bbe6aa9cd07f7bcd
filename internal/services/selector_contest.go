package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"contestdraw/internal/domain"
)

// contestSelector ranks guessing contest entries that found the target number.
// It uses no randomness; the seed is carried through only for the audit record.
type contestSelector struct{}

// NewGuessingContestSelector returns the selector for guessing contests.
func NewGuessingContestSelector() domain.WinnerSelector {
	return contestSelector{}
}

func (contestSelector) Kind() domain.EventKind { return domain.KindGuessingContest }

type contestCandidate struct {
	index      int
	attemptsTo int
}

func (contestSelector) SelectWinners(event *domain.Event, entries []domain.Entry, seed int64) (*domain.Selection, error) {
	if len(entries) == 0 {
		return nil, domain.ErrEmptyRoster
	}
	if event.WinnersCount < 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidWinnersCount, event.WinnersCount)
	}

	out := domain.CloneEntries(entries)
	var candidates []contestCandidate
	for i := range out {
		out[i].Position = 0
		out[i].HasWon = false
		if n := attemptsToCorrect(out[i].Attempts, event.TargetNumber); n > 0 {
			candidates = append(candidates, contestCandidate{index: i, attemptsTo: n})
		}
	}

	if len(candidates) == 0 {
		sel := domain.NewSelection(domain.KindGuessingContest, seed, out)
		sel.Note = domain.NoWinnersNote
		return sel, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.attemptsTo != b.attemptsTo {
			return a.attemptsTo < b.attemptsTo
		}
		ea, eb := out[a.index], out[b.index]
		if ea.Duration != eb.Duration {
			return ea.Duration < eb.Duration
		}
		if !ea.SubmittedAt.Equal(eb.SubmittedAt) {
			return ea.SubmittedAt.Before(eb.SubmittedAt)
		}
		return ea.ID < eb.ID
	})

	n := min(event.WinnersCount, len(candidates))
	for rank := 1; rank <= n; rank++ {
		e := &out[candidates[rank-1].index]
		e.Position = rank
		e.HasWon = true
	}

	sel := domain.NewSelection(domain.KindGuessingContest, seed, out)
	sel.Note = fmt.Sprintf("target %d guessed by %d of %d participants", event.TargetNumber, len(candidates), len(out))
	return sel, nil
}

// attemptsToCorrect returns the 1-indexed position of the first occurrence of target in
// the comma separated attempt log, counting only well-formed numbers. It returns 0 when
// target was never tried. Malformed tokens are skipped.
func attemptsToCorrect(attempts string, target int) int {
	pos := 0
	for _, tok := range strings.Split(attempts, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		pos++
		if n == target {
			return pos
		}
	}
	return 0
}
