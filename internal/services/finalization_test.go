package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"contestdraw/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	creator = domain.User{ID: "creator-1", Email: "host@example.com", Name: "Hana", LastName: "Host"}
)

type finalizationFixture struct {
	store *memStore
	queue *recordingQueue
	svc   domain.FinalizationService
}

func newFinalizationFixture(t *testing.T, opts ...FinalizationOption) *finalizationFixture {
	t.Helper()
	store := newMemStore()
	store.addUser(creator)
	queue := newRecordingQueue()
	opts = append([]FinalizationOption{
		WithSeedSource(fixedSeed(42)),
		WithAuditTrail(NewAuditTrail(func() time.Time { return testNow })),
	}, opts...)
	svc := NewFinalizationService(store, store, memAudit{store}, memUsers{store},
		NewSelectorRegistry(DefaultSelectors()...), queue, testLogger, 5*time.Second, opts...)
	return &finalizationFixture{store: store, queue: queue, svc: svc}
}

func closedEvent(id string, kind domain.EventKind, winners int) domain.Event {
	return domain.Event{
		ID:           id,
		Title:        "Spring " + string(kind),
		CreatorID:    creator.ID,
		Category:     "books",
		Kind:         kind,
		Status:       domain.StatusClosed,
		WinnersCount: winners,
		TargetNumber: 7,
		EndDate:      testNow.Add(-time.Hour),
		Version:      3,
	}
}

func TestFinalize_Giveaway(t *testing.T) {
	f := newFinalizationFixture(t)
	f.store.addEvent(closedEvent("ev-1", domain.KindGiveaway, 2))
	f.store.setEntries("ev-1", makeRoster(5))

	res, err := f.svc.Finalize(context.Background(), "ev-1", "op-1")
	require.NoError(t, err)

	assert.Equal(t, int64(42), res.Seed)
	require.Len(t, res.Winners, 2)
	assert.Equal(t, 1, res.Winners[0].Position)
	assert.Equal(t, 2, res.Winners[1].Position)
	assert.Equal(t, domain.StatusFinalized, res.Event.Status)

	stored := f.store.event("ev-1")
	assert.Equal(t, domain.StatusFinalized, stored.Status)
	assert.Equal(t, 4, stored.Version)
	assertRanks(t, f.store.storedEntries("ev-1"), 2)

	actions := f.store.auditActions()
	require.Len(t, actions, 1)
	a := actions[0]
	assert.Equal(t, res.AuditActionID, a.ID)
	assert.Equal(t, domain.AuditEventExecuted, a.ActionType)
	assert.Equal(t, "op-1", a.Actor)
	assert.Equal(t, int64(42), a.Seed)
	assert.Equal(t, testNow, a.CreatedAt)
	require.Len(t, a.Participants, 5, "snapshot holds every evaluated entry")
	assert.Contains(t, a.Details, "2 winner(s) of 5 participant(s)")

	// Same seed and roster reproduce the persisted ranking.
	again, err := NewGiveawaySelector().SelectWinners(&domain.Event{Kind: domain.KindGiveaway, WinnersCount: 2}, makeRoster(5), 42)
	require.NoError(t, err)
	assert.Equal(t, rankSet(again.Entries), rankSet(f.store.storedEntries("ev-1")))

	winnerMsgs := f.queue.byKind(domain.MessageWinner)
	require.Len(t, winnerMsgs, 2)
	assert.Equal(t, res.Winners[0].Owner.Email, winnerMsgs[0].to.Email)
	assert.Equal(t, 1, winnerMsgs[0].msg.Position)
	summary := f.queue.byKind(domain.MessageEventFinalized)
	require.Len(t, summary, 1)
	assert.Equal(t, creator.Email, summary[0].to.Email)
	assert.Equal(t, 5, summary[0].msg.ParticipantCount)
	assert.Len(t, summary[0].msg.Winners, 2)
}

func TestFinalize_MoreWinnersThanEntries(t *testing.T) {
	f := newFinalizationFixture(t)
	f.store.addEvent(closedEvent("ev-1", domain.KindRaffle, 10))
	f.store.setEntries("ev-1", makeRoster(3))

	res, err := f.svc.Finalize(context.Background(), "ev-1", "op-1")
	require.NoError(t, err)
	require.Len(t, res.Winners, 3)
	assertRanks(t, f.store.storedEntries("ev-1"), 3)
	assert.Contains(t, res.Note, "#1 ticket")
}

func TestFinalize_GuessingContestIsUnseeded(t *testing.T) {
	seedCalls := 0
	f := newFinalizationFixture(t, WithSeedSource(func() int64 { seedCalls++; return 99 }))
	f.store.addEvent(closedEvent("ev-1", domain.KindGuessingContest, 2))
	f.store.setEntries("ev-1", []domain.Entry{
		{ID: "x", EventID: "ev-1", Attempts: "3,5,7,9", Duration: 40 * time.Second, Owner: domain.Contact{Email: "x@example.com"}},
		{ID: "y", EventID: "ev-1", Attempts: "7", Duration: 5 * time.Second, Owner: domain.Contact{Email: "y@example.com"}},
		{ID: "z", EventID: "ev-1", Attempts: "1,2", Duration: time.Second, Owner: domain.Contact{Email: "z@example.com"}},
	})

	res, err := f.svc.Finalize(context.Background(), "ev-1", "op-1")
	require.NoError(t, err)

	assert.Equal(t, 0, seedCalls)
	assert.Equal(t, int64(0), res.Seed)
	require.Len(t, res.Winners, 2)
	assert.Equal(t, "y", res.Winners[0].ID)
	assert.Equal(t, "x", res.Winners[1].ID)

	byID := map[string]domain.Entry{}
	for _, e := range f.store.storedEntries("ev-1") {
		byID[e.ID] = e
	}
	assert.True(t, byID["y"].HasWon)
	assert.True(t, byID["x"].HasWon)
	assert.False(t, byID["z"].HasWon)
	assert.Equal(t, 0, byID["z"].Position)
	assert.Equal(t, int64(0), f.store.auditActions()[0].Seed)
}

func TestFinalize_NotClosedLeavesEverythingUntouched(t *testing.T) {
	for _, status := range []domain.EventStatus{domain.StatusOpen, domain.StatusFinalized, domain.StatusBlocked} {
		t.Run(string(status), func(t *testing.T) {
			f := newFinalizationFixture(t)
			ev := closedEvent("ev-1", domain.KindGiveaway, 1)
			ev.Status = status
			f.store.addEvent(ev)
			roster := makeRoster(3)
			f.store.setEntries("ev-1", roster)

			_, err := f.svc.Finalize(context.Background(), "ev-1", "op-1")
			require.ErrorIs(t, err, domain.ErrInvalidState)
			assert.Contains(t, err.Error(), string(status))

			assert.Equal(t, ev, f.store.event("ev-1"))
			assert.Equal(t, roster, f.store.storedEntries("ev-1"))
			assert.Zero(t, f.store.begins)
			assert.Empty(t, f.store.auditActions())
			assert.Empty(t, f.queue.items)
		})
	}
}

func TestFinalize_EmptyRosterWritesNoAudit(t *testing.T) {
	f := newFinalizationFixture(t)
	f.store.addEvent(closedEvent("ev-1", domain.KindGiveaway, 1))

	_, err := f.svc.Finalize(context.Background(), "ev-1", "op-1")
	require.ErrorIs(t, err, domain.ErrEmptyRoster)

	assert.Empty(t, f.store.auditActions())
	assert.Equal(t, domain.StatusClosed, f.store.event("ev-1").Status)
	assert.Equal(t, 1, f.store.rollbacks)
	assert.Zero(t, f.store.commits)
}

func TestFinalize_NotFound(t *testing.T) {
	f := newFinalizationFixture(t)
	_, err := f.svc.Finalize(context.Background(), "missing", "op-1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFinalize_UnknownKind(t *testing.T) {
	f := newFinalizationFixture(t)
	f.store.addEvent(closedEvent("ev-1", "lottery", 1))
	f.store.setEntries("ev-1", makeRoster(2))

	_, err := f.svc.Finalize(context.Background(), "ev-1", "op-1")
	require.ErrorIs(t, err, domain.ErrNoStrategy)
	assert.Zero(t, f.store.begins)
}

func TestFinalize_NegativeWinnersCount(t *testing.T) {
	f := newFinalizationFixture(t)
	f.store.addEvent(closedEvent("ev-1", domain.KindGiveaway, -1))
	f.store.setEntries("ev-1", makeRoster(2))

	_, err := f.svc.Finalize(context.Background(), "ev-1", "op-1")
	require.ErrorIs(t, err, domain.ErrInvalidWinnersCount)
}

func TestFinalize_FailuresRollBack(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name   string
		inject func(s *memStore)
	}{
		{"save positions", func(s *memStore) { s.saveErr = boom }},
		{"append audit", func(s *memStore) { s.appendErr = boom }},
		{"commit", func(s *memStore) { s.commitErr = boom }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFinalizationFixture(t)
			f.store.addEvent(closedEvent("ev-1", domain.KindGiveaway, 2))
			roster := makeRoster(4)
			f.store.setEntries("ev-1", roster)
			tt.inject(f.store)

			_, err := f.svc.Finalize(context.Background(), "ev-1", "op-1")
			require.ErrorIs(t, err, boom)

			assert.Equal(t, domain.StatusClosed, f.store.event("ev-1").Status)
			assert.Equal(t, roster, f.store.storedEntries("ev-1"))
			assert.Empty(t, f.store.auditActions())
			assert.Equal(t, 1, f.store.rollbacks)
			assert.Empty(t, f.queue.items)
		})
	}
}

func TestFinalize_ConcurrentWriterDetected(t *testing.T) {
	f := newFinalizationFixture(t)
	f.store.addEvent(closedEvent("ev-1", domain.KindGiveaway, 1))
	f.store.setEntries("ev-1", makeRoster(3))
	f.store.afterLock = func() {
		f.store.mu.Lock()
		f.store.events["ev-1"].Version++
		f.store.mu.Unlock()
	}

	_, err := f.svc.Finalize(context.Background(), "ev-1", "op-1")
	require.ErrorIs(t, err, domain.ErrConcurrentModification)
	assert.Equal(t, domain.StatusClosed, f.store.event("ev-1").Status)
	assert.Empty(t, f.store.auditActions())
}

func TestFinalize_StatusChangedAfterRead(t *testing.T) {
	f := newFinalizationFixture(t)
	f.store.addEvent(closedEvent("ev-1", domain.KindGiveaway, 1))
	f.store.setEntries("ev-1", makeRoster(3))

	// The unlocked read still says CLOSED but the row the transaction locks is BLOCKED.
	stale := closedEvent("ev-1", domain.KindGiveaway, 1)
	f.store.mu.Lock()
	f.store.events["ev-1"].Status = domain.StatusBlocked
	f.store.mu.Unlock()
	svc := f.svc.(*finalizationService)
	svc.eventRepo = &staleReadRepo{memStore: f.store, stale: &stale}

	_, err := f.svc.Finalize(context.Background(), "ev-1", "op-1")
	require.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, 1, f.store.rollbacks)
	assert.Empty(t, f.store.auditActions())
}

// staleReadRepo returns a stale event from GetByID while the transaction sees the stored row.
type staleReadRepo struct {
	*memStore
	stale *domain.Event
}

func (r *staleReadRepo) GetByID(_ context.Context, _ string) (*domain.Event, error) {
	cp := *r.stale
	return &cp, nil
}

func TestFinalize_ConcurrentCallsFinalizeOnce(t *testing.T) {
	f := newFinalizationFixture(t)
	f.store.addEvent(closedEvent("ev-1", domain.KindGiveaway, 1))
	f.store.setEntries("ev-1", makeRoster(10))

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Finalize(context.Background(), "ev-1", "op-1")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, f.store.auditActions(), 1)
	assertRanks(t, f.store.storedEntries("ev-1"), 1)
}

func TestFinalize_NotificationFailureKeepsResult(t *testing.T) {
	f := newFinalizationFixture(t)
	f.queue.accept = false
	ev := closedEvent("ev-1", domain.KindGiveaway, 1)
	ev.CreatorID = "ghost"
	f.store.addEvent(ev)
	f.store.setEntries("ev-1", makeRoster(2))

	res, err := f.svc.Finalize(context.Background(), "ev-1", "op-1")
	require.NoError(t, err)
	require.Len(t, res.Winners, 1)
	assert.Equal(t, domain.StatusFinalized, f.store.event("ev-1").Status)
	assert.Len(t, f.store.auditActions(), 1)
	assert.Empty(t, f.queue.byKind(domain.MessageEventFinalized), "unknown creator gets no summary")
}

func TestClose(t *testing.T) {
	f := newFinalizationFixture(t)
	ev := closedEvent("ev-1", domain.KindGiveaway, 1)
	ev.Status = domain.StatusOpen
	f.store.addEvent(ev)
	f.store.setEntries("ev-1", makeRoster(4))

	closed, err := f.svc.Close(context.Background(), "ev-1")
	require.NoError(t, err)
	assert.True(t, closed)
	stored := f.store.event("ev-1")
	assert.Equal(t, domain.StatusClosed, stored.Status)
	assert.Equal(t, ev.Version+1, stored.Version)

	msgs := f.queue.byKind(domain.MessageEventClosed)
	require.Len(t, msgs, 1)
	assert.Equal(t, creator.Email, msgs[0].to.Email)
	assert.Equal(t, 4, msgs[0].msg.ParticipantCount)
	assert.Equal(t, ev.EndDate, msgs[0].msg.EndDate)

	// Idempotent: a second close is a no-op with no second notification.
	closed, err = f.svc.Close(context.Background(), "ev-1")
	require.NoError(t, err)
	assert.False(t, closed)
	assert.Equal(t, stored, f.store.event("ev-1"))
	assert.Len(t, f.queue.byKind(domain.MessageEventClosed), 1)
}

func TestClose_NonOpenIsNoop(t *testing.T) {
	for _, status := range []domain.EventStatus{domain.StatusClosed, domain.StatusFinalized, domain.StatusBlocked} {
		t.Run(string(status), func(t *testing.T) {
			f := newFinalizationFixture(t)
			ev := closedEvent("ev-1", domain.KindRaffle, 1)
			ev.Status = status
			f.store.addEvent(ev)

			closed, err := f.svc.Close(context.Background(), "ev-1")
			require.NoError(t, err)
			assert.False(t, closed)
			assert.Equal(t, ev, f.store.event("ev-1"))
			assert.Empty(t, f.queue.items)
		})
	}
}

func TestClose_Errors(t *testing.T) {
	f := newFinalizationFixture(t)
	_, err := f.svc.Close(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	ev := closedEvent("ev-1", domain.KindRaffle, 1)
	ev.Status = domain.StatusOpen
	f.store.addEvent(ev)
	f.store.transitionErr = errors.New("db down")
	_, err = f.svc.Close(context.Background(), "ev-1")
	require.Error(t, err)
	assert.Equal(t, domain.StatusOpen, f.store.event("ev-1").Status)
}

func TestClose_CountFailureStillNotifies(t *testing.T) {
	f := newFinalizationFixture(t)
	ev := closedEvent("ev-1", domain.KindGiveaway, 1)
	ev.Status = domain.StatusOpen
	f.store.addEvent(ev)
	f.store.countErr = errors.New("count failed")

	closed, err := f.svc.Close(context.Background(), "ev-1")
	require.NoError(t, err)
	assert.True(t, closed)
	msgs := f.queue.byKind(domain.MessageEventClosed)
	require.Len(t, msgs, 1)
	assert.Equal(t, 0, msgs[0].msg.ParticipantCount)
}

func TestCloseExpired(t *testing.T) {
	f := newFinalizationFixture(t)
	due := closedEvent("due", domain.KindGiveaway, 1)
	due.Status = domain.StatusOpen
	due.EndDate = testNow.Add(-time.Minute)
	exact := due
	exact.ID = "exact"
	exact.EndDate = testNow
	future := due
	future.ID = "future"
	future.EndDate = testNow.Add(time.Minute)
	alreadyClosed := closedEvent("closed", domain.KindGiveaway, 1)
	for _, e := range []domain.Event{due, exact, future, alreadyClosed} {
		f.store.addEvent(e)
	}

	n, err := f.svc.CloseExpired(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, domain.StatusClosed, f.store.event("due").Status)
	assert.Equal(t, domain.StatusClosed, f.store.event("exact").Status)
	assert.Equal(t, domain.StatusOpen, f.store.event("future").Status)

	n, err = f.svc.CloseExpired(context.Background(), testNow)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCloseExpired_ReportsFailures(t *testing.T) {
	f := newFinalizationFixture(t)
	ev := closedEvent("ev-1", domain.KindGiveaway, 1)
	ev.Status = domain.StatusOpen
	f.store.addEvent(ev)
	f.store.transitionErr = errors.New("db down")

	n, err := f.svc.CloseExpired(context.Background(), testNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ev-1")
	assert.Zero(t, n)
}

func TestAuditTrail(t *testing.T) {
	f := newFinalizationFixture(t)

	list, total, err := f.svc.AuditTrail(context.Background(), "ev-1", domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.Zero(t, total)

	f.store.addEvent(closedEvent("ev-1", domain.KindGiveaway, 1))
	f.store.setEntries("ev-1", makeRoster(3))
	res, err := f.svc.Finalize(context.Background(), "ev-1", "op-1")
	require.NoError(t, err)

	list, total, err = f.svc.AuditTrail(context.Background(), "ev-1", domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, res.AuditActionID, list[0].ID)

	list, total, err = f.svc.AuditTrail(context.Background(), "ev-1", domain.PaginationParams{Page: 2, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Empty(t, list)
}

func TestReplay(t *testing.T) {
	for _, kind := range []domain.EventKind{domain.KindGiveaway, domain.KindRaffle} {
		t.Run(string(kind), func(t *testing.T) {
			f := newFinalizationFixture(t, WithSeedSource(fixedSeed(1717171717)))
			f.store.addEvent(closedEvent("ev-1", kind, 3))
			f.store.setEntries("ev-1", makeRoster(9))
			res, err := f.svc.Finalize(context.Background(), "ev-1", "op-1")
			require.NoError(t, err)

			replay, err := f.svc.Replay(context.Background(), res.AuditActionID)
			require.NoError(t, err)
			assert.True(t, replay.Matches)
			assert.Equal(t, int64(1717171717), replay.Seed)
			assert.Equal(t, replay.Recorded, replay.Reproduced)
		})
	}
}

func TestReplay_DetectsTamperedSnapshot(t *testing.T) {
	f := newFinalizationFixture(t)
	f.store.addEvent(closedEvent("ev-1", domain.KindGiveaway, 1))
	f.store.setEntries("ev-1", makeRoster(5))
	res, err := f.svc.Finalize(context.Background(), "ev-1", "op-1")
	require.NoError(t, err)

	// Move the recorded win to a different participant.
	f.store.mu.Lock()
	ps := f.store.actions[0].Participants
	for i := range ps {
		if ps[i].Position == 1 {
			ps[i].Position = 0
			ps[(i+1)%len(ps)].Position = 1
			break
		}
	}
	f.store.mu.Unlock()

	replay, err := f.svc.Replay(context.Background(), res.AuditActionID)
	require.NoError(t, err)
	assert.False(t, replay.Matches)
}

func TestReplay_Errors(t *testing.T) {
	f := newFinalizationFixture(t)
	_, err := f.svc.Replay(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	f.store.addEvent(closedEvent("ev-1", domain.KindGuessingContest, 1))
	f.store.setEntries("ev-1", []domain.Entry{{ID: "a", EventID: "ev-1", Attempts: "7"}})
	res, err := f.svc.Finalize(context.Background(), "ev-1", "op-1")
	require.NoError(t, err)

	_, err = f.svc.Replay(context.Background(), res.AuditActionID)
	require.ErrorIs(t, err, domain.ErrInvalidState)
}
