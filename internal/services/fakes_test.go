package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"contestdraw/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// memStore is an in-memory implementation of every repository the finalization service
// uses. Finalization transactions stage writes and apply them on Commit.
type memStore struct {
	mu          sync.Mutex
	events      map[string]*domain.Event
	entries     map[string][]domain.Entry
	users       map[string]*domain.User
	actions     []*domain.AuditAction
	auditEvents map[string]*domain.AuditEvent

	transitionErr error
	countErr      error
	saveErr       error
	appendErr     error
	commitErr     error
	// afterLock runs inside LockEvent once the event was read, to simulate a concurrent writer.
	afterLock func()

	begins    int
	commits   int
	rollbacks int
	nextID    int
}

func newMemStore() *memStore {
	return &memStore{
		events:      make(map[string]*domain.Event),
		entries:     make(map[string][]domain.Entry),
		users:       make(map[string]*domain.User),
		auditEvents: make(map[string]*domain.AuditEvent),
	}
}

func (m *memStore) addEvent(e domain.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[e.ID] = &e
}

func (m *memStore) setEntries(eventID string, entries []domain.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[eventID] = domain.CloneEntries(entries)
}

func (m *memStore) event(id string) domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.events[id]
}

func (m *memStore) storedEntries(eventID string) []domain.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.CloneEntries(m.entries[eventID])
}

func (m *memStore) auditActions() []*domain.AuditAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.AuditAction(nil), m.actions...)
}

// EventRepository

func (m *memStore) GetByID(_ context.Context, id string) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) ListDueForClose(_ context.Context, now time.Time) ([]*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Event
	for _, e := range m.events {
		if e.Status == domain.StatusOpen && !e.EndDate.After(now) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out, nil
}

func (m *memStore) TransitionStatus(_ context.Context, id string, from, to domain.EventStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transitionErr != nil {
		return false, m.transitionErr
	}
	e, ok := m.events[id]
	if !ok || e.Status != from || !from.CanTransition(to) {
		return false, nil
	}
	e.Status = to
	e.Version++
	return true, nil
}

func (m *memStore) BeginFinalization(_ context.Context) (domain.FinalizationTx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.begins++
	return &memTx{store: m}, nil
}

// EntryRepository

func (m *memStore) CountByEvent(_ context.Context, event *domain.Event) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.storedEntries(event.ID)), nil
}

// UserRepository

func (m *memStore) addUser(u domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = &u
}

type memUsers struct{ *memStore }

func (m memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// AuditRepository

type memAudit struct{ *memStore }

func (m memAudit) ListByEvent(_ context.Context, eventID string, params domain.PaginationParams) ([]*domain.AuditAction, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*domain.AuditAction
	for _, a := range m.actions {
		if a.EventID == eventID {
			matched = append(matched, a)
		}
	}
	total := len(matched)
	start := min(params.Offset(), total)
	end := total
	if l := params.Limit(); l > 0 {
		end = min(start+l, total)
	}
	return matched[start:end], total, nil
}

func (m memAudit) GetAction(_ context.Context, actionID string) (*domain.AuditAction, *domain.AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.actions {
		if a.ID == actionID {
			cp := *a
			cp.Participants = append([]domain.AuditParticipant(nil), a.Participants...)
			ev := *m.auditEvents[a.EventID]
			return &cp, &ev, nil
		}
	}
	return nil, nil, domain.ErrNotFound
}

// memTx stages writes until Commit.
type memTx struct {
	store     *memStore
	positions map[string][]domain.Entry
	finalize  *struct {
		id      string
		version int
	}
	actions []*domain.AuditAction
	events  []domain.AuditEvent
	done    bool
}

func (t *memTx) LockEvent(ctx context.Context, id string) (*domain.Event, error) {
	e, err := t.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.store.afterLock != nil {
		t.store.afterLock()
	}
	return e, nil
}

func (t *memTx) ListEntries(_ context.Context, event *domain.Event) ([]domain.Entry, error) {
	return t.store.storedEntries(event.ID), nil
}

func (t *memTx) SaveEntryPositions(_ context.Context, _ domain.EventKind, entries []domain.Entry) error {
	if t.store.saveErr != nil {
		return t.store.saveErr
	}
	if len(entries) == 0 {
		return nil
	}
	if t.positions == nil {
		t.positions = make(map[string][]domain.Entry)
	}
	t.positions[entries[0].EventID] = domain.CloneEntries(entries)
	return nil
}

func (t *memTx) FinalizeEvent(_ context.Context, id string, version int) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	e, ok := t.store.events[id]
	if !ok || e.Status != domain.StatusClosed || e.Version != version {
		return domain.ErrConcurrentModification
	}
	t.finalize = &struct {
		id      string
		version int
	}{id, version}
	return nil
}

func (t *memTx) AppendAuditAction(_ context.Context, event *domain.Event, action *domain.AuditAction) error {
	if t.store.appendErr != nil {
		return t.store.appendErr
	}
	t.store.mu.Lock()
	t.store.nextID++
	action.ID = fmt.Sprintf("act-%d", t.store.nextID)
	t.store.mu.Unlock()
	action.AuditEventID = "aev-" + event.ID
	t.actions = append(t.actions, action)
	t.events = append(t.events, domain.AuditEvent{ID: action.AuditEventID, EventID: event.ID, Title: event.Title, Kind: event.Kind, CreatedAt: action.CreatedAt})
	return nil
}

func (t *memTx) Commit() error {
	if t.done {
		return errors.New("tx already done")
	}
	if t.store.commitErr != nil {
		return t.store.commitErr
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.done = true
	t.store.commits++
	for eventID, entries := range t.positions {
		t.store.entries[eventID] = entries
	}
	if t.finalize != nil {
		e := t.store.events[t.finalize.id]
		e.Status = domain.StatusFinalized
		e.Version++
	}
	t.store.actions = append(t.store.actions, t.actions...)
	for _, ev := range t.events {
		if _, ok := t.store.auditEvents[ev.EventID]; !ok {
			t.store.auditEvents[ev.EventID] = &ev
		}
	}
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.done = true
	t.store.rollbacks++
	return nil
}

// queued is one notification handed to the queue.
type queued struct {
	to  domain.Contact
	msg domain.Message
}

// recordingQueue implements domain.NotificationQueue.
type recordingQueue struct {
	mu     sync.Mutex
	accept bool
	items  []queued
}

func newRecordingQueue() *recordingQueue { return &recordingQueue{accept: true} }

func (q *recordingQueue) Enqueue(to domain.Contact, msg domain.Message) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, queued{to: to, msg: msg})
	return q.accept
}

func (q *recordingQueue) byKind(kind domain.MessageKind) []queued {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []queued
	for _, it := range q.items {
		if it.msg.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

func fixedSeed(seed int64) SeedSource {
	return func() int64 { return seed }
}
