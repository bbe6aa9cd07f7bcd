package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"contestdraw/internal/concurrency"
	"contestdraw/internal/domain"
	"contestdraw/internal/metrics"
)

// SeedSource returns the seed for the next randomized selection.
type SeedSource func() int64

// WallClockSeed seeds selections with the current time in milliseconds.
func WallClockSeed() int64 {
	return time.Now().UnixMilli()
}

// FinalizationOption customises a finalization service.
type FinalizationOption func(*finalizationService)

// WithSeedSource overrides the seed source. Tests use it to pin outcomes.
func WithSeedSource(src SeedSource) FinalizationOption {
	return func(s *finalizationService) { s.seeds = src }
}

// WithAuditTrail overrides the audit trail, e.g. to inject a fixed clock.
func WithAuditTrail(a *AuditTrail) FinalizationOption {
	return func(s *finalizationService) { s.audit = a }
}

type finalizationService struct {
	eventRepo      domain.EventRepository
	entryRepo      domain.EntryRepository
	auditRepo      domain.AuditRepository
	userRepo       domain.UserRepository
	registry       *SelectorRegistry
	queue          domain.NotificationQueue
	logger         *slog.Logger
	contextTimeout time.Duration

	audit *AuditTrail
	locks *concurrency.LockManager
	seeds SeedSource
}

func NewFinalizationService(eventRepo domain.EventRepository,
	entryRepo domain.EntryRepository,
	auditRepo domain.AuditRepository,
	userRepo domain.UserRepository,
	registry *SelectorRegistry,
	queue domain.NotificationQueue,
	logger *slog.Logger,
	timeout time.Duration,
	opts ...FinalizationOption,
) domain.FinalizationService {
	s := &finalizationService{
		eventRepo:      eventRepo,
		entryRepo:      entryRepo,
		auditRepo:      auditRepo,
		userRepo:       userRepo,
		registry:       registry,
		queue:          queue,
		logger:         logger,
		contextTimeout: timeout,
		audit:          NewAuditTrail(nil),
		locks:          concurrency.NewLockManager(),
		seeds:          WallClockSeed,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *finalizationService) Close(ctx context.Context, eventID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		metrics.ClosesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("get event: %w", err)
	}
	if event.Status != domain.StatusOpen {
		metrics.ClosesTotal.WithLabelValues(metrics.OutcomeNoop).Inc()
		s.logger.DebugContext(ctx, "close skipped", "event_id", eventID, "status", event.Status)
		return false, nil
	}

	ok, err := s.eventRepo.TransitionStatus(ctx, eventID, domain.StatusOpen, domain.StatusClosed)
	if err != nil {
		metrics.ClosesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return false, fmt.Errorf("close event: %w", err)
	}
	if !ok {
		// Closed, finalized or blocked by someone else between read and update.
		metrics.ClosesTotal.WithLabelValues(metrics.OutcomeNoop).Inc()
		return false, nil
	}
	event.Status = domain.StatusClosed
	metrics.ClosesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.logger.InfoContext(ctx, "event closed", "event_id", eventID, "kind", event.Kind)

	s.notifyClosed(ctx, event)
	return true, nil
}

func (s *finalizationService) Finalize(ctx context.Context, eventID, actor string) (*domain.FinalizationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		result *domain.FinalizationResult
		sel    *domain.Selection
		kind   domain.EventKind
	)
	err := s.locks.WithLock(eventID, func() error {
		event, err := s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get event: %w", err)
		}
		kind = event.Kind
		if event.Status != domain.StatusClosed {
			return fmt.Errorf("%w: event must be closed to finalize (current: %s)", domain.ErrInvalidState, event.Status)
		}
		if err := event.Validate(); err != nil {
			return err
		}
		selector, err := s.registry.Get(event.Kind)
		if err != nil {
			return err
		}
		result, sel, err = s.finalizeInTx(ctx, eventID, selector, actor)
		return err
	})
	if err != nil {
		metrics.FinalizationsTotal.WithLabelValues(string(kind), finalizationOutcome(err)).Inc()
		s.logger.WarnContext(ctx, "finalization failed", "event_id", eventID, "err", err)
		return nil, err
	}

	metrics.FinalizationsTotal.WithLabelValues(string(kind), metrics.OutcomeSuccess).Inc()
	s.logger.InfoContext(ctx, "event finalized",
		"event_id", eventID,
		"kind", kind,
		"seed", result.Seed,
		"winners", len(result.Winners),
		"audit_action_id", result.AuditActionID,
	)

	s.notifyFinalized(ctx, result.Event, sel)
	return result, nil
}

// finalizeInTx runs the selection and commits positions, the FINALIZED status and the
// audit record in one transaction. Nothing is visible to other readers until commit.
func (s *finalizationService) finalizeInTx(ctx context.Context, eventID string, selector domain.WinnerSelector, actor string) (*domain.FinalizationResult, *domain.Selection, error) {
	tx, err := s.eventRepo.BeginFinalization(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin finalization: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.WarnContext(ctx, "finalization rollback failed", "event_id", eventID, "err", rbErr)
		}
	}()

	event, err := tx.LockEvent(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("lock event: %w", err)
	}
	if event.Status != domain.StatusClosed {
		return nil, nil, fmt.Errorf("%w: event must be closed to finalize (current: %s)", domain.ErrInvalidState, event.Status)
	}

	entries, err := tx.ListEntries(ctx, event)
	if err != nil {
		return nil, nil, fmt.Errorf("list entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("%w: event %s", domain.ErrEmptyRoster, eventID)
	}

	var seed int64
	if event.Kind.Randomized() {
		seed = s.seeds()
	}
	start := time.Now()
	sel, err := selector.SelectWinners(event, entries, seed)
	metrics.SelectionDuration.WithLabelValues(string(event.Kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, nil, fmt.Errorf("select winners: %w", err)
	}

	if err := tx.SaveEntryPositions(ctx, event.Kind, sel.Entries); err != nil {
		return nil, nil, fmt.Errorf("save positions: %w", err)
	}
	if err := tx.FinalizeEvent(ctx, event.ID, event.Version); err != nil {
		return nil, nil, fmt.Errorf("finalize event: %w", err)
	}
	action, err := s.audit.Record(ctx, tx, event, actor, domain.AuditEventExecuted, selectionDetails(event, sel), seed, sel.Entries)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit finalization: %w", err)
	}
	committed = true

	event.Status = domain.StatusFinalized
	event.Version++
	return &domain.FinalizationResult{
		Event:         event,
		Seed:          seed,
		Winners:       sel.Winners,
		Note:          sel.Note,
		AuditActionID: action.ID,
	}, sel, nil
}

func finalizationOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrConcurrentModification):
		return metrics.OutcomeConflict
	default:
		return metrics.OutcomeError
	}
}

func (s *finalizationService) CloseExpired(ctx context.Context, now time.Time) (int, error) {
	listCtx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	due, err := s.eventRepo.ListDueForClose(listCtx, now)
	cancel()
	if err != nil {
		return 0, fmt.Errorf("list events due for close: %w", err)
	}

	closed := 0
	var errs []error
	for _, event := range due {
		ok, err := s.Close(ctx, event.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "scheduled close failed", "event_id", event.ID, "err", err)
			errs = append(errs, fmt.Errorf("close %s: %w", event.ID, err))
			continue
		}
		if ok {
			closed++
		}
	}
	return closed, errors.Join(errs...)
}

func (s *finalizationService) AuditTrail(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.AuditAction, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	actions, total, err := s.auditRepo.ListByEvent(ctx, eventID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit actions: %w", err)
	}
	if actions == nil {
		actions = []*domain.AuditAction{}
	}
	return actions, total, nil
}

func (s *finalizationService) Replay(ctx context.Context, actionID string) (*domain.ReplayResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	action, auditEvent, err := s.auditRepo.GetAction(ctx, actionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get audit action: %w", err)
	}
	if !auditEvent.Kind.Randomized() {
		return nil, fmt.Errorf("%w: replay is only defined for randomized kinds, got %s", domain.ErrInvalidState, auditEvent.Kind)
	}
	selector, err := s.registry.Get(auditEvent.Kind)
	if err != nil {
		return nil, err
	}

	// Randomized selections rank the first min(winners_count, n) entries of the permutation,
	// so the recorded number of winners reproduces the same prefix.
	winners := 0
	for _, p := range action.Participants {
		if p.Position > 0 {
			winners++
		}
	}
	event := &domain.Event{ID: auditEvent.EventID, Title: auditEvent.Title, Kind: auditEvent.Kind, WinnersCount: winners}
	sel, err := selector.SelectWinners(event, entriesFromSnapshot(auditEvent.EventID, action.Participants), action.Seed)
	if err != nil {
		return nil, fmt.Errorf("replay selection: %w", err)
	}

	reproduced := SnapshotParticipants(sel.Entries)
	matches := len(reproduced) == len(action.Participants)
	for i := 0; matches && i < len(reproduced); i++ {
		matches = reproduced[i].Position == action.Participants[i].Position
	}
	return &domain.ReplayResult{
		ActionID:   action.ID,
		Seed:       action.Seed,
		Matches:    matches,
		Recorded:   action.Participants,
		Reproduced: reproduced,
	}, nil
}
