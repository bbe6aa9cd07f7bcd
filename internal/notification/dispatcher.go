// Package notification delivers best-effort notifications outside the finalization transaction.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"contestdraw/internal/domain"
	"contestdraw/internal/metrics"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultWorkers   = 2
	DefaultQueueSize = 256
	DefaultTimeout   = 10 * time.Second
)

// Options configures a Dispatcher.
type Options struct {
	Workers   int
	QueueSize int
	// Timeout bounds a single Notify call.
	Timeout time.Duration
}

type job struct {
	to  domain.Contact
	msg domain.Message
}

// Dispatcher is a bounded worker pool in front of a Notifier. A failing or slow
// notifier only costs a log line and a metric; it never reaches the caller.
type Dispatcher struct {
	notifier domain.Notifier
	logger   *slog.Logger
	timeout  time.Duration
	workers  int

	mu     sync.RWMutex
	closed bool
	jobs   chan job
	wg     sync.WaitGroup
	start  sync.Once
}

// NewDispatcher creates a dispatcher. Call Start before enqueueing and Stop on shutdown.
func NewDispatcher(notifier domain.Notifier, logger *slog.Logger, opts Options) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		notifier: notifier,
		logger:   logger,
		timeout:  opts.Timeout,
		workers:  opts.Workers,
		jobs:     make(chan job, opts.QueueSize),
	}
}

// Start launches the workers. Calling it more than once has no effect.
func (d *Dispatcher) Start() {
	d.start.Do(func() {
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go d.worker()
		}
	})
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		metrics.NotificationQueueLength.Set(float64(len(d.jobs)))
		d.deliver(j)
	}
}

// Enqueue implements domain.NotificationQueue.
func (d *Dispatcher) Enqueue(to domain.Contact, msg domain.Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(msg, "dispatcher stopped")
		return false
	}
	select {
	case d.jobs <- job{to: to, msg: msg}:
		metrics.NotificationQueueLength.Set(float64(len(d.jobs)))
		return true
	default:
		d.drop(msg, "queue full")
		return false
	}
}

func (d *Dispatcher) drop(msg domain.Message, reason string) {
	metrics.NotificationsTotal.WithLabelValues(string(msg.Kind), metrics.OutcomeDropped).Inc()
	d.logger.Warn("notification dropped", "kind", msg.Kind, "event_id", msg.EventID, "reason", reason)
}

func (d *Dispatcher) deliver(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := d.safeNotify(ctx, j)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(string(j.msg.Kind), metrics.OutcomeFailed).Inc()
		d.logger.Warn("notification failed",
			"kind", j.msg.Kind,
			"event_id", j.msg.EventID,
			"to", j.to.Email,
			"err", err,
		)
		return
	}
	metrics.NotificationsTotal.WithLabelValues(string(j.msg.Kind), metrics.OutcomeSent).Inc()
}

func (d *Dispatcher) safeNotify(ctx context.Context, j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panic: %v", r)
		}
	}()
	return d.notifier.Notify(ctx, j.to, j.msg)
}

// Stop refuses new notifications, lets the workers drain the queue and waits for them
// until ctx is done.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("notification dispatcher stop timed out"), ctx.Err())
	}
}
