package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is a unit of periodic work.
type Job interface {
	Name() string
	Process(ctx context.Context) error
}

// Scheduler runs registered jobs at fixed intervals until stopped.
// A job never overlaps with itself; a tick that fires while the previous run is still going is skipped.
type Scheduler struct {
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new scheduler
func New(logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Schedule registers a job to run every interval, starting one interval from now.
func (s *Scheduler) Schedule(interval time.Duration, job Job) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.run(job)
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

func (s *Scheduler) run(job Job) {
	start := time.Now()
	if err := job.Process(s.ctx); err != nil {
		s.logger.Error("scheduled job failed", "job", job.Name(), "err", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	s.logger.Debug("scheduled job finished", "job", job.Name(), "duration_ms", time.Since(start).Milliseconds())
}

// Stop cancels in-flight jobs and waits for every job goroutine to return.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// JobFunc adapts a function to Job.
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

func (j JobFunc) Name() string { return j.JobName }

func (j JobFunc) Process(ctx context.Context) error { return j.Fn(ctx) }
