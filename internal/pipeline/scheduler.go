package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/orbis-globe/data-engine/internal/domain"
)

// Runner executes one refresh.
type Runner interface {
	Run(ctx context.Context) (domain.RunReport, error)
}

// Scheduler repeats a Runner on a fixed interval. Runs never overlap; ticks
// that arrive during a run collapse into at most one follow-up run.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger

	ready atomic.Bool

	mu   sync.RWMutex
	last *domain.RunReport
}

// NewScheduler creates a Scheduler.
func NewScheduler(runner Runner, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		clock:    clock,
		logger:   logger,
	}
}

// Run refreshes immediately and then on every tick until ctx is cancelled.
// Failed runs are logged and retried on the next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	report, err := s.runner.Run(ctx)

	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()

	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("scheduled refresh failed", "error", err)
			s.ready.Store(false)
		}
		return
	}
	s.ready.Store(true)
}

// CheckReadiness returns nil while the most recent run succeeded. A failed
// run makes the job unready until the next successful one.
func (s *Scheduler) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("last refresh did not succeed")
	}
	return nil
}

// LastReport returns the report of the most recent run, successful or not.
func (s *Scheduler) LastReport() (domain.RunReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return domain.RunReport{}, false
	}
	return *s.last, true
}
