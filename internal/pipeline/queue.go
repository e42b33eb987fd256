package pipeline

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Queue runs tasks one at a time, spacing each task delay after the previous
// one finished. The World Bank API throttles bursts, so indicator requests go
// through a Queue rather than being fired together.
type Queue struct {
	clock clockwork.Clock
	delay time.Duration

	// sem holds the single run slot. last is only touched while holding it.
	sem  chan struct{}
	last time.Time
	used bool
}

// NewQueue creates a Queue driven by clock.
func NewQueue(clock clockwork.Clock, delay time.Duration) *Queue {
	return &Queue{
		clock: clock,
		delay: delay,
		sem:   make(chan struct{}, 1),
	}
}

// Do waits for its turn and then runs task. It returns ctx.Err() without
// running task if ctx ends first, otherwise task's error.
func (q *Queue) Do(ctx context.Context, task func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-q.sem }()

	if q.used {
		if wait := q.delay - q.clock.Since(q.last); wait > 0 {
			if !sleepWithContext(ctx, q.clock, wait) {
				return ctx.Err()
			}
		}
	}

	err := task(ctx)
	q.last = q.clock.Now()
	q.used = true
	return err
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
