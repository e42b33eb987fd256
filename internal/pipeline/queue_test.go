package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FirstTaskRunsImmediately(t *testing.T) {
	q := NewQueue(clockwork.NewFakeClock(), time.Hour)

	ran := false
	err := q.Do(context.Background(), func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestQueue_SpacesTasksByDelay(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	q := NewQueue(clock, time.Second)

	require.NoError(t, q.Do(ctx, func(context.Context) error { return nil }))

	done := make(chan error, 1)
	go func() {
		done <- q.Do(ctx, func(context.Context) error { return nil })
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(999 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("second task ran before the delay elapsed")
	case <-time.After(20 * time.Millisecond):
	}

	clock.Advance(time.Millisecond)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("second task never ran")
	}
}

func TestQueue_ReturnsTaskError(t *testing.T) {
	q := NewQueue(clockwork.NewFakeClock(), 0)
	want := errors.New("upstream down")

	err := q.Do(context.Background(), func(context.Context) error { return want })
	assert.ErrorIs(t, err, want)

	// A failed task still counts as the previous task.
	err = q.Do(context.Background(), func(context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestQueue_CancelDuringDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	q := NewQueue(clock, time.Minute)
	require.NoError(t, q.Do(context.Background(), func(context.Context) error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	ran := make(chan struct{}, 1)
	go func() {
		done <- q.Do(ctx, func(context.Context) error {
			ran <- struct{}{}
			return nil
		})
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ran)
}

func TestQueue_ZeroDelay(t *testing.T) {
	q := NewQueue(clockwork.NewFakeClock(), 0)
	for range 3 {
		require.NoError(t, q.Do(context.Background(), func(context.Context) error { return nil }))
	}
}
