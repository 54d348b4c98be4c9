package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestScheduler() *Scheduler {
	s := NewScheduler(zap.NewNop())
	s.minBackoff = time.Millisecond
	s.maxBackoff = 4 * time.Millisecond
	return s
}

func TestSchedulerRestartsFailedTask(t *testing.T) {
	s := newTestScheduler()

	var calls atomic.Int32
	s.Go(context.Background(), "consumer", func(ctx context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New("connection reset")
		}
		<-ctx.Done()
		return ctx.Err()
	})

	assert.Eventually(t, func() bool { return calls.Load() == 3 }, time.Second, time.Millisecond)

	s.Stop()
	assert.Equal(t, int32(3), calls.Load())
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	s := newTestScheduler()
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	done := make(chan struct{})
	s.Go(ctx, "consumer", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(done)
		return ctx.Err()
	})

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("task was not started")
	}

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task was not cancelled")
	}
	s.Stop()
}

func TestSchedulerSkipsTaskForCancelledContext(t *testing.T) {
	s := newTestScheduler()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	s.Go(ctx, "consumer", func(context.Context) error {
		calls.Add(1)
		return nil
	})

	s.Stop()
	assert.Zero(t, calls.Load())
}

func TestSchedulerEvery(t *testing.T) {
	s := newTestScheduler()

	var calls atomic.Int32
	s.Every(context.Background(), "cleanup", time.Millisecond, func(context.Context) {
		calls.Add(1)
	})

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	s.Stop()
}
