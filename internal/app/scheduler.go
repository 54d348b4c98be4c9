package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Task - долгоживущая фоновая задача. Возврат ошибки приводит к перезапуску
type Task func(ctx context.Context) error

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	logger     *zap.Logger
	minBackoff time.Duration
	maxBackoff time.Duration

	mu      sync.Mutex
	cancels []context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler создаёт новый планировщик
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		logger:     logger,
		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
	}
}

// errRestartNow - задача долго проработала перед ошибкой, задержка начинается заново
var errRestartNow = errors.New("restart with fresh backoff")

// Go запускает задачу и перезапускает её с экспоненциальной задержкой,
// пока не отменён ctx или не вызван Stop
func (s *Scheduler) Go(ctx context.Context, name string, task Task) {
	ctx = s.track(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		log := s.logger.With(zap.String("task", name))
		log.Info("Background task started")

		run := func(ctx context.Context) error {
			started := time.Now()
			err := task(ctx)

			if ctx.Err() != nil {
				return nil
			}
			if err == nil || errors.Is(err, context.Canceled) {
				err = errors.New("task returned without error")
			}

			log.Error("Background task failed, restarting", zap.Error(err))

			if time.Since(started) > s.maxBackoff {
				return errRestartNow
			}
			return retry.RetryableError(err)
		}

		for ctx.Err() == nil {
			backoff := retry.WithCappedDuration(s.maxBackoff, retry.NewExponential(s.minBackoff))
			if err := retry.Do(ctx, backoff, run); err != nil && !errors.Is(err, errRestartNow) && ctx.Err() == nil {
				log.Error("Background task gave up", zap.Error(err))
				return
			}
		}

		log.Info("Background task stopped")
	}()
}

// Every периодически вызывает fn. Первый запуск сразу
func (s *Scheduler) Every(ctx context.Context, name string, interval time.Duration, fn func(ctx context.Context)) {
	ctx = s.track(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		fn(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				fn(ctx)
			case <-ctx.Done():
				s.logger.Info("Periodic task stopped", zap.String("task", name))
				return
			}
		}
	}()
}

// Stop останавливает все задачи и ждёт их завершения
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")

	s.mu.Lock()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) track(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancels = append(s.cancels, cancel)
	s.mu.Unlock()

	return ctx
}
