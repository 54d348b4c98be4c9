package events

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// DefaultQueueSize - ёмкость очереди событий без брокера
const DefaultQueueSize = 256

var ErrQueueFull = errors.New("event queue is full")

// Queue передаёт события обработчику в том же процессе, без брокера.
// Publish не ждёт обработчик: события буферизуются и разбираются в Run
type Queue struct {
	events chan ReservationEvent
	logger *zap.Logger
}

func NewQueue(size int, logger *zap.Logger) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		events: make(chan ReservationEvent, size),
		logger: logger,
	}
}

// Publish ставит событие в очередь. При переполнении событие отбрасывается с ErrQueueFull
func (q *Queue) Publish(ctx context.Context, ev ReservationEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.events <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run разбирает очередь до отмены ctx. Ошибки обработчика логируются, событие не повторяется
func (q *Queue) Run(ctx context.Context, handle Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-q.events:
			if err := handle(ctx, ev); err != nil {
				q.logger.Error("Failed to handle reservation event",
					zap.String("type", string(ev.Type)),
					zap.Int64("reservation_id", ev.ReservationID),
					zap.Error(err))
			}
		}
	}
}
