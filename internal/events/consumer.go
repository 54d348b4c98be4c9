package events

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Handler обрабатывает одно событие. Ошибка приводит к Nack без повторной постановки
type Handler func(ctx context.Context, ev ReservationEvent) error

type ConsumerConfig struct {
	URL      string
	Exchange string
	Queue    string
	Keys     []string
	Prefetch int
}

type Consumer struct {
	cfg    ConsumerConfig
	logger *zap.Logger
}

func NewConsumer(cfg ConsumerConfig, logger *zap.Logger) *Consumer {
	if len(cfg.Keys) == 0 {
		cfg.Keys = AllReservationKeys
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 8
	}
	return &Consumer{cfg: cfg, logger: logger}
}

// Run подключается, объявляет очередь и обрабатывает сообщения до отмены ctx
// или закрытия канала доставки
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(c.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	for _, key := range c.cfg.Keys {
		if err := ch.QueueBind(q.Name, key, c.cfg.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, q.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	c.logger.Info("Event consumer started",
		zap.String("queue", q.Name),
		zap.Strings("keys", c.cfg.Keys))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.deliver(ctx, d, handle)
		}
	}
}

func (c *Consumer) deliver(ctx context.Context, d amqp.Delivery, handle Handler) {
	ev, err := Decode(d.RoutingKey, d.Body)
	if err == nil {
		err = handle(ctx, ev)
	}
	if err != nil {
		c.logger.Error("Failed to handle event",
			zap.String("routing_key", d.RoutingKey),
			zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}
