package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	publishAttempts = 3
	redialDelay     = 200 * time.Millisecond
)

// session - соединение и канал брокера, которыми пользуется Publisher
type session interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

type dialer func() (session, error)

// Publisher публикует события в topic exchange.
// После обрыва соединения переподключается при следующей публикации
type Publisher struct {
	mu       sync.Mutex
	dial     dialer
	sess     session
	exchange string
	delay    time.Duration
	logger   *zap.Logger
}

// NewPublisher подключается к брокеру и объявляет topic exchange
func NewPublisher(url, exchange string, logger *zap.Logger) (*Publisher, error) {
	dial := func() (session, error) { return dialSession(url, exchange) }
	return newPublisher(dial, exchange, redialDelay, logger)
}

func newPublisher(dial dialer, exchange string, delay time.Duration, logger *zap.Logger) (*Publisher, error) {
	sess, err := dial()
	if err != nil {
		return nil, err
	}
	return &Publisher{
		dial:     dial,
		sess:     sess,
		exchange: exchange,
		delay:    delay,
		logger:   logger,
	}, nil
}

// Publish отправляет событие с routing key = тип события
func (p *Publisher) Publish(ctx context.Context, ev ReservationEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	}

	backoff := retry.WithMaxRetries(publishAttempts-1, retry.NewConstant(p.delay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		return p.publish(ctx, string(ev.Type), msg)
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}

	p.logger.Debug("Event published",
		zap.String("type", string(ev.Type)),
		zap.Int64("reservation_id", ev.ReservationID))

	return nil
}

func (p *Publisher) publish(ctx context.Context, key string, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sess == nil || p.sess.IsClosed() {
		p.drop()
		sess, err := p.dial()
		if err != nil {
			return retry.RetryableError(err)
		}
		p.logger.Info("Reconnected to rabbitmq", zap.String("exchange", p.exchange))
		p.sess = sess
	}

	if err := p.sess.PublishWithContext(ctx, p.exchange, key, false, false, msg); err != nil {
		if errors.Is(err, amqp.ErrClosed) || p.sess.IsClosed() {
			p.logger.Warn("RabbitMQ channel closed, reconnecting", zap.Error(err))
			p.drop()
			return retry.RetryableError(err)
		}
		return err
	}
	return nil
}

func (p *Publisher) drop() {
	if p.sess != nil {
		_ = p.sess.Close()
		p.sess = nil
	}
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sess == nil {
		return nil
	}
	err := p.sess.Close()
	p.sess = nil
	return err
}

// amqpSession - реальное соединение с открытым каналом
type amqpSession struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func dialSession(url, exchange string) (session, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &amqpSession{conn: conn, ch: ch}, nil
}

func (s *amqpSession) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return s.ch.PublishWithContext(ctx, exchange, key, mandatory, immediate, msg)
}

func (s *amqpSession) IsClosed() bool {
	return s.conn.IsClosed() || s.ch.IsClosed()
}

func (s *amqpSession) Close() error {
	_ = s.ch.Close()
	return s.conn.Close()
}
