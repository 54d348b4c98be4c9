package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_reservations/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultTTL = 5 * time.Minute

// versionTTL - сколько живёт счётчик поколений без сбросов. Должен быть заметно больше ttl
const versionTTL = 24 * time.Hour

var errStaleVersion = errors.New("reservation views version changed")

// ReservationViews - кэш списков записей студента и репетитора в Redis.
// Значение - JSON, ключи prefix:reservations:student:<id> и prefix:reservations:tutor:<id>.
// prefix:reservations:version:<id> - поколение представлений пользователя, Invalidate его увеличивает
type ReservationViews struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

func NewReservationViews(client redis.UniversalClient, prefix string, ttl time.Duration, logger *zap.Logger) *ReservationViews {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = "tutor"
	}
	return &ReservationViews{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *ReservationViews) studentKey(id string) string {
	return fmt.Sprintf("%s:reservations:student:%s", c.prefix, id)
}

func (c *ReservationViews) tutorKey(id string) string {
	return fmt.Sprintf("%s:reservations:tutor:%s", c.prefix, id)
}

func (c *ReservationViews) versionKey(id string) string {
	return fmt.Sprintf("%s:reservations:version:%s", c.prefix, id)
}

// Version возвращает текущее поколение представлений пользователя. 0 если сбросов не было
func (c *ReservationViews) Version(ctx context.Context, userID string) (int64, error) {
	version, err := c.client.Get(ctx, c.versionKey(userID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("get views version: %w", err)
	}
	return version, nil
}

func (c *ReservationViews) StudentReservations(ctx context.Context, studentID string) ([]*model.ReservationView, bool, error) {
	var views []*model.ReservationView
	ok, err := c.load(ctx, c.studentKey(studentID), &views)
	return views, ok, err
}

// StoreStudentReservations сохраняет список, если с момента чтения version не было сброса
func (c *ReservationViews) StoreStudentReservations(ctx context.Context, studentID string, version int64, views []*model.ReservationView) error {
	return c.store(ctx, c.studentKey(studentID), c.versionKey(studentID), version, views)
}

func (c *ReservationViews) TutorReservations(ctx context.Context, tutorID string) ([]*model.TutorReservationView, bool, error) {
	var views []*model.TutorReservationView
	ok, err := c.load(ctx, c.tutorKey(tutorID), &views)
	return views, ok, err
}

func (c *ReservationViews) StoreTutorReservations(ctx context.Context, tutorID string, version int64, views []*model.TutorReservationView) error {
	return c.store(ctx, c.tutorKey(tutorID), c.versionKey(tutorID), version, views)
}

// Invalidate удаляет оба представления для каждого пользователя и сдвигает его поколение.
// Пользователь может быть только в одной роли, лишний ключ просто отсутствует
func (c *ReservationViews) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range userIDs {
			pipe.Incr(ctx, c.versionKey(id))
			pipe.Expire(ctx, c.versionKey(id), versionTTL)
			pipe.Del(ctx, c.studentKey(id), c.tutorKey(id))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate reservation views: %w", err)
	}

	c.logger.Debug("Reservation views invalidated", zap.Strings("user_ids", userIDs))
	return nil
}

func (c *ReservationViews) load(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		// Битое значение считаем промахом и удаляем
		c.logger.Warn("Dropping corrupted cache entry", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, key).Err()
		return false, nil
	}

	return true, nil
}

// store пишет значение под WATCH ключа поколения: сброс между чтением из БД и записью
// отменяет запись, устаревший список в кэш не попадает
func (c *ReservationViews) store(ctx context.Context, key, versionKey string, version int64, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleVersion
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, c.ttl)
			return nil
		})
		return err
	}, versionKey)

	if errors.Is(err, errStaleVersion) || errors.Is(err, redis.TxFailedErr) {
		c.logger.Debug("Skipping stale reservation views", zap.String("key", key))
		return nil
	}
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	return nil
}
