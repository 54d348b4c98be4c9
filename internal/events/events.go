// Package events описывает события жизненного цикла записей, которые
// публикуются в RabbitMQ после каждой успешной мутации.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_reservations/internal/model"
	"github.com/google/uuid"
)

type Type string

// Routing keys топик-обменника
const (
	ReservationCreated   Type = "reservation.created"
	ReservationApproved  Type = "reservation.approved"
	ReservationCancelled Type = "reservation.cancelled"
)

// AllReservationKeys - все ключи для привязки очереди
var AllReservationKeys = []string{
	string(ReservationCreated),
	string(ReservationApproved),
	string(ReservationCancelled),
}

type ReservationEvent struct {
	ID            string    `json:"id"`
	Type          Type      `json:"type"`
	ReservationID int64     `json:"reservation_id"`
	StudentID     string    `json:"student_id"`
	TutorID       string    `json:"tutor_id"`
	Approved      bool      `json:"approved"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewReservationEvent создаёт событие по состоянию записи
func NewReservationEvent(t Type, r *model.Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		ID:            uuid.NewString(),
		Type:          t,
		ReservationID: r.ID,
		StudentID:     r.StudentID,
		TutorID:       r.TutorID,
		Approved:      r.Approved,
		OccurredAt:    at.UTC(),
	}
}

// Decode разбирает тело сообщения. Тип берётся из routing key если в теле его нет
func Decode(routingKey string, body []byte) (ReservationEvent, error) {
	var ev ReservationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ReservationEvent{}, fmt.Errorf("unmarshal reservation event: %w", err)
	}
	if ev.Type == "" {
		ev.Type = Type(routingKey)
	}
	return ev, nil
}
