package model

import "time"

// Reservation - запись студента к репетитору. Отмена = удаление строки
type Reservation struct {
	ID        int64     `json:"id"`
	StudentID string    `json:"student_id"`
	TutorID   string    `json:"tutor_id"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReservationView - запись вместе с данными репетитора (дашборд студента)
type ReservationView struct {
	Reservation
	Tutor TutorSummary `json:"tutor"`
}

// TutorReservationView - запись вместе с данными студента (экран репетитора)
type TutorReservationView struct {
	Reservation
	Student StudentSummary `json:"student"`
}
