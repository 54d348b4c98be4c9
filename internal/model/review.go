package model

import "time"

const (
	RatingMin = 1
	RatingMax = 5
)

type Review struct {
	ID            int64     `json:"id"`
	ReservationID int64     `json:"reservation_id"`
	TutorID       string    `json:"tutor_id"`
	StudentID     string    `json:"student_id"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
