package httpapi

import "github.com/Freeeeeet/tutor_reservations/internal/model"

type reserveRequest struct {
	TutorID string `json:"tutor_id" validate:"required"`
}

// Диапазон оценки и длину комментария проверяет сервис
type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type roleRequest struct {
	Role model.Role `json:"role"`
}

type availabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

type subjectRequest struct {
	SubjectID int64 `json:"subject_id" validate:"required,gt=0"`
}
