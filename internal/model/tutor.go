package model

import "time"

type StudyMode string

const (
	StudyModeInPerson StudyMode = "in_person" // Очно
	StudyModeOnline   StudyMode = "online"    // Онлайн
)

// TutorProfile - карточка репетитора в каталоге
type TutorProfile struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	Description  string      `json:"description"`
	PricePerHour int         `json:"price_per_hour"` // в целых единицах валюты
	IsAvailable  bool        `json:"is_available"`
	SubjectIDs   []int64     `json:"-"`
	Languages    []string    `json:"languages"`
	StudyModes   []StudyMode `json:"study_modes"`
	CreatedAt    time.Time   `json:"created_at"`

	// Заполняется сервисом по SubjectIDs (не из БД)
	Subjects []*Subject `json:"subjects"`
}

// Summary возвращает краткую информацию для встраивания в запись
func (t *TutorProfile) Summary() TutorSummary {
	return TutorSummary{
		ID:           t.ID,
		Name:         t.Name,
		Email:        t.Email,
		Phone:        t.Phone,
		PricePerHour: t.PricePerHour,
	}
}

type TutorSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	PricePerHour int    `json:"price_per_hour"`
}

// TutorProfileUpdate - изменяемые поля профиля, nil означает "не менять"
type TutorProfileUpdate struct {
	Phone        *string     `json:"phone"`
	Description  *string     `json:"description"`
	PricePerHour *int        `json:"price_per_hour"`
	Languages    []string    `json:"languages"`
	StudyModes   []StudyMode `json:"study_modes"`
}
