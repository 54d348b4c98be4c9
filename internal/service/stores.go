package service

import (
	"context"

	"github.com/Freeeeeet/tutor_reservations/internal/events"
	"github.com/Freeeeeet/tutor_reservations/internal/model"
)

// ReservationStore - доступ к таблице reservations.
// Все операции атомарны на уровне одной строки
type ReservationStore interface {
	Insert(ctx context.Context, studentID, tutorID string) (int64, error)
	FindByID(ctx context.Context, id int64) (*model.Reservation, error)
	FindByStudent(ctx context.Context, studentID string) ([]*model.Reservation, error)
	FindByTutor(ctx context.Context, tutorID string) ([]*model.Reservation, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
	UpdateApproval(ctx context.Context, id int64, approved bool) (bool, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetStudentSummaries(ctx context.Context, ids []string) ([]*model.StudentSummary, error)
}

// CatalogStore - read-only проекция каталога репетиторов
type CatalogStore interface {
	ListAvailableTutors(ctx context.Context) ([]*model.TutorProfile, error)
	GetTutor(ctx context.Context, id string) (*model.TutorProfile, error)
	GetTutorsByIDs(ctx context.Context, ids []string) ([]*model.TutorProfile, error)
	ListSubjects(ctx context.Context) ([]*model.Subject, error)
}

// ViewCache хранит материализованные списки записей.
// Version читается до запроса в БД; Store* не пишут, если после этого был Invalidate
type ViewCache interface {
	Version(ctx context.Context, userID string) (int64, error)
	StudentReservations(ctx context.Context, studentID string) ([]*model.ReservationView, bool, error)
	StoreStudentReservations(ctx context.Context, studentID string, version int64, views []*model.ReservationView) error
	TutorReservations(ctx context.Context, tutorID string) ([]*model.TutorReservationView, bool, error)
	StoreTutorReservations(ctx context.Context, tutorID string, version int64, views []*model.TutorReservationView) error
	Invalidate(ctx context.Context, userIDs ...string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.ReservationEvent) error
}

type noopCache struct{}

func (noopCache) Version(context.Context, string) (int64, error) { return 0, nil }

func (noopCache) StudentReservations(context.Context, string) ([]*model.ReservationView, bool, error) {
	return nil, false, nil
}

func (noopCache) StoreStudentReservations(context.Context, string, int64, []*model.ReservationView) error {
	return nil
}

func (noopCache) TutorReservations(context.Context, string) ([]*model.TutorReservationView, bool, error) {
	return nil, false, nil
}

func (noopCache) StoreTutorReservations(context.Context, string, int64, []*model.TutorReservationView) error {
	return nil
}

func (noopCache) Invalidate(context.Context, ...string) error { return nil }

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, events.ReservationEvent) error { return nil }
