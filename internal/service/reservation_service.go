package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_reservations/internal/events"
	"github.com/Freeeeeet/tutor_reservations/internal/model"
	"github.com/Freeeeeet/tutor_reservations/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/Freeeeeet/tutor_reservations/internal/service")

// StudentDashboard - всё, что нужно для главного экрана студента
type StudentDashboard struct {
	Student      *model.User              `json:"student"`
	Reservations []*model.ReservationView `json:"reservations"`
	QuickPicks   []*model.TutorProfile    `json:"quick_picks"`
}

type ReservationService struct {
	users        UserStore
	catalog      CatalogStore
	reservations ReservationStore
	cache        ViewCache
	publisher    EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewReservationService создаёт движок записей. cache и publisher могут быть nil
func NewReservationService(
	users UserStore,
	catalog CatalogStore,
	reservations ReservationStore,
	cache ViewCache,
	publisher EventPublisher,
	logger *zap.Logger,
) *ReservationService {
	if cache == nil {
		cache = noopCache{}
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &ReservationService{
		users:        users,
		catalog:      catalog,
		reservations: reservations,
		cache:        cache,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// ListReservationsForStudent возвращает записи студента вместе с данными репетиторов
func (s *ReservationService) ListReservationsForStudent(ctx context.Context, studentID string) (_ []*model.ReservationView, err error) {
	ctx, span := tracer.Start(ctx, "ReservationService.ListReservationsForStudent",
		trace.WithAttributes(attribute.String("student_id", studentID)))
	defer func() { endSpan(span, err) }()

	if _, err := s.requireStudent(ctx, studentID); err != nil {
		return nil, err
	}

	if views, ok, err := s.cache.StudentReservations(ctx, studentID); err != nil {
		s.logger.Warn("Failed to read cached reservations",
			zap.String("student_id", studentID),
			zap.Error(err))
	} else if ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return views, nil
	}

	version, cacheable := s.viewsVersion(ctx, studentID)

	reservations, err := s.reservations.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, storageError("find reservations", err)
	}

	tutorIDs := make([]string, 0, len(reservations))
	for _, r := range reservations {
		tutorIDs = append(tutorIDs, r.TutorID)
	}

	tutors, err := s.catalog.GetTutorsByIDs(ctx, tutorIDs)
	if err != nil {
		return nil, storageError("get tutors", err)
	}

	byID := make(map[string]*model.TutorProfile, len(tutors))
	for _, t := range tutors {
		byID[t.ID] = t
	}

	views := make([]*model.ReservationView, 0, len(reservations))
	for _, r := range reservations {
		tutor, ok := byID[r.TutorID]
		if !ok {
			s.logger.Warn("Reservation references missing tutor",
				zap.Int64("reservation_id", r.ID),
				zap.String("tutor_id", r.TutorID))
			continue
		}
		views = append(views, &model.ReservationView{Reservation: *r, Tutor: tutor.Summary()})
	}

	if cacheable {
		if err := s.cache.StoreStudentReservations(ctx, studentID, version, views); err != nil {
			s.logger.Warn("Failed to cache reservations",
				zap.String("student_id", studentID),
				zap.Error(err))
		}
	}

	return views, nil
}

// ListReservationsForTutor возвращает записи к репетитору вместе с данными студентов
func (s *ReservationService) ListReservationsForTutor(ctx context.Context, tutorID string) (_ []*model.TutorReservationView, err error) {
	ctx, span := tracer.Start(ctx, "ReservationService.ListReservationsForTutor",
		trace.WithAttributes(attribute.String("tutor_id", tutorID)))
	defer func() { endSpan(span, err) }()

	user, err := s.users.GetByID(ctx, tutorID)
	if err != nil {
		return nil, storageError("get tutor", err)
	}
	if user == nil || !user.IsTutor() {
		return nil, fmt.Errorf("tutor %s: %w", tutorID, ErrNotFound)
	}

	if views, ok, err := s.cache.TutorReservations(ctx, tutorID); err != nil {
		s.logger.Warn("Failed to read cached tutor reservations",
			zap.String("tutor_id", tutorID),
			zap.Error(err))
	} else if ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return views, nil
	}

	version, cacheable := s.viewsVersion(ctx, tutorID)

	reservations, err := s.reservations.FindByTutor(ctx, tutorID)
	if err != nil {
		return nil, storageError("find reservations", err)
	}

	studentIDs := make([]string, 0, len(reservations))
	for _, r := range reservations {
		studentIDs = append(studentIDs, r.StudentID)
	}

	students, err := s.users.GetStudentSummaries(ctx, studentIDs)
	if err != nil {
		return nil, storageError("get students", err)
	}

	byID := make(map[string]*model.StudentSummary, len(students))
	for _, st := range students {
		byID[st.ID] = st
	}

	views := make([]*model.TutorReservationView, 0, len(reservations))
	for _, r := range reservations {
		student, ok := byID[r.StudentID]
		if !ok {
			s.logger.Warn("Reservation references missing student",
				zap.Int64("reservation_id", r.ID),
				zap.String("student_id", r.StudentID))
			continue
		}
		views = append(views, &model.TutorReservationView{Reservation: *r, Student: *student})
	}

	if cacheable {
		if err := s.cache.StoreTutorReservations(ctx, tutorID, version, views); err != nil {
			s.logger.Warn("Failed to cache tutor reservations",
				zap.String("tutor_id", tutorID),
				zap.Error(err))
		}
	}

	return views, nil
}

// Reserve записывает студента к репетитору
func (s *ReservationService) Reserve(ctx context.Context, studentID, tutorID string) (_ *model.ReservationView, err error) {
	ctx, span := tracer.Start(ctx, "ReservationService.Reserve",
		trace.WithAttributes(
			attribute.String("student_id", studentID),
			attribute.String("tutor_id", tutorID)))
	defer func() { endSpan(span, err) }()

	if _, err := s.requireStudent(ctx, studentID); err != nil {
		return nil, err
	}

	// GetTutor фильтрует по role = 'tutor'
	tutor, err := s.catalog.GetTutor(ctx, tutorID)
	if err != nil {
		return nil, storageError("get tutor", err)
	}
	if tutor == nil {
		return nil, fmt.Errorf("tutor %s: %w", tutorID, ErrNotFound)
	}

	// Быстрая проверка для понятной ошибки. Гарантию даёт UNIQUE (student_id, tutor_id)
	existing, err := s.reservations.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, storageError("find reservations", err)
	}
	for _, r := range existing {
		if r.TutorID == tutorID {
			return nil, fmt.Errorf("reservation %d for tutor %s: %w", r.ID, tutorID, ErrConflict)
		}
	}

	if !tutor.IsAvailable {
		return nil, fmt.Errorf("tutor %s is not available: %w", tutorID, ErrInvalidState)
	}

	id, err := s.reservations.Insert(ctx, studentID, tutorID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("tutor %s: %w", tutorID, ErrConflict)
		}
		return nil, storageError("insert reservation", err)
	}

	reservation, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, storageError("get reservation", err)
	}
	if reservation == nil {
		return nil, storageError("get reservation", fmt.Errorf("reservation %d vanished after insert", id))
	}

	s.logger.Info("Reservation created",
		zap.Int64("reservation_id", reservation.ID),
		zap.String("student_id", studentID),
		zap.String("tutor_id", tutorID),
	)

	s.afterMutation(ctx, events.ReservationCreated, reservation)

	return &model.ReservationView{Reservation: *reservation, Tutor: tutor.Summary()}, nil
}

// Cancel удаляет запись. Отменить может только студент-владелец
func (s *ReservationService) Cancel(ctx context.Context, reservationID int64, requesterID string) (err error) {
	ctx, span := tracer.Start(ctx, "ReservationService.Cancel",
		trace.WithAttributes(
			attribute.Int64("reservation_id", reservationID),
			attribute.String("requester_id", requesterID)))
	defer func() { endSpan(span, err) }()

	reservation, err := s.reservations.FindByID(ctx, reservationID)
	if err != nil {
		return storageError("get reservation", err)
	}
	if reservation == nil {
		return fmt.Errorf("reservation %d: %w", reservationID, ErrNotFound)
	}

	if reservation.StudentID != requesterID {
		return fmt.Errorf("reservation %d belongs to another student: %w", reservationID, ErrForbidden)
	}

	existed, err := s.reservations.DeleteByID(ctx, reservationID)
	if err != nil {
		return storageError("delete reservation", err)
	}
	if !existed {
		return fmt.Errorf("reservation %d: %w", reservationID, ErrNotFound)
	}

	s.logger.Info("Reservation cancelled",
		zap.Int64("reservation_id", reservationID),
		zap.String("student_id", reservation.StudentID),
		zap.String("tutor_id", reservation.TutorID),
	)

	s.afterMutation(ctx, events.ReservationCancelled, reservation)

	return nil
}

// Approve одобряет запись. Одобрить может только репетитор, к которому записались
func (s *ReservationService) Approve(ctx context.Context, reservationID int64, tutorID string) (_ *model.ReservationView, err error) {
	ctx, span := tracer.Start(ctx, "ReservationService.Approve",
		trace.WithAttributes(
			attribute.Int64("reservation_id", reservationID),
			attribute.String("tutor_id", tutorID)))
	defer func() { endSpan(span, err) }()

	reservation, err := s.reservations.FindByID(ctx, reservationID)
	if err != nil {
		return nil, storageError("get reservation", err)
	}
	if reservation == nil {
		return nil, fmt.Errorf("reservation %d: %w", reservationID, ErrNotFound)
	}

	if reservation.TutorID != tutorID {
		return nil, fmt.Errorf("reservation %d addressed to another tutor: %w", reservationID, ErrForbidden)
	}

	if reservation.Approved {
		return nil, fmt.Errorf("reservation %d: %w", reservationID, ErrAlreadyApproved)
	}

	existed, err := s.reservations.UpdateApproval(ctx, reservationID, true)
	if err != nil {
		return nil, storageError("update approval", err)
	}
	if !existed {
		return nil, fmt.Errorf("reservation %d: %w", reservationID, ErrNotFound)
	}

	updated, err := s.reservations.FindByID(ctx, reservationID)
	if err != nil {
		return nil, storageError("get reservation", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("reservation %d: %w", reservationID, ErrNotFound)
	}

	tutor, err := s.catalog.GetTutor(ctx, tutorID)
	if err != nil {
		return nil, storageError("get tutor", err)
	}

	s.logger.Info("Reservation approved",
		zap.Int64("reservation_id", reservationID),
		zap.String("tutor_id", tutorID),
	)

	s.afterMutation(ctx, events.ReservationApproved, updated)

	view := &model.ReservationView{Reservation: *updated}
	if tutor != nil {
		view.Tutor = tutor.Summary()
	}
	return view, nil
}

// Recommend возвращает список "быстрой записи": доступные репетиторы,
// к которым студент ещё не записан, в порядке каталога.
// Полный проход по каталогу: O(tutors + reservations)
func (s *ReservationService) Recommend(ctx context.Context, studentID string, limit int) (_ []*model.TutorProfile, err error) {
	ctx, span := tracer.Start(ctx, "ReservationService.Recommend",
		trace.WithAttributes(
			attribute.String("student_id", studentID),
			attribute.Int("limit", limit)))
	defer func() { endSpan(span, err) }()

	if _, err := s.requireStudent(ctx, studentID); err != nil {
		return nil, err
	}

	tutors, err := s.catalog.ListAvailableTutors(ctx)
	if err != nil {
		return nil, storageError("list tutors", err)
	}

	reserved, err := s.reservations.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, storageError("find reservations", err)
	}

	picks := SelectRecommendations(tutors, reserved, limit)
	if len(picks) == 0 {
		return picks, nil
	}

	subjects, err := s.catalog.ListSubjects(ctx)
	if err != nil {
		return nil, storageError("list subjects", err)
	}
	resolveSubjects(s.logger, picks, model.SubjectIndex(subjects))

	return picks, nil
}

// Dashboard собирает главный экран студента
func (s *ReservationService) Dashboard(ctx context.Context, studentID string, limit int) (*StudentDashboard, error) {
	student, err := s.requireStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	reservations, err := s.ListReservationsForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	picks, err := s.Recommend(ctx, studentID, limit)
	if err != nil {
		return nil, err
	}

	return &StudentDashboard{
		Student:      student,
		Reservations: reservations,
		QuickPicks:   picks,
	}, nil
}

// GetReservation получает запись по ID (для экранов подтверждения)
func (s *ReservationService) GetReservation(ctx context.Context, reservationID int64) (*model.Reservation, error) {
	reservation, err := s.reservations.FindByID(ctx, reservationID)
	if err != nil {
		return nil, storageError("get reservation", err)
	}
	if reservation == nil {
		return nil, fmt.Errorf("reservation %d: %w", reservationID, ErrNotFound)
	}
	return reservation, nil
}

func (s *ReservationService) requireStudent(ctx context.Context, studentID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return nil, storageError("get student", err)
	}
	if user == nil || !user.IsStudent() {
		return nil, fmt.Errorf("student %s: %w", studentID, ErrNotFound)
	}
	return user, nil
}

// resolveSubjects заполняет Subjects по явному отображению ID -> Subject.
// Ссылки на несуществующие предметы пропускаются
func resolveSubjects(logger *zap.Logger, tutors []*model.TutorProfile, index map[int64]*model.Subject) {
	for _, t := range tutors {
		t.Subjects = make([]*model.Subject, 0, len(t.SubjectIDs))
		for _, id := range t.SubjectIDs {
			subject, ok := index[id]
			if !ok {
				logger.Warn("Tutor references unknown subject",
					zap.String("tutor_id", t.ID),
					zap.Int64("subject_id", id))
				continue
			}
			t.Subjects = append(t.Subjects, subject)
		}
	}
}

// viewsVersion читает поколение кэша до похода в БД. Без него список не кэшируется
func (s *ReservationService) viewsVersion(ctx context.Context, userID string) (int64, bool) {
	version, err := s.cache.Version(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to read views version",
			zap.String("user_id", userID),
			zap.Error(err))
		return 0, false
	}
	return version, true
}

// afterMutation сбрасывает кэш представлений студента и репетитора и публикует событие.
// Мутация уже применена, поэтому ошибки здесь только логируются
func (s *ReservationService) afterMutation(ctx context.Context, t events.Type, r *model.Reservation) {
	if err := s.cache.Invalidate(ctx, r.StudentID, r.TutorID); err != nil {
		s.logger.Error("Failed to invalidate reservation views",
			zap.Int64("reservation_id", r.ID),
			zap.String("student_id", r.StudentID),
			zap.String("tutor_id", r.TutorID),
			zap.Error(err))
	}

	if err := s.publisher.Publish(ctx, events.NewReservationEvent(t, r, s.now())); err != nil {
		s.logger.Error("Failed to publish reservation event",
			zap.String("type", string(t)),
			zap.Int64("reservation_id", r.ID),
			zap.Error(err))
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
