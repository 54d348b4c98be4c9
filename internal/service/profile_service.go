package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_reservations/internal/model"
	"github.com/Freeeeeet/tutor_reservations/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountStore - операции над пользователями, нужные профилям
type AccountStore interface {
	UserStore
	Create(ctx context.Context, user *model.User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	UpdateName(ctx context.Context, id, name string) error
	AssignRole(ctx context.Context, id string, role model.Role) (bool, error)
}

// CatalogEditor - изменяющие операции над каталогом
type CatalogEditor interface {
	CatalogStore
	GetSubject(ctx context.Context, id int64) (*model.Subject, error)
	UpdateTutorProfile(ctx context.Context, id string, update model.TutorProfileUpdate) error
	SetAvailability(ctx context.Context, id string, available bool) (bool, error)
	AddTutorSubject(ctx context.Context, tutorID string, subjectID int64) error
	AddStudentInterest(ctx context.Context, studentID string, subjectID int64) error
}

type ProfileService struct {
	users        AccountStore
	catalog      CatalogEditor
	reservations ReservationStore
	cache        ViewCache
	logger       *zap.Logger
}

func NewProfileService(
	users AccountStore,
	catalog CatalogEditor,
	reservations ReservationStore,
	cache ViewCache,
	logger *zap.Logger,
) *ProfileService {
	if cache == nil {
		cache = noopCache{}
	}
	return &ProfileService{
		users:        users,
		catalog:      catalog,
		reservations: reservations,
		cache:        cache,
		logger:       logger,
	}
}

// RegisterTelegramUser находит пользователя по Telegram ID или создаёт нового без роли
func (s *ProfileService) RegisterTelegramUser(ctx context.Context, telegramID int64, name string) (*model.User, error) {
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, storageError("get user", err)
	}

	if user != nil {
		if name != "" && user.Name != name {
			if err := s.users.UpdateName(ctx, user.ID, name); err != nil {
				s.logger.Warn("Failed to update user name",
					zap.String("user_id", user.ID),
					zap.Error(err))
			} else {
				user.Name = name
			}
		}
		return user, nil
	}

	user = &model.User{
		ID:         uuid.NewString(),
		TelegramID: &telegramID,
		Name:       name,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, storageError("create user", err)
		}
		// Параллельный /start уже создал пользователя
		existing, err := s.users.GetByTelegramID(ctx, telegramID)
		if err != nil {
			return nil, storageError("get user", err)
		}
		if existing == nil {
			return nil, storageError("create user", fmt.Errorf("telegram user %d vanished after conflict", telegramID))
		}
		return existing, nil
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID),
		zap.Int64("telegram_id", telegramID))

	return user, nil
}

// GetUser получает пользователя по ID
func (s *ProfileService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storageError("get user", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return user, nil
}

// GetUserByTelegramID получает пользователя по Telegram ID
func (s *ProfileService) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, storageError("get user", err)
	}
	if user == nil {
		return nil, fmt.Errorf("telegram user %d: %w", telegramID, ErrNotFound)
	}
	return user, nil
}

// AssignRole назначает роль. Роль назначается один раз, повтор той же роли - no-op
func (s *ProfileService) AssignRole(ctx context.Context, userID string, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("role %q: %w", role, ErrInvalidInput)
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.HasRole() {
		if user.Role == role {
			return user, nil
		}
		return nil, fmt.Errorf("user %s already has role %s: %w", userID, user.Role, ErrConflict)
	}

	assigned, err := s.users.AssignRole(ctx, userID, role)
	if err != nil {
		return nil, storageError("assign role", err)
	}

	if !assigned {
		// Роль успели назначить параллельно
		current, err := s.GetUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if current.Role != role {
			return nil, fmt.Errorf("user %s already has role %s: %w", userID, current.Role, ErrConflict)
		}
		return current, nil
	}

	user.Role = role

	s.logger.Info("Role assigned",
		zap.String("user_id", userID),
		zap.String("role", string(role)))

	return user, nil
}

// UpdateTutorProfile обновляет профиль репетитора и сбрасывает кэш записей его студентов
func (s *ProfileService) UpdateTutorProfile(ctx context.Context, tutorID string, update model.TutorProfileUpdate) (*model.TutorProfile, error) {
	if err := validateProfileUpdate(update); err != nil {
		return nil, err
	}

	if _, err := s.GetTutorProfile(ctx, tutorID); err != nil {
		return nil, err
	}

	if err := s.catalog.UpdateTutorProfile(ctx, tutorID, update); err != nil {
		return nil, storageError("update tutor profile", err)
	}

	// Цена и контакты встроены в представления записей студентов
	s.invalidateTutorViews(ctx, tutorID)

	return s.GetTutorProfile(ctx, tutorID)
}

// SetAvailability включает или выключает приём новых записей
func (s *ProfileService) SetAvailability(ctx context.Context, tutorID string, available bool) error {
	if _, err := s.requireRole(ctx, tutorID, model.RoleTutor); err != nil {
		return err
	}

	existed, err := s.catalog.SetAvailability(ctx, tutorID, available)
	if err != nil {
		return storageError("set availability", err)
	}
	if !existed {
		return fmt.Errorf("tutor %s: %w", tutorID, ErrNotFound)
	}

	s.logger.Info("Tutor availability changed",
		zap.String("tutor_id", tutorID),
		zap.Bool("available", available))

	return nil
}

// AddTutorSubject добавляет предмет, который преподаёт репетитор
func (s *ProfileService) AddTutorSubject(ctx context.Context, tutorID string, subjectID int64) error {
	if _, err := s.requireRole(ctx, tutorID, model.RoleTutor); err != nil {
		return err
	}
	if err := s.requireSubject(ctx, subjectID); err != nil {
		return err
	}

	if err := s.catalog.AddTutorSubject(ctx, tutorID, subjectID); err != nil {
		return storageError("add tutor subject", err)
	}
	return nil
}

// AddStudentInterest отмечает предмет, который хочет изучать студент
func (s *ProfileService) AddStudentInterest(ctx context.Context, studentID string, subjectID int64) error {
	if _, err := s.requireRole(ctx, studentID, model.RoleStudent); err != nil {
		return err
	}
	if err := s.requireSubject(ctx, subjectID); err != nil {
		return err
	}

	if err := s.catalog.AddStudentInterest(ctx, studentID, subjectID); err != nil {
		return storageError("add student interest", err)
	}
	return nil
}

// GetTutorProfile получает карточку репетитора с названиями предметов
func (s *ProfileService) GetTutorProfile(ctx context.Context, tutorID string) (*model.TutorProfile, error) {
	tutor, err := s.catalog.GetTutor(ctx, tutorID)
	if err != nil {
		return nil, storageError("get tutor", err)
	}
	if tutor == nil {
		return nil, fmt.Errorf("tutor %s: %w", tutorID, ErrNotFound)
	}

	subjects, err := s.catalog.ListSubjects(ctx)
	if err != nil {
		return nil, storageError("list subjects", err)
	}
	resolveSubjects(s.logger, []*model.TutorProfile{tutor}, model.SubjectIndex(subjects))

	return tutor, nil
}

// ListSubjects получает справочник предметов
func (s *ProfileService) ListSubjects(ctx context.Context) ([]*model.Subject, error) {
	subjects, err := s.catalog.ListSubjects(ctx)
	if err != nil {
		return nil, storageError("list subjects", err)
	}
	return subjects, nil
}

func (s *ProfileService) requireRole(ctx context.Context, userID string, role model.Role) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storageError("get user", err)
	}
	if user == nil || user.Role != role {
		return nil, fmt.Errorf("%s %s: %w", role, userID, ErrNotFound)
	}
	return user, nil
}

func (s *ProfileService) requireSubject(ctx context.Context, subjectID int64) error {
	subject, err := s.catalog.GetSubject(ctx, subjectID)
	if err != nil {
		return storageError("get subject", err)
	}
	if subject == nil {
		return fmt.Errorf("subject %d: %w", subjectID, ErrNotFound)
	}
	return nil
}

func (s *ProfileService) invalidateTutorViews(ctx context.Context, tutorID string) {
	reservations, err := s.reservations.FindByTutor(ctx, tutorID)
	if err != nil {
		s.logger.Error("Failed to load reservations for invalidation",
			zap.String("tutor_id", tutorID),
			zap.Error(err))
		return
	}

	ids := make([]string, 0, len(reservations)+1)
	ids = append(ids, tutorID)
	for _, r := range reservations {
		ids = append(ids, r.StudentID)
	}

	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		s.logger.Error("Failed to invalidate reservation views",
			zap.String("tutor_id", tutorID),
			zap.Error(err))
	}
}

func validateProfileUpdate(update model.TutorProfileUpdate) error {
	if update.PricePerHour != nil && *update.PricePerHour < 0 {
		return fmt.Errorf("price %d: %w", *update.PricePerHour, ErrInvalidInput)
	}

	for _, mode := range update.StudyModes {
		if mode != model.StudyModeInPerson && mode != model.StudyModeOnline {
			return fmt.Errorf("study mode %q: %w", mode, ErrInvalidInput)
		}
	}

	for _, language := range update.Languages {
		if strings.TrimSpace(language) == "" {
			return fmt.Errorf("empty language: %w", ErrInvalidInput)
		}
	}

	return nil
}
