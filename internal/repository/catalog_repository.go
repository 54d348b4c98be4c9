package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_reservations/internal/model"
	"github.com/Freeeeeet/tutor_reservations/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Каталог репетиторов: профиль + агрегированные предметы, языки и форматы занятий
const tutorSelect = `
	SELECT t.id, u.name, u.email, t.phone_number, t.description, t.price_per_hour, t.is_available, t.created_at,
		COALESCE((SELECT array_agg(ts.subject_id ORDER BY ts.subject_id) FROM tutor_subjects ts WHERE ts.tutor_id = t.id), '{}'),
		COALESCE((SELECT array_agg(tl.language ORDER BY tl.language) FROM tutor_languages tl WHERE tl.tutor_id = t.id), '{}'),
		COALESCE((SELECT array_agg(tm.study_mode ORDER BY tm.study_mode) FROM tutor_study_modes tm WHERE tm.tutor_id = t.id), '{}')
	FROM tutors t
	INNER JOIN users u ON u.id = t.id
	WHERE u.role = 'tutor'`

type CatalogRepository struct {
	*base.Repository
	logger *zap.Logger
}

func NewCatalogRepository(pool *pgxpool.Pool, logger *zap.Logger) *CatalogRepository {
	return &CatalogRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

// ListAvailableTutors получает доступных репетиторов в порядке появления в каталоге
func (r *CatalogRepository) ListAvailableTutors(ctx context.Context) ([]*model.TutorProfile, error) {
	query := tutorSelect + ` AND t.is_available = true ORDER BY t.created_at, t.id`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get available tutors: %w", err)
	}

	tutors, err := collectTutors(rows)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Retrieved available tutors", zap.Int("count", len(tutors)))

	return tutors, nil
}

// GetTutor получает профиль репетитора независимо от доступности
func (r *CatalogRepository) GetTutor(ctx context.Context, id string) (*model.TutorProfile, error) {
	query := tutorSelect + ` AND t.id = $1`

	tutor, err := scanTutor(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tutor by id: %w", err)
	}

	return tutor, nil
}

// GetTutorsByIDs получает профили репетиторов по списку ID
func (r *CatalogRepository) GetTutorsByIDs(ctx context.Context, ids []string) ([]*model.TutorProfile, error) {
	if len(ids) == 0 {
		return []*model.TutorProfile{}, nil
	}

	query := tutorSelect + ` AND t.id = ANY($1) ORDER BY t.created_at, t.id`

	rows, err := r.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get tutors by ids: %w", err)
	}

	return collectTutors(rows)
}

// ListSubjects получает все предметы каталога
func (r *CatalogRepository) ListSubjects(ctx context.Context) ([]*model.Subject, error) {
	rows, err := r.Query(ctx, `SELECT id, name FROM subjects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("get subjects: %w", err)
	}
	defer rows.Close()

	subjects := []*model.Subject{}
	for rows.Next() {
		var subject model.Subject
		if err := rows.Scan(&subject.ID, &subject.Name); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, &subject)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subjects: %w", err)
	}

	return subjects, nil
}

// GetSubject получает предмет по ID
func (r *CatalogRepository) GetSubject(ctx context.Context, id int64) (*model.Subject, error) {
	var subject model.Subject
	err := r.QueryRow(ctx, `SELECT id, name FROM subjects WHERE id = $1`, id).Scan(&subject.ID, &subject.Name)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subject by id: %w", err)
	}

	return &subject, nil
}

// UpdateTutorProfile обновляет поля профиля. Списки языков и форматов заменяются целиком
func (r *CatalogRepository) UpdateTutorProfile(ctx context.Context, id string, update model.TutorProfileUpdate) error {
	r.logger.Info("CatalogRepository.UpdateTutorProfile called",
		zap.String("tutor_id", id),
		zap.Bool("languages", update.Languages != nil),
		zap.Bool("study_modes", update.StudyModes != nil))

	err := r.InTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE tutors
			SET phone_number = COALESCE($1, phone_number),
				description = COALESCE($2, description),
				price_per_hour = COALESCE($3, price_per_hour)
			WHERE id = $4
		`
		tag, err := tx.Exec(ctx, query, update.Phone, update.Description, update.PricePerHour, id)
		if err != nil {
			return fmt.Errorf("update tutor: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("tutor not found")
		}

		if update.Languages != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM tutor_languages WHERE tutor_id = $1`, id); err != nil {
				return fmt.Errorf("clear languages: %w", err)
			}
			for _, language := range update.Languages {
				_, err := tx.Exec(ctx,
					`INSERT INTO tutor_languages (tutor_id, language) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
					id, language)
				if err != nil {
					return fmt.Errorf("insert language: %w", err)
				}
			}
		}

		if update.StudyModes != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM tutor_study_modes WHERE tutor_id = $1`, id); err != nil {
				return fmt.Errorf("clear study modes: %w", err)
			}
			for _, mode := range update.StudyModes {
				_, err := tx.Exec(ctx,
					`INSERT INTO tutor_study_modes (tutor_id, study_mode) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
					id, string(mode))
				if err != nil {
					return fmt.Errorf("insert study mode: %w", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		r.logger.Error("Failed to update tutor profile",
			zap.String("tutor_id", id),
			zap.Error(err))
		return fmt.Errorf("update tutor profile: %w", err)
	}

	return nil
}

// SetAvailability обновляет флаг доступности репетитора
func (r *CatalogRepository) SetAvailability(ctx context.Context, id string, available bool) (bool, error) {
	affected, err := r.ExecAffected(ctx, `UPDATE tutors SET is_available = $1 WHERE id = $2`, available, id)
	if err != nil {
		return false, fmt.Errorf("update tutor availability: %w", err)
	}

	return affected > 0, nil
}

// AddTutorSubject добавляет предмет, который преподаёт репетитор
func (r *CatalogRepository) AddTutorSubject(ctx context.Context, tutorID string, subjectID int64) error {
	_, err := r.ExecAffected(ctx,
		`INSERT INTO tutor_subjects (tutor_id, subject_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		tutorID, subjectID)
	if err != nil {
		return fmt.Errorf("add tutor subject: %w", err)
	}

	return nil
}

// AddStudentInterest добавляет предмет, который хочет изучать студент
func (r *CatalogRepository) AddStudentInterest(ctx context.Context, studentID string, subjectID int64) error {
	_, err := r.ExecAffected(ctx,
		`INSERT INTO student_subject_interests (student_id, subject_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		studentID, subjectID)
	if err != nil {
		return fmt.Errorf("add student interest: %w", err)
	}

	return nil
}

func scanTutor(row pgx.Row) (*model.TutorProfile, error) {
	var (
		tutor model.TutorProfile
		modes []string
	)
	err := row.Scan(
		&tutor.ID,
		&tutor.Name,
		&tutor.Email,
		&tutor.Phone,
		&tutor.Description,
		&tutor.PricePerHour,
		&tutor.IsAvailable,
		&tutor.CreatedAt,
		&tutor.SubjectIDs,
		&tutor.Languages,
		&modes,
	)
	if err != nil {
		return nil, err
	}

	tutor.StudyModes = make([]model.StudyMode, 0, len(modes))
	for _, m := range modes {
		tutor.StudyModes = append(tutor.StudyModes, model.StudyMode(m))
	}

	return &tutor, nil
}

func collectTutors(rows pgx.Rows) ([]*model.TutorProfile, error) {
	defer rows.Close()

	tutors := []*model.TutorProfile{}
	for rows.Next() {
		tutor, err := scanTutor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tutor: %w", err)
		}
		tutors = append(tutors, tutor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tutors: %w", err)
	}

	return tutors, nil
}
