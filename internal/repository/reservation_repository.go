package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_reservations/internal/model"
	"github.com/Freeeeeet/tutor_reservations/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reservationColumns = `id, student_id, tutor_id, approved, created_at, updated_at`

type ReservationRepository struct {
	*base.Repository
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{Repository: base.NewRepository(pool)}
}

// Insert создаёт запись и возвращает её ID.
// Повторная запись на ту же пару отклоняется ограничением reservations_student_tutor_key
func (r *ReservationRepository) Insert(ctx context.Context, studentID, tutorID string) (int64, error) {
	query := `
		INSERT INTO reservations (student_id, tutor_id)
		VALUES ($1, $2)
		RETURNING id
	`

	var id int64
	err := r.QueryRow(ctx, query, studentID, tutorID).Scan(&id)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("insert reservation: %w", err)
	}

	return id, nil
}

// FindByID получает запись по ID
func (r *ReservationRepository) FindByID(ctx context.Context, id int64) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	reservation, err := scanReservation(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation by id: %w", err)
	}

	return reservation, nil
}

// FindByStudent получает все записи студента в порядке создания
func (r *ReservationRepository) FindByStudent(ctx context.Context, studentID string) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE student_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("get reservations by student: %w", err)
	}

	return collectReservations(rows)
}

// FindByTutor получает все записи к репетитору в порядке создания
func (r *ReservationRepository) FindByTutor(ctx context.Context, tutorID string) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE tutor_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.Query(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("get reservations by tutor: %w", err)
	}

	return collectReservations(rows)
}

// DeleteByID удаляет запись. Возвращает false если записи не было
func (r *ReservationRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete reservation: %w", err)
	}

	return affected > 0, nil
}

// UpdateApproval меняет флаг одобрения и обновляет updated_at
func (r *ReservationRepository) UpdateApproval(ctx context.Context, id int64, approved bool) (bool, error) {
	query := `
		UPDATE reservations
		SET approved = $1, updated_at = now()
		WHERE id = $2
	`

	affected, err := r.ExecAffected(ctx, query, approved, id)
	if err != nil {
		return false, fmt.Errorf("update reservation approval: %w", err)
	}

	return affected > 0, nil
}

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var reservation model.Reservation
	err := row.Scan(
		&reservation.ID,
		&reservation.StudentID,
		&reservation.TutorID,
		&reservation.Approved,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func collectReservations(rows pgx.Rows) ([]*model.Reservation, error) {
	defer rows.Close()

	reservations := []*model.Reservation{}
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}

	return reservations, nil
}
