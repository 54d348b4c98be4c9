package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_reservations/internal/model"
	"github.com/Freeeeeet/tutor_reservations/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReviewRepository struct {
	*base.Repository
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт отзыв. Один отзыв на запись (reviews.reservation_id UNIQUE)
func (r *ReviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (reservation_id, tutor_id, student_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		review.ReservationID,
		review.TutorID,
		review.StudentID,
		review.Rating,
		review.Comment,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create review: %w", err)
	}

	return nil
}

// ListByTutor получает отзывы о репетиторе, новые первыми
func (r *ReviewRepository) ListByTutor(ctx context.Context, tutorID string) ([]*model.Review, error) {
	query := `
		SELECT id, reservation_id, tutor_id, student_id, rating, comment, created_at, updated_at
		FROM reviews
		WHERE tutor_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.Query(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("get reviews by tutor: %w", err)
	}
	defer rows.Close()

	reviews := []*model.Review{}
	for rows.Next() {
		var review model.Review
		err := rows.Scan(
			&review.ID,
			&review.ReservationID,
			&review.TutorID,
			&review.StudentID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
			&review.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, &review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}

	return reviews, nil
}
