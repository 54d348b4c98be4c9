package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Freeeeeet/tutor_reservations/internal/model"
	"github.com/Freeeeeet/tutor_reservations/internal/repository"
	"go.uber.org/zap"
)

// MaxReviewCommentLength - ограничение на длину комментария в символах
const MaxReviewCommentLength = 2000

type ReviewStore interface {
	Create(ctx context.Context, review *model.Review) error
	ListByTutor(ctx context.Context, tutorID string) ([]*model.Review, error)
}

type ReviewService struct {
	reviews      ReviewStore
	reservations ReservationStore
	catalog      CatalogStore
	logger       *zap.Logger
}

func NewReviewService(reviews ReviewStore, reservations ReservationStore, catalog CatalogStore, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		reviews:      reviews,
		reservations: reservations,
		catalog:      catalog,
		logger:       logger,
	}
}

// CreateReview оставляет отзыв по записи. Одобрение записи не требуется
func (s *ReviewService) CreateReview(ctx context.Context, reservationID int64, studentID string, rating int, comment string) (*model.Review, error) {
	if rating < model.RatingMin || rating > model.RatingMax {
		return nil, fmt.Errorf("rating %d out of range: %w", rating, ErrInvalidInput)
	}

	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > MaxReviewCommentLength {
		return nil, fmt.Errorf("comment too long: %w", ErrInvalidInput)
	}

	reservation, err := s.reservations.FindByID(ctx, reservationID)
	if err != nil {
		return nil, storageError("get reservation", err)
	}
	if reservation == nil {
		return nil, fmt.Errorf("reservation %d: %w", reservationID, ErrNotFound)
	}

	if reservation.StudentID != studentID {
		return nil, fmt.Errorf("reservation %d belongs to another student: %w", reservationID, ErrForbidden)
	}

	review := &model.Review{
		ReservationID: reservation.ID,
		TutorID:       reservation.TutorID,
		StudentID:     reservation.StudentID,
		Rating:        rating,
		Comment:       comment,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("review for reservation %d: %w", reservationID, ErrConflict)
		}
		return nil, storageError("create review", err)
	}

	s.logger.Info("Review created",
		zap.Int64("review_id", review.ID),
		zap.Int64("reservation_id", reservationID),
		zap.Int("rating", rating))

	return review, nil
}

// ListTutorReviews получает отзывы о репетиторе, новые первыми
func (s *ReviewService) ListTutorReviews(ctx context.Context, tutorID string) ([]*model.Review, error) {
	tutor, err := s.catalog.GetTutor(ctx, tutorID)
	if err != nil {
		return nil, storageError("get tutor", err)
	}
	if tutor == nil {
		return nil, fmt.Errorf("tutor %s: %w", tutorID, ErrNotFound)
	}

	reviews, err := s.reviews.ListByTutor(ctx, tutorID)
	if err != nil {
		return nil, storageError("list reviews", err)
	}
	return reviews, nil
}

// AverageRating считает средний рейтинг. 0 для пустого списка
func AverageRating(reviews []*model.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
