package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Freeeeeet/tutor_reservations/internal/model"
	"github.com/Freeeeeet/tutor_reservations/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Engine interface {
	ListReservationsForStudent(ctx context.Context, studentID string) ([]*model.ReservationView, error)
	ListReservationsForTutor(ctx context.Context, tutorID string) ([]*model.TutorReservationView, error)
	Reserve(ctx context.Context, studentID, tutorID string) (*model.ReservationView, error)
	Cancel(ctx context.Context, reservationID int64, requesterID string) error
	Approve(ctx context.Context, reservationID int64, tutorID string) (*model.ReservationView, error)
	Recommend(ctx context.Context, studentID string, limit int) ([]*model.TutorProfile, error)
	Dashboard(ctx context.Context, studentID string, limit int) (*service.StudentDashboard, error)
}

type Profiles interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	AssignRole(ctx context.Context, userID string, role model.Role) (*model.User, error)
	UpdateTutorProfile(ctx context.Context, tutorID string, update model.TutorProfileUpdate) (*model.TutorProfile, error)
	SetAvailability(ctx context.Context, tutorID string, available bool) error
	AddTutorSubject(ctx context.Context, tutorID string, subjectID int64) error
	AddStudentInterest(ctx context.Context, studentID string, subjectID int64) error
	GetTutorProfile(ctx context.Context, tutorID string) (*model.TutorProfile, error)
	ListSubjects(ctx context.Context) ([]*model.Subject, error)
}

type Reviews interface {
	CreateReview(ctx context.Context, reservationID int64, studentID string, rating int, comment string) (*model.Review, error)
	ListTutorReviews(ctx context.Context, tutorID string) ([]*model.Review, error)
}

// Handler - HTTP обработчики поверх сервисов. Идентичность берётся из JWT
type Handler struct {
	engine     Engine
	profiles   Profiles
	reviews    Reviews
	quickLimit int
	logger     *zap.Logger
}

func NewHandler(engine Engine, profiles Profiles, reviews Reviews, quickLimit int, logger *zap.Logger) *Handler {
	return &Handler{
		engine:     engine,
		profiles:   profiles,
		reviews:    reviews,
		quickLimit: quickLimit,
		logger:     logger,
	}
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Me GET /v1/me
func (h *Handler) Me(c echo.Context) error {
	user, err := h.profiles.GetUser(c.Request().Context(), currentUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// Dashboard GET /v1/dashboard
func (h *Handler) Dashboard(c echo.Context) error {
	d, err := h.engine.Dashboard(c.Request().Context(), currentUserID(c), h.quickLimit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// ListReservations GET /v1/reservations
func (h *Handler) ListReservations(c echo.Context) error {
	views, err := h.engine.ListReservationsForStudent(c.Request().Context(), currentUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": views})
}

// Reserve POST /v1/reservations
func (h *Handler) Reserve(c echo.Context) error {
	var body reserveRequest
	if ok, err := bindRequest(c, &body); !ok {
		return err
	}

	view, err := h.engine.Reserve(c.Request().Context(), currentUserID(c), body.TutorID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, view)
}

// Cancel DELETE /v1/reservations/:id
func (h *Handler) Cancel(c echo.Context) error {
	id, ok := reservationID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	if err := h.engine.Cancel(c.Request().Context(), id, currentUserID(c)); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Approve POST /v1/reservations/:id/approve
func (h *Handler) Approve(c echo.Context) error {
	id, ok := reservationID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	view, err := h.engine.Approve(c.Request().Context(), id, currentUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// TutorReservations GET /v1/tutor/reservations
func (h *Handler) TutorReservations(c echo.Context) error {
	views, err := h.engine.ListReservationsForTutor(c.Request().Context(), currentUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": views})
}

// Recommendations GET /v1/recommendations?limit=
func (h *Handler) Recommendations(c echo.Context) error {
	limit := h.quickLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}

	tutors, err := h.engine.Recommend(c.Request().Context(), currentUserID(c), limit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tutors": tutors})
}

// ListSubjects GET /v1/subjects
func (h *Handler) ListSubjects(c echo.Context) error {
	subjects, err := h.profiles.ListSubjects(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"subjects": subjects})
}

// GetTutor GET /v1/tutors/:id
func (h *Handler) GetTutor(c echo.Context) error {
	tutor, err := h.profiles.GetTutorProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, tutor)
}

// TutorReviews GET /v1/tutors/:id/reviews
func (h *Handler) TutorReviews(c echo.Context) error {
	reviews, err := h.reviews.ListTutorReviews(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reviews":        reviews,
		"average_rating": service.AverageRating(reviews),
	})
}

// CreateReview POST /v1/reservations/:id/review
func (h *Handler) CreateReview(c echo.Context) error {
	id, ok := reservationID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	var body reviewRequest
	if ok, err := bindRequest(c, &body); !ok {
		return err
	}

	review, err := h.reviews.CreateReview(c.Request().Context(), id, currentUserID(c), body.Rating, body.Comment)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, review)
}

// AssignRole POST /v1/me/role
func (h *Handler) AssignRole(c echo.Context) error {
	var body roleRequest
	if ok, err := bindRequest(c, &body); !ok {
		return err
	}

	user, err := h.profiles.AssignRole(c.Request().Context(), currentUserID(c), body.Role)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateTutorProfile PUT /v1/me/tutor-profile
func (h *Handler) UpdateTutorProfile(c echo.Context) error {
	var update model.TutorProfileUpdate
	if ok, err := bindRequest(c, &update); !ok {
		return err
	}

	profile, err := h.profiles.UpdateTutorProfile(c.Request().Context(), currentUserID(c), update)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// SetAvailability PUT /v1/me/availability
func (h *Handler) SetAvailability(c echo.Context) error {
	var body availabilityRequest
	if ok, err := bindRequest(c, &body); !ok {
		return err
	}

	if err := h.profiles.SetAvailability(c.Request().Context(), currentUserID(c), *body.Available); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"available": *body.Available})
}

// AddSubject POST /v1/me/subjects. Для репетитора - преподаваемый предмет, для студента - интерес
func (h *Handler) AddSubject(c echo.Context) error {
	var body subjectRequest
	if ok, err := bindRequest(c, &body); !ok {
		return err
	}

	ctx := c.Request().Context()
	userID := currentUserID(c)

	var err error
	switch model.Role(currentRole(c)) {
	case model.RoleTutor:
		err = h.profiles.AddTutorSubject(ctx, userID, body.SubjectID)
	case model.RoleStudent:
		err = h.profiles.AddStudentInterest(ctx, userID, body.SubjectID)
	default:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func reservationID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
