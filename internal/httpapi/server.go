package httpapi

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const (
	roleStudent = "student"
	roleTutor   = "tutor"
)

// NewServer собирает echo с маршрутами API
func NewServer(h *Handler, jwtSecret string, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(Tracing())
	e.Use(RequestLogger(logger))

	e.GET("/healthz", h.Health)

	v1 := e.Group("/v1", JWTAuth(jwtSecret))

	student := RequireRole(roleStudent)
	tutor := RequireRole(roleTutor)

	v1.GET("/dashboard", h.Dashboard, student)
	v1.GET("/reservations", h.ListReservations, student)
	v1.POST("/reservations", h.Reserve, student)
	v1.DELETE("/reservations/:id", h.Cancel, student)
	v1.POST("/reservations/:id/review", h.CreateReview, student)
	v1.GET("/recommendations", h.Recommendations, student)

	v1.POST("/reservations/:id/approve", h.Approve, tutor)
	v1.GET("/tutor/reservations", h.TutorReservations, tutor)
	v1.PUT("/me/tutor-profile", h.UpdateTutorProfile, tutor)
	v1.PUT("/me/availability", h.SetAvailability, tutor)

	v1.GET("/subjects", h.ListSubjects)
	v1.GET("/tutors/:id", h.GetTutor)
	v1.GET("/tutors/:id/reviews", h.TutorReviews)
	v1.GET("/me", h.Me)
	v1.POST("/me/role", h.AssignRole)
	v1.POST("/me/subjects", h.AddSubject, RequireRole(roleStudent, roleTutor))

	return e
}
