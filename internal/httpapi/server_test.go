package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_reservations/internal/model"
	"github.com/Freeeeeet/tutor_reservations/internal/service"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type stubEngine struct {
	reserveErr  error
	cancelErr   error
	approveErr  error
	lastLimit   int
	lastStudent string
	lastTutor   string
}

func (s *stubEngine) ListReservationsForStudent(_ context.Context, studentID string) ([]*model.ReservationView, error) {
	s.lastStudent = studentID
	return []*model.ReservationView{{Reservation: model.Reservation{ID: 1, StudentID: studentID, TutorID: "t1"}}}, nil
}

func (s *stubEngine) ListReservationsForTutor(_ context.Context, tutorID string) ([]*model.TutorReservationView, error) {
	s.lastTutor = tutorID
	return []*model.TutorReservationView{}, nil
}

func (s *stubEngine) Reserve(_ context.Context, studentID, tutorID string) (*model.ReservationView, error) {
	if s.reserveErr != nil {
		return nil, s.reserveErr
	}
	s.lastStudent, s.lastTutor = studentID, tutorID
	return &model.ReservationView{Reservation: model.Reservation{ID: 10, StudentID: studentID, TutorID: tutorID}}, nil
}

func (s *stubEngine) Cancel(_ context.Context, _ int64, requesterID string) error {
	s.lastStudent = requesterID
	return s.cancelErr
}

func (s *stubEngine) Approve(_ context.Context, id int64, tutorID string) (*model.ReservationView, error) {
	if s.approveErr != nil {
		return nil, s.approveErr
	}
	return &model.ReservationView{Reservation: model.Reservation{ID: id, TutorID: tutorID, Approved: true}}, nil
}

func (s *stubEngine) Recommend(_ context.Context, _ string, limit int) ([]*model.TutorProfile, error) {
	s.lastLimit = limit
	return []*model.TutorProfile{{ID: "t2"}}, nil
}

func (s *stubEngine) Dashboard(_ context.Context, studentID string, limit int) (*service.StudentDashboard, error) {
	s.lastLimit = limit
	return &service.StudentDashboard{Student: &model.User{ID: studentID}}, nil
}

type stubProfiles struct {
	tutorSubjects   []int64
	studentInterest []int64
	available       *bool
}

func (s *stubProfiles) GetUser(_ context.Context, id string) (*model.User, error) {
	return &model.User{ID: id, Role: model.RoleStudent}, nil
}

func (s *stubProfiles) AssignRole(_ context.Context, userID string, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("role: %w", service.ErrInvalidInput)
	}
	return &model.User{ID: userID, Role: role}, nil
}

func (s *stubProfiles) UpdateTutorProfile(_ context.Context, tutorID string, update model.TutorProfileUpdate) (*model.TutorProfile, error) {
	p := &model.TutorProfile{ID: tutorID}
	if update.PricePerHour != nil {
		p.PricePerHour = *update.PricePerHour
	}
	return p, nil
}

func (s *stubProfiles) SetAvailability(_ context.Context, _ string, available bool) error {
	s.available = &available
	return nil
}

func (s *stubProfiles) AddTutorSubject(_ context.Context, _ string, subjectID int64) error {
	s.tutorSubjects = append(s.tutorSubjects, subjectID)
	return nil
}

func (s *stubProfiles) AddStudentInterest(_ context.Context, _ string, subjectID int64) error {
	s.studentInterest = append(s.studentInterest, subjectID)
	return nil
}

func (s *stubProfiles) GetTutorProfile(_ context.Context, tutorID string) (*model.TutorProfile, error) {
	if tutorID == "ghost" {
		return nil, fmt.Errorf("tutor %s: %w", tutorID, service.ErrNotFound)
	}
	return &model.TutorProfile{ID: tutorID, Name: "Мария"}, nil
}

func (s *stubProfiles) ListSubjects(context.Context) ([]*model.Subject, error) {
	return []*model.Subject{{ID: 1, Name: "Математика"}}, nil
}

type stubReviews struct{}

func (stubReviews) CreateReview(_ context.Context, reservationID int64, studentID string, rating int, comment string) (*model.Review, error) {
	if rating < model.RatingMin || rating > model.RatingMax {
		return nil, fmt.Errorf("rating: %w", service.ErrInvalidInput)
	}
	return &model.Review{ID: 1, ReservationID: reservationID, StudentID: studentID, Rating: rating, Comment: comment}, nil
}

func (stubReviews) ListTutorReviews(context.Context, string) ([]*model.Review, error) {
	return []*model.Review{{Rating: 4}, {Rating: 5}}, nil
}

type testServer struct {
	e        *echo.Echo
	engine   *stubEngine
	profiles *stubProfiles
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	engine := &stubEngine{}
	profiles := &stubProfiles{}
	h := NewHandler(engine, profiles, stubReviews{}, 3, zap.NewNop())
	return &testServer{
		e:        NewServer(h, testSecret, zap.NewNop()),
		engine:   engine,
		profiles: profiles,
	}
}

func token(t *testing.T, sub, role string) string {
	t.Helper()

	claims := jwt.MapClaims{"sub": sub, "exp": time.Now().Add(time.Hour).Unix()}
	if role != "" {
		claims["role"] = role
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(t *testing.T, method, path, bearer, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestJWTAuth(t *testing.T) {
	s := newTestServer(t)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "s1", "role": "student", "exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "s1", "role": "student",
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "student", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "s1", "role": "student",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		bearer string
		want   int
	}{
		{name: "missing", bearer: "", want: http.StatusUnauthorized},
		{name: "garbage", bearer: "not-a-jwt", want: http.StatusUnauthorized},
		{name: "expired", bearer: expired, want: http.StatusUnauthorized},
		{name: "wrong secret", bearer: foreign, want: http.StatusUnauthorized},
		{name: "no subject", bearer: noSubject, want: http.StatusUnauthorized},
		{name: "no expiry", bearer: noExpiry, want: http.StatusUnauthorized},
		{name: "valid", bearer: token(t, "s1", "student"), want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/v1/reservations", tt.bearer, "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/v1/reservations", token(t, "t1", "tutor"), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/reservations/1/approve", token(t, "s1", "student"), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/tutor/reservations", token(t, "t1", "tutor"), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t1", s.engine.lastTutor)
}

func TestReserve(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/v1/reservations", token(t, "s1", "student"), `{"tutor_id":"t9"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var view model.ReservationView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, int64(10), view.ID)
	assert.Equal(t, "s1", s.engine.lastStudent)
	assert.Equal(t, "t9", s.engine.lastTutor)

	rec = s.do(t, http.MethodPost, "/v1/reservations", token(t, "s1", "student"), `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		msg  string
	}{
		{name: "not found", err: fmt.Errorf("tutor x: %w", service.ErrNotFound), want: http.StatusNotFound, msg: "not found"},
		{name: "forbidden", err: service.ErrForbidden, want: http.StatusForbidden, msg: "forbidden"},
		{name: "conflict", err: service.ErrConflict, want: http.StatusConflict, msg: "conflict"},
		{name: "already approved", err: service.ErrAlreadyApproved, want: http.StatusConflict, msg: "reservation already approved"},
		{name: "invalid state", err: service.ErrInvalidState, want: http.StatusUnprocessableEntity, msg: "tutor is not available"},
		{name: "invalid input", err: service.ErrInvalidInput, want: http.StatusUnprocessableEntity, msg: "invalid input"},
		{name: "storage", err: fmt.Errorf("insert: %w: %w", service.ErrStorage, fmt.Errorf("dial tcp: refused")), want: http.StatusInternalServerError, msg: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.engine.reserveErr = tt.err

			rec := s.do(t, http.MethodPost, "/v1/reservations", token(t, "s1", "student"), `{"tutor_id":"t1"}`)
			assert.Equal(t, tt.want, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.msg, body["error"])
		})
	}
}

func TestCancel(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodDelete, "/v1/reservations/5", token(t, "s1", "student"), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "s1", s.engine.lastStudent)

	rec = s.do(t, http.MethodDelete, "/v1/reservations/abc", token(t, "s1", "student"), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.engine.cancelErr = service.ErrNotFound
	rec = s.do(t, http.MethodDelete, "/v1/reservations/5", token(t, "s1", "student"), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApprove(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/v1/reservations/7/approve", token(t, "t1", "tutor"), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view model.ReservationView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.Approved)
	assert.Equal(t, int64(7), view.ID)

	s.engine.approveErr = service.ErrAlreadyApproved
	rec = s.do(t, http.MethodPost, "/v1/reservations/7/approve", token(t, "t1", "tutor"), "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRecommendationsLimit(t *testing.T) {
	s := newTestServer(t)
	bearer := token(t, "s1", "student")

	rec := s.do(t, http.MethodGet, "/v1/recommendations", bearer, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, s.engine.lastLimit)

	rec = s.do(t, http.MethodGet, "/v1/recommendations?limit=5", bearer, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, s.engine.lastLimit)

	rec = s.do(t, http.MethodGet, "/v1/recommendations?limit=-2", bearer, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssignRoleWithoutRoleClaim(t *testing.T) {
	s := newTestServer(t)
	bearer := token(t, "u1", "")

	rec := s.do(t, http.MethodPost, "/v1/me/role", bearer, `{"role":"tutor"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var user model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, model.RoleTutor, user.Role)

	rec = s.do(t, http.MethodPost, "/v1/me/role", bearer, `{"role":"admin"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/dashboard", bearer, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAddSubjectDependsOnRole(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/v1/me/subjects", token(t, "t1", "tutor"), `{"subject_id":2}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/me/subjects", token(t, "s1", "student"), `{"subject_id":3}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/me/subjects", token(t, "s1", "student"), `{"subject_id":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, []int64{2}, s.profiles.tutorSubjects)
	assert.Equal(t, []int64{3}, s.profiles.studentInterest)
}

func TestTutorEndpoints(t *testing.T) {
	s := newTestServer(t)
	bearer := token(t, "t1", "tutor")

	rec := s.do(t, http.MethodPut, "/v1/me/availability", bearer, `{"available":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, s.profiles.available)
	assert.False(t, *s.profiles.available)

	rec = s.do(t, http.MethodPut, "/v1/me/availability", bearer, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/v1/me/tutor-profile", bearer, `{"price_per_hour":45}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile model.TutorProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, 45, profile.PricePerHour)
}

func TestPublicCatalogEndpoints(t *testing.T) {
	s := newTestServer(t)
	bearer := token(t, "s1", "student")

	rec := s.do(t, http.MethodGet, "/v1/tutors/t1", bearer, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/tutors/ghost", bearer, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/tutors/t1/reviews", bearer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var reviews struct {
		Average float64 `json:"average_rating"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reviews))
	assert.InDelta(t, 4.5, reviews.Average, 1e-9)

	rec = s.do(t, http.MethodGet, "/v1/subjects", bearer, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Математика")
}

func TestCreateReview(t *testing.T) {
	s := newTestServer(t)
	bearer := token(t, "s1", "student")

	rec := s.do(t, http.MethodPost, "/v1/reservations/3/review", bearer, `{"rating":5,"comment":"спасибо"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/reservations/3/review", bearer, `{"rating":9}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
