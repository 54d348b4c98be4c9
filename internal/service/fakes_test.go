package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Freeeeeet/tutor_reservations/internal/events"
	"github.com/Freeeeeet/tutor_reservations/internal/model"
	"github.com/Freeeeeet/tutor_reservations/internal/repository"
)

// memDB - хранилище в памяти с теми же гарантиями, что и схема БД
type memDB struct {
	mu           sync.Mutex
	clock        time.Time
	users        map[string]*model.User
	tutors       []*model.TutorProfile
	subjects     []*model.Subject
	reservations []*model.Reservation
	reviews      []*model.Review
	nextID       int64
	failQueries  error
}

func newMemDB() *memDB {
	return &memDB{
		clock: time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC),
		users: map[string]*model.User{},
	}
}

func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Minute)
	return db.clock
}

func (db *memDB) addStudent(id string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users[id] = &model.User{ID: id, Name: "Student " + id, Email: id + "@example.com", Role: model.RoleStudent, CreatedAt: db.tick()}
}

func (db *memDB) addTutor(id string, available bool, price int, subjectIDs ...int64) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users[id] = &model.User{ID: id, Name: "Tutor " + id, Email: id + "@example.com", Role: model.RoleTutor, CreatedAt: db.tick()}
	db.tutors = append(db.tutors, &model.TutorProfile{
		ID:           id,
		Name:         "Tutor " + id,
		Email:        id + "@example.com",
		Phone:        "+100" + id,
		PricePerHour: price,
		IsAvailable:  available,
		SubjectIDs:   subjectIDs,
		CreatedAt:    db.clock,
	})
}

func (db *memDB) addSubject(id int64, name string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.subjects = append(db.subjects, &model.Subject{ID: id, Name: name})
}

func (db *memDB) tutor(id string) *model.TutorProfile {
	for _, t := range db.tutors {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func copyTutor(t *model.TutorProfile) *model.TutorProfile {
	c := *t
	c.SubjectIDs = append([]int64(nil), t.SubjectIDs...)
	c.Subjects = nil
	return &c
}

type fakeUsers struct{ db *memDB }

func (f fakeUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.failQueries != nil {
		return nil, f.db.failQueries
	}
	u, ok := f.db.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (f fakeUsers) GetStudentSummaries(_ context.Context, ids []string) ([]*model.StudentSummary, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.StudentSummary
	for _, id := range ids {
		if u, ok := f.db.users[id]; ok && u.IsStudent() {
			out = append(out, &model.StudentSummary{ID: u.ID, Name: u.Name, Email: u.Email})
		}
	}
	return out, nil
}

func (f fakeUsers) Create(_ context.Context, user *model.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if user.TelegramID != nil && u.TelegramID != nil && *u.TelegramID == *user.TelegramID {
			return repository.ErrDuplicate
		}
	}
	user.CreatedAt = f.db.tick()
	c := *user
	f.db.users[user.ID] = &c
	return nil
}

func (f fakeUsers) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.TelegramID != nil && *u.TelegramID == telegramID {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (f fakeUsers) UpdateName(_ context.Context, id, name string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.Name = name
	return nil
}

func (f fakeUsers) AssignRole(_ context.Context, id string, role model.Role) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok || u.HasRole() {
		return false, nil
	}
	u.Role = role
	if role == model.RoleTutor {
		f.db.tutors = append(f.db.tutors, &model.TutorProfile{ID: u.ID, Name: u.Name, Email: u.Email, IsAvailable: true, CreatedAt: f.db.tick()})
	}
	return true, nil
}

type fakeCatalog struct{ db *memDB }

func (f fakeCatalog) ListAvailableTutors(context.Context) ([]*model.TutorProfile, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []*model.TutorProfile{}
	for _, t := range f.db.tutors {
		if t.IsAvailable {
			out = append(out, copyTutor(t))
		}
	}
	return out, nil
}

func (f fakeCatalog) GetTutor(_ context.Context, id string) (*model.TutorProfile, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.failQueries != nil {
		return nil, f.db.failQueries
	}
	t := f.db.tutor(id)
	if t == nil {
		return nil, nil
	}
	return copyTutor(t), nil
}

func (f fakeCatalog) GetTutorsByIDs(_ context.Context, ids []string) ([]*model.TutorProfile, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := []*model.TutorProfile{}
	for _, t := range f.db.tutors {
		if want[t.ID] {
			out = append(out, copyTutor(t))
		}
	}
	return out, nil
}

func (f fakeCatalog) ListSubjects(context.Context) ([]*model.Subject, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return append([]*model.Subject(nil), f.db.subjects...), nil
}

func (f fakeCatalog) GetSubject(_ context.Context, id int64) (*model.Subject, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, s := range f.db.subjects {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (f fakeCatalog) UpdateTutorProfile(_ context.Context, id string, update model.TutorProfileUpdate) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t := f.db.tutor(id)
	if t == nil {
		return errors.New("tutor not found")
	}
	if update.Phone != nil {
		t.Phone = *update.Phone
	}
	if update.Description != nil {
		t.Description = *update.Description
	}
	if update.PricePerHour != nil {
		t.PricePerHour = *update.PricePerHour
	}
	if update.Languages != nil {
		t.Languages = update.Languages
	}
	if update.StudyModes != nil {
		t.StudyModes = update.StudyModes
	}
	return nil
}

func (f fakeCatalog) SetAvailability(_ context.Context, id string, available bool) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t := f.db.tutor(id)
	if t == nil {
		return false, nil
	}
	t.IsAvailable = available
	return true, nil
}

func (f fakeCatalog) AddTutorSubject(_ context.Context, tutorID string, subjectID int64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t := f.db.tutor(tutorID)
	for _, id := range t.SubjectIDs {
		if id == subjectID {
			return nil
		}
	}
	t.SubjectIDs = append(t.SubjectIDs, subjectID)
	return nil
}

func (f fakeCatalog) AddStudentInterest(context.Context, string, int64) error {
	return nil
}

// fakeReservations повторяет UNIQUE (student_id, tutor_id). staleReads имитирует
// гонку: проверка дубликата не видит параллельную вставку
type fakeReservations struct {
	db         *memDB
	staleReads bool
}

func (f *fakeReservations) Insert(_ context.Context, studentID, tutorID string) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.failQueries != nil {
		return 0, f.db.failQueries
	}
	for _, r := range f.db.reservations {
		if r.StudentID == studentID && r.TutorID == tutorID {
			return 0, repository.ErrDuplicate
		}
	}
	f.db.nextID++
	now := f.db.tick()
	f.db.reservations = append(f.db.reservations, &model.Reservation{
		ID:        f.db.nextID,
		StudentID: studentID,
		TutorID:   tutorID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return f.db.nextID, nil
}

func (f *fakeReservations) FindByID(_ context.Context, id int64) (*model.Reservation, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, r := range f.db.reservations {
		if r.ID == id {
			c := *r
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeReservations) FindByStudent(_ context.Context, studentID string) ([]*model.Reservation, error) {
	return f.filter(func(r *model.Reservation) bool { return r.StudentID == studentID && !f.staleReads }), nil
}

func (f *fakeReservations) FindByTutor(_ context.Context, tutorID string) ([]*model.Reservation, error) {
	return f.filter(func(r *model.Reservation) bool { return r.TutorID == tutorID }), nil
}

func (f *fakeReservations) DeleteByID(_ context.Context, id int64) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for i, r := range f.db.reservations {
		if r.ID == id {
			f.db.reservations = append(f.db.reservations[:i], f.db.reservations[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReservations) UpdateApproval(_ context.Context, id int64, approved bool) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, r := range f.db.reservations {
		if r.ID == id {
			r.Approved = approved
			r.UpdatedAt = f.db.tick()
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReservations) filter(keep func(*model.Reservation) bool) []*model.Reservation {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []*model.Reservation{}
	for _, r := range f.db.reservations {
		if keep(r) {
			c := *r
			out = append(out, &c)
		}
	}
	return out
}

type fakeReviews struct{ db *memDB }

func (f fakeReviews) Create(_ context.Context, review *model.Review) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, r := range f.db.reviews {
		if r.ReservationID == review.ReservationID {
			return repository.ErrDuplicate
		}
	}
	review.ID = int64(len(f.db.reviews) + 1)
	review.CreatedAt = f.db.tick()
	review.UpdatedAt = review.CreatedAt
	c := *review
	f.db.reviews = append(f.db.reviews, &c)
	return nil
}

func (f fakeReviews) ListByTutor(_ context.Context, tutorID string) ([]*model.Review, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []*model.Review{}
	for i := len(f.db.reviews) - 1; i >= 0; i-- {
		if f.db.reviews[i].TutorID == tutorID {
			c := *f.db.reviews[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

// recordingCache - ViewCache в памяти, запоминающий сбросы
type recordingCache struct {
	mu            sync.Mutex
	students      map[string][]*model.ReservationView
	tutors        map[string][]*model.TutorReservationView
	versions      map[string]int64
	invalidated   []string
	studentHits   int
	invalidateErr error
}

func newRecordingCache() *recordingCache {
	return &recordingCache{
		students: map[string][]*model.ReservationView{},
		tutors:   map[string][]*model.TutorReservationView{},
		versions: map[string]int64{},
	}
}

func (c *recordingCache) Version(_ context.Context, id string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[id], nil
}

func (c *recordingCache) StudentReservations(_ context.Context, id string) ([]*model.ReservationView, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.students[id]
	if ok {
		c.studentHits++
	}
	return v, ok, nil
}

func (c *recordingCache) StoreStudentReservations(_ context.Context, id string, version int64, views []*model.ReservationView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[id] != version {
		return nil
	}
	c.students[id] = views
	return nil
}

func (c *recordingCache) TutorReservations(_ context.Context, id string) ([]*model.TutorReservationView, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.tutors[id]
	return v, ok, nil
}

func (c *recordingCache) StoreTutorReservations(_ context.Context, id string, version int64, views []*model.TutorReservationView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[id] != version {
		return nil
	}
	c.tutors[id] = views
	return nil
}

func (c *recordingCache) Invalidate(_ context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, ids...)
	if c.invalidateErr != nil {
		return c.invalidateErr
	}
	for _, id := range ids {
		c.versions[id]++
		delete(c.students, id)
		delete(c.tutors, id)
	}
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ReservationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// interleavingCatalog выполняет during один раз посреди GetTutorsByIDs,
// имитируя мутацию между чтением записей и заполнением кэша
type interleavingCatalog struct {
	fakeCatalog
	during func()
}

func (c *interleavingCatalog) GetTutorsByIDs(ctx context.Context, ids []string) ([]*model.TutorProfile, error) {
	if fn := c.during; fn != nil {
		c.during = nil
		fn()
	}
	return c.fakeCatalog.GetTutorsByIDs(ctx, ids)
}

// interleavingUsers - то же для GetStudentSummaries
type interleavingUsers struct {
	fakeUsers
	during func()
}

func (u *interleavingUsers) GetStudentSummaries(ctx context.Context, ids []string) ([]*model.StudentSummary, error) {
	if fn := u.during; fn != nil {
		u.during = nil
		fn()
	}
	return u.fakeUsers.GetStudentSummaries(ctx, ids)
}
