package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/iitp-cep/portal-service/internal/models"
	"github.com/iitp-cep/portal-service/internal/repositories"
)

// fakeData is the shared in-memory backing store for the fake
// repository used by service tests.
type fakeData struct {
	users       []*models.User
	config      *models.SystemConfig
	courses     []*models.Course
	assessments []*models.Assessment
	questions   []*models.Question
	events      []*models.CalendarEvent

	nextUserID       uint
	nextCourseID     uint
	nextAssessmentID uint
	nextQuestionID   uint
	nextOptionID     uint
	nextEventID      uint
}

type fakeRepository struct {
	data *fakeData

	user          *fakeUserRepo
	systemConfig  *fakeConfigRepo
	course        *fakeCourseRepo
	assessment    *fakeAssessmentRepo
	question      *fakeQuestionRepo
	calendarEvent *fakeEventRepo
}

func newFakeRepository() *fakeRepository {
	data := &fakeData{
		config:           models.DefaultSystemConfig(),
		nextUserID:       1,
		nextCourseID:     1,
		nextAssessmentID: 1,
		nextQuestionID:   1,
		nextOptionID:     1,
		nextEventID:      1,
	}
	return &fakeRepository{
		data:          data,
		user:          &fakeUserRepo{data},
		systemConfig:  &fakeConfigRepo{data},
		course:        &fakeCourseRepo{data},
		assessment:    &fakeAssessmentRepo{data},
		question:      &fakeQuestionRepo{data},
		calendarEvent: &fakeEventRepo{data},
	}
}

func (r *fakeRepository) User() repositories.UserRepository                   { return r.user }
func (r *fakeRepository) SystemConfig() repositories.SystemConfigRepository   { return r.systemConfig }
func (r *fakeRepository) Course() repositories.CourseRepository               { return r.course }
func (r *fakeRepository) Assessment() repositories.AssessmentRepository       { return r.assessment }
func (r *fakeRepository) Question() repositories.QuestionRepository           { return r.question }
func (r *fakeRepository) CalendarEvent() repositories.CalendarEventRepository { return r.calendarEvent }

func (r *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

func (r *fakeRepository) Ping(ctx context.Context) error { return nil }
func (r *fakeRepository) Close() error                   { return nil }

// Seeding helpers.

func (r *fakeRepository) addCourse(course *models.Course) *models.Course {
	course.ID = r.data.nextCourseID
	r.data.nextCourseID++
	r.data.courses = append(r.data.courses, course)
	return course
}

func (r *fakeRepository) addAssessment(a *models.Assessment) *models.Assessment {
	a.ID = r.data.nextAssessmentID
	r.data.nextAssessmentID++
	for _, c := range r.data.courses {
		if c.ID == a.CourseID {
			a.Course = *c
		}
	}
	r.data.assessments = append(r.data.assessments, a)
	return a
}

func (r *fakeRepository) addQuestion(q *models.Question) *models.Question {
	q.ID = r.data.nextQuestionID
	r.data.nextQuestionID++
	for i := range q.Options {
		q.Options[i].ID = r.data.nextOptionID
		q.Options[i].QuestionID = q.ID
		r.data.nextOptionID++
	}
	r.data.questions = append(r.data.questions, q)
	return q
}

func (r *fakeRepository) addEvent(e *models.CalendarEvent) *models.CalendarEvent {
	e.ID = r.data.nextEventID
	r.data.nextEventID++
	r.data.events = append(r.data.events, e)
	return e
}

// ===== USERS =====

type fakeUserRepo struct{ data *fakeData }

func (f *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	for _, u := range f.data.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	for _, u := range f.data.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, username string) (*models.User, bool, error) {
	if u, err := f.GetByUsername(ctx, tx, username); err == nil {
		return u, false, nil
	}
	u := &models.User{
		ID:         f.data.nextUserID,
		Username:   username,
		LastActive: time.Now(),
		CreatedAt:  time.Now(),
	}
	f.data.nextUserID++
	f.data.users = append(f.data.users, u)
	return u, true, nil
}

func (f *fakeUserRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range f.data.users {
		if filters.Query != "" && !strings.Contains(strings.ToLower(u.Username), strings.ToLower(filters.Query)) {
			continue
		}
		if filters.IsBanned != nil && u.IsBanned != *filters.IsBanned {
			continue
		}
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	for i, u := range f.data.users {
		if u.ID == user.ID {
			f.data.users[i] = user
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeUserRepo) Touch(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error {
	for _, u := range f.data.users {
		if u.ID == id {
			u.IsOnline = true
			u.LastActive = at
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeUserRepo) MarkOffline(ctx context.Context, tx *gorm.DB, username string) error {
	for _, u := range f.data.users {
		if strings.EqualFold(u.Username, username) {
			u.IsOnline = false
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeUserRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	for i, u := range f.data.users {
		if u.ID == id {
			f.data.users = append(f.data.users[:i], f.data.users[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeUserRepo) CountByMonth(ctx context.Context, tx *gorm.DB) ([]repositories.MonthlyCount, error) {
	return nil, nil
}

func (f *fakeUserRepo) Count(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) (int64, error) {
	var n int64
	for _, u := range f.data.users {
		if filters.IsOnline != nil && u.IsOnline != *filters.IsOnline {
			continue
		}
		if filters.IsBanned != nil && u.IsBanned != *filters.IsBanned {
			continue
		}
		n++
	}
	return n, nil
}

// ===== SYSTEM CONFIG =====

type fakeConfigRepo struct{ data *fakeData }

func (f *fakeConfigRepo) Get(ctx context.Context, tx *gorm.DB) (*models.SystemConfig, error) {
	return f.data.config, nil
}

func (f *fakeConfigRepo) Update(ctx context.Context, tx *gorm.DB, cfg *models.SystemConfig) error {
	f.data.config = cfg
	return nil
}

// ===== COURSES =====

type fakeCourseRepo struct{ data *fakeData }

func (f *fakeCourseRepo) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	course.ID = f.data.nextCourseID
	f.data.nextCourseID++
	f.data.courses = append(f.data.courses, course)
	return nil
}

func (f *fakeCourseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	for _, c := range f.data.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeCourseRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Course, error) {
	for _, c := range f.data.courses {
		if strings.EqualFold(c.Code, code) {
			return c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeCourseRepo) List(ctx context.Context, tx *gorm.DB) ([]*models.Course, error) {
	return f.data.courses, nil
}

func (f *fakeCourseRepo) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	for i, c := range f.data.courses {
		if c.ID == course.ID {
			f.data.courses[i] = course
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeCourseRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	for i, c := range f.data.courses {
		if c.ID == id {
			f.data.courses = append(f.data.courses[:i], f.data.courses[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeCourseRepo) ExistsByCode(ctx context.Context, tx *gorm.DB, code string, excludeID *uint) (bool, error) {
	for _, c := range f.data.courses {
		if excludeID != nil && c.ID == *excludeID {
			continue
		}
		if strings.EqualFold(c.Code, code) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCourseRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	return int64(len(f.data.courses)), nil
}

// ===== ASSESSMENTS =====

type fakeAssessmentRepo struct{ data *fakeData }

func (f *fakeAssessmentRepo) Create(ctx context.Context, tx *gorm.DB, a *models.Assessment) error {
	a.ID = f.data.nextAssessmentID
	f.data.nextAssessmentID++
	f.data.assessments = append(f.data.assessments, a)
	return nil
}

func (f *fakeAssessmentRepo) GetByID(ctx context.Context, tx *gorm.DB, kind models.AssessmentKind, id uint) (*models.Assessment, error) {
	for _, a := range f.data.assessments {
		if a.ID == id && a.Kind == kind {
			return a, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeAssessmentRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.AssessmentFilters) ([]*models.Assessment, int64, error) {
	var out []*models.Assessment
	for _, a := range f.data.assessments {
		if filters.Kind != nil && a.Kind != *filters.Kind {
			continue
		}
		if filters.CourseID != nil && a.CourseID != *filters.CourseID {
			continue
		}
		if filters.IsLive != nil && a.IsLive != *filters.IsLive {
			continue
		}
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (f *fakeAssessmentRepo) Update(ctx context.Context, tx *gorm.DB, a *models.Assessment) error {
	for i, existing := range f.data.assessments {
		if existing.ID == a.ID {
			f.data.assessments[i] = a
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeAssessmentRepo) SetLive(ctx context.Context, tx *gorm.DB, kind models.AssessmentKind, id uint, live bool) error {
	for _, a := range f.data.assessments {
		if a.ID == id && a.Kind == kind {
			a.IsLive = live
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeAssessmentRepo) Delete(ctx context.Context, tx *gorm.DB, kind models.AssessmentKind, id uint) error {
	for i, a := range f.data.assessments {
		if a.ID == id && a.Kind == kind {
			f.data.assessments = append(f.data.assessments[:i], f.data.assessments[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeAssessmentRepo) ListLive(ctx context.Context, tx *gorm.DB, kind models.AssessmentKind, now time.Time) ([]*models.Assessment, error) {
	var out []*models.Assessment
	for _, a := range f.data.assessments {
		if a.Kind == kind && a.Available(now) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OpenDate.Before(out[j].OpenDate) })
	return out, nil
}

func (f *fakeAssessmentRepo) ListClosingAfter(ctx context.Context, tx *gorm.DB, now time.Time) ([]*models.Assessment, error) {
	var out []*models.Assessment
	for _, a := range f.data.assessments {
		if a.CloseDate == nil || !a.CloseDate.Before(now) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssessmentRepo) ListForMonth(ctx context.Context, tx *gorm.DB, year int, month time.Month) ([]*models.Assessment, error) {
	inMonth := func(t *time.Time) bool {
		return t != nil && t.Year() == year && t.Month() == month
	}
	var out []*models.Assessment
	for _, a := range f.data.assessments {
		open := a.OpenDate
		if inMonth(&open) || inMonth(a.CloseDate) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssessmentRepo) ListByCourse(ctx context.Context, tx *gorm.DB, kind models.AssessmentKind, courseID uint) ([]*models.Assessment, error) {
	var out []*models.Assessment
	for _, a := range f.data.assessments {
		if a.Kind == kind && a.CourseID == courseID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssessmentRepo) CountByKind(ctx context.Context, tx *gorm.DB, kind models.AssessmentKind) (int64, error) {
	var n int64
	for _, a := range f.data.assessments {
		if a.Kind == kind {
			n++
		}
	}
	return n, nil
}

// ===== QUESTIONS =====

type fakeQuestionRepo struct{ data *fakeData }

func (f *fakeQuestionRepo) Create(ctx context.Context, tx *gorm.DB, q *models.Question) error {
	q.ID = f.data.nextQuestionID
	f.data.nextQuestionID++
	f.data.questions = append(f.data.questions, q)
	return nil
}

func (f *fakeQuestionRepo) CreateOption(ctx context.Context, tx *gorm.DB, option *models.Option) error {
	option.ID = f.data.nextOptionID
	f.data.nextOptionID++
	for _, q := range f.data.questions {
		if q.ID == option.QuestionID {
			q.Options = append(q.Options, *option)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	for _, q := range f.data.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeQuestionRepo) ListByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uint) ([]*models.Question, error) {
	var out []*models.Question
	for _, q := range f.data.questions {
		if q.AssessmentID == assessmentID {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeQuestionRepo) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	for i, q := range f.data.questions {
		if q.ID == question.ID {
			f.data.questions[i] = question
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	for i, q := range f.data.questions {
		if q.ID == id {
			f.data.questions = append(f.data.questions[:i], f.data.questions[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeQuestionRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	return int64(len(f.data.questions)), nil
}

// ===== CALENDAR EVENTS =====

type fakeEventRepo struct{ data *fakeData }

func (f *fakeEventRepo) Create(ctx context.Context, tx *gorm.DB, event *models.CalendarEvent) error {
	event.ID = f.data.nextEventID
	f.data.nextEventID++
	f.data.events = append(f.data.events, event)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.CalendarEvent, error) {
	for _, e := range f.data.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.EventFilters) ([]*models.CalendarEvent, error) {
	var out []*models.CalendarEvent
	for _, e := range f.data.events {
		if filters.CourseID != nil && (e.CourseID == nil || *e.CourseID != *filters.CourseID) {
			continue
		}
		if filters.Type != nil && e.EventType != *filters.Type {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEventRepo) ListForMonth(ctx context.Context, tx *gorm.DB, year int, month time.Month) ([]*models.CalendarEvent, error) {
	var out []*models.CalendarEvent
	for _, e := range f.data.events {
		d := time.Time(e.Date)
		if d.Year() == year && d.Month() == month {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, tx *gorm.DB, event *models.CalendarEvent) error {
	for i, e := range f.data.events {
		if e.ID == event.ID {
			f.data.events[i] = event
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeEventRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	for i, e := range f.data.events {
		if e.ID == id {
			f.data.events = append(f.data.events[:i], f.data.events[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}
