package services

import (
	"context"
	"time"

	"github.com/iitp-cep/portal-service/internal/models"
	"github.com/iitp-cep/portal-service/internal/repositories"
	"github.com/iitp-cep/portal-service/internal/validator"
)

// ===== REQUEST DTOs (shared with the validator package) =====

type LoginRequest = validator.LoginRequest
type CreateCourseRequest = validator.CourseCreateRequest
type UpdateCourseRequest = validator.CourseUpdateRequest
type CreateAssessmentRequest = validator.AssessmentCreateRequest
type UpdateAssessmentRequest = validator.AssessmentUpdateRequest
type CreateQuestionRequest = validator.QuestionCreateRequest
type OptionRequest = validator.OptionRequest
type UpdateQuestionRequest = validator.QuestionUpdateRequest
type CreateEventRequest = validator.EventCreateRequest
type UpdateConfigRequest = validator.SystemConfigUpdateRequest
type SaveAnswerRequest = validator.SaveAnswerRequest
type BulkImportRequest = validator.BulkImportRequest

// ===== AUTH =====

type LoginResult struct {
	SessionID  string `json:"-"`
	Username   string `json:"username"`
	IsAdmin    bool   `json:"is_admin"`
	IsGuest    bool   `json:"is_guest"`
	FirstLogin bool   `json:"first_login"`
}

type AuthService interface {
	// Login checks the portal gate (system status, PIN, ban) and mints
	// a session for the visitor.
	Login(ctx context.Context, req *LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, sessionID, username string) error
	// Heartbeat refreshes presence for an authenticated request.
	Heartbeat(ctx context.Context, username string) error
}

// ===== AGGREGATOR =====

type LiveAssessmentEntry struct {
	ID          uint                  `json:"id"`
	Kind        models.AssessmentKind `json:"kind"`
	Title       string                `json:"title"`
	CourseName  string                `json:"course_name"`
	OpenDate    time.Time             `json:"open_date"`
	CloseDate   *time.Time            `json:"close_date,omitempty"`
	DurationMin int                   `json:"duration_minutes"`
}

type LiveAssessmentsResponse struct {
	Assignments []*LiveAssessmentEntry `json:"assignments"`
	Quizzes     []*LiveAssessmentEntry `json:"quizzes"`
	Exams       []*LiveAssessmentEntry `json:"exams"`
}

// TimelineEntry is one upcoming deadline. IsLive lets clients badge
// entries that are scheduled but not yet open to visitors.
type TimelineEntry struct {
	ID         uint                  `json:"id"`
	Kind       models.AssessmentKind `json:"kind"`
	Title      string                `json:"title"`
	CourseName string                `json:"course_name"`
	CloseDate  *time.Time            `json:"close_date,omitempty"`
	IsLive     bool                  `json:"is_live"`
	DateGroup  string                `json:"date_group"`
}

type CalendarEntry struct {
	Title      string    `json:"title"`
	Label      string    `json:"label"`
	At         time.Time `json:"at"`
	CourseName string    `json:"course_name,omitempty"`
}

// DayCell is one square of the month matrix. DayNum 0 means padding
// outside the month.
type DayCell struct {
	DayNum  int              `json:"day_num"`
	Classes []string         `json:"classes"`
	Events  []*CalendarEntry `json:"events,omitempty"`
}

type MonthCalendarResponse struct {
	Year      int          `json:"year"`
	Month     int          `json:"month"`
	MonthName string       `json:"month_name"`
	Weeks     [][]*DayCell `json:"weeks"`
	PrevYear  int          `json:"prev_year"`
	PrevMonth int          `json:"prev_month"`
	NextYear  int          `json:"next_year"`
	NextMonth int          `json:"next_month"`
}

type DashboardResponse struct {
	Live     *LiveAssessmentsResponse `json:"live"`
	Timeline []*TimelineEntry         `json:"timeline"`
	Calendar *MonthCalendarResponse   `json:"calendar"`
}

type AggregatorService interface {
	LiveAssessments(ctx context.Context, now time.Time) (*LiveAssessmentsResponse, error)
	Timeline(ctx context.Context, now time.Time) ([]*TimelineEntry, error)
	MonthCalendar(ctx context.Context, year int, month time.Month, now time.Time) (*MonthCalendarResponse, error)
	// Dashboard bundles all three for the landing page.
	Dashboard(ctx context.Context, year int, month time.Month, now time.Time) (*DashboardResponse, error)
}

// ===== ATTEMPT =====

type AssessmentDetailResponse struct {
	ID            uint                  `json:"id"`
	Kind          models.AssessmentKind `json:"kind"`
	Title         string                `json:"title"`
	Description   *string               `json:"description,omitempty"`
	CourseName    string                `json:"course_name"`
	OpenDate      time.Time             `json:"open_date"`
	CloseDate     *time.Time            `json:"close_date,omitempty"`
	DurationMin   int                   `json:"duration_minutes"`
	MaxAttempts   int                   `json:"max_attempts"`
	QuestionCount int                   `json:"question_count"`
	StatusLabel   string                `json:"status_label"`
}

type AttemptOption struct {
	ID         uint   `json:"id"`
	Label      string `json:"label"`
	Text       string `json:"text"`
	IsSelected bool   `json:"is_selected"`
	IsCorrect  bool   `json:"is_correct,omitempty"`
}

type AttemptQuestion struct {
	ID                uint                `json:"id"`
	Type              models.QuestionType `json:"type"`
	Text              string              `json:"text"`
	Marks             float64             `json:"marks"`
	AllowCustomAnswer bool                `json:"allow_custom_answer"`
	Options           []*AttemptOption    `json:"options,omitempty"`
	// Only populated when the portal is configured to show answers.
	CorrectOptionID uint    `json:"correct_option_id,omitempty"`
	CorrectText     *string `json:"correct_text,omitempty"`
}

type QuestionStatus struct {
	Index    int  `json:"index"`
	ID       uint `json:"id"`
	Answered bool `json:"answered"`
	Flagged  bool `json:"flagged"`
}

type AttemptPageResponse struct {
	AssessmentID uint                  `json:"assessment_id"`
	Kind         models.AssessmentKind `json:"kind"`
	Title        string                `json:"title"`
	Total        int                   `json:"total"`
	Index        int                   `json:"index"`
	Question     *AttemptQuestion      `json:"question"`
	SavedAnswer  string                `json:"saved_answer"`
	Flagged      bool                  `json:"flagged"`
	Statuses     []*QuestionStatus     `json:"statuses"`
}

type SaveAnswerResult struct {
	Saved     bool `json:"saved"`
	NextIndex int  `json:"next_index"`
	Finished  bool `json:"finished"`
}

type FinishRow struct {
	Index      int    `json:"index"`
	QuestionID uint   `json:"question_id"`
	Answered   bool   `json:"answered"`
	Flagged    bool   `json:"flagged"`
	Status     string `json:"status"`
}

type FinishSummaryResponse struct {
	AssessmentID uint                  `json:"assessment_id"`
	Kind         models.AssessmentKind `json:"kind"`
	Title        string                `json:"title"`
	Total        int                   `json:"total"`
	Answered     int                   `json:"answered"`
	Rows         []*FinishRow          `json:"rows"`
}

type ReviewQuestion struct {
	Index      int              `json:"index"`
	Question   *AttemptQuestion `json:"question"`
	UserAnswer string           `json:"user_answer"`
	Flagged    bool             `json:"flagged"`
}

type ReviewResponse struct {
	AssessmentID uint                  `json:"assessment_id"`
	Kind         models.AssessmentKind `json:"kind"`
	Title        string                `json:"title"`
	ShowAnswer   bool                  `json:"show_answer"`
	Questions    []*ReviewQuestion     `json:"questions"`
}

type AttemptService interface {
	// Detail gates on the live flag regardless of gate mode.
	Detail(ctx context.Context, kind models.AssessmentKind, id uint, now time.Time) (*AssessmentDetailResponse, error)
	AttemptPage(ctx context.Context, sessionID string, kind models.AssessmentKind, id uint, qParam int, now time.Time) (*AttemptPageResponse, error)
	SaveAnswer(ctx context.Context, sessionID string, kind models.AssessmentKind, id, questionID uint, qIndex int, req *SaveAnswerRequest, now time.Time) (*SaveAnswerResult, error)
	FinishSummary(ctx context.Context, sessionID string, username string, kind models.AssessmentKind, id uint, now time.Time) (*FinishSummaryResponse, error)
	Review(ctx context.Context, sessionID string, kind models.AssessmentKind, id uint, now time.Time) (*ReviewResponse, error)
}

// ===== COURSES =====

type CourseResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Code        string  `json:"code"`
	Description *string `json:"description,omitempty"`
	DisplayName string  `json:"display_name"`
}

type CourseDetailResponse struct {
	CourseResponse
	Assignments []*LiveAssessmentEntry `json:"assignments"`
	Quizzes     []*LiveAssessmentEntry `json:"quizzes"`
	Exams       []*LiveAssessmentEntry `json:"exams"`
}

type CourseService interface {
	List(ctx context.Context) ([]*CourseResponse, error)
	GetByCode(ctx context.Context, code string) (*CourseDetailResponse, error)
	Create(ctx context.Context, req *CreateCourseRequest) (*models.Course, error)
	Update(ctx context.Context, id uint, req *UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, id uint) error
}

// ===== ADMIN CONTENT =====

type AssessmentListResponse struct {
	Assessments []*models.Assessment `json:"assessments"`
	Total       int64                `json:"total"`
}

type ImportResult struct {
	Imported int `json:"imported"`
	Options  int `json:"options"`
	Skipped  int `json:"skipped"`
}

type ContentService interface {
	ListAssessments(ctx context.Context, filters repositories.AssessmentFilters) (*AssessmentListResponse, error)
	GetAssessment(ctx context.Context, kind models.AssessmentKind, id uint) (*models.Assessment, error)
	CreateAssessment(ctx context.Context, req *CreateAssessmentRequest) (*models.Assessment, error)
	UpdateAssessment(ctx context.Context, kind models.AssessmentKind, id uint, req *UpdateAssessmentRequest) (*models.Assessment, error)
	SetLive(ctx context.Context, kind models.AssessmentKind, id uint, live bool) error
	DeleteAssessment(ctx context.Context, kind models.AssessmentKind, id uint) error

	ListQuestions(ctx context.Context, kind models.AssessmentKind, assessmentID uint) ([]*models.Question, error)
	CreateQuestion(ctx context.Context, kind models.AssessmentKind, assessmentID uint, req *CreateQuestionRequest) (*models.Question, error)
	UpdateQuestion(ctx context.Context, questionID uint, req *UpdateQuestionRequest) (*models.Question, error)
	DeleteQuestion(ctx context.Context, questionID uint) error

	// BulkImport parses the pasted question block and creates every
	// entry inside one transaction.
	BulkImport(ctx context.Context, kind models.AssessmentKind, assessmentID uint, text, actor string) (*ImportResult, error)
}

// ===== EXPORT =====

type ExportService interface {
	// ExportQuestions renders the question bank of one assessment as an
	// xlsx workbook. Returns the bytes and a suggested filename.
	ExportQuestions(ctx context.Context, kind models.AssessmentKind, id uint) ([]byte, string, error)
}

// ===== USERS ADMIN =====

type UserResponse struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	IsAdmin     bool      `json:"is_admin"`
	IsBanned    bool      `json:"is_banned"`
	StatusLabel string    `json:"status_label"`
	LastActive  time.Time `json:"last_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type UserListResponse struct {
	Users []*UserResponse `json:"users"`
	Total int64           `json:"total"`
}

type UserAdminService interface {
	List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)
	SetBanned(ctx context.Context, id uint, banned bool) error
	Delete(ctx context.Context, id uint) error
}

// ===== SYSTEM CONFIG =====

type ConfigService interface {
	Get(ctx context.Context) (*models.SystemConfig, error)
	Update(ctx context.Context, req *UpdateConfigRequest) (*models.SystemConfig, error)
}

// ===== CALENDAR EVENTS =====

type CalendarService interface {
	List(ctx context.Context, filters repositories.EventFilters) ([]*models.CalendarEvent, error)
	Create(ctx context.Context, req *CreateEventRequest) (*models.CalendarEvent, error)
	Update(ctx context.Context, id uint, req *CreateEventRequest) (*models.CalendarEvent, error)
	Delete(ctx context.Context, id uint) error
}

// ===== PORTAL STATS =====

type PortalStatsResponse struct {
	Totals     repositories.PortalTotals   `json:"totals"`
	UserGrowth []repositories.MonthlyCount `json:"user_growth"`
}

type StatsService interface {
	PortalStats(ctx context.Context) (*PortalStatsResponse, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	Aggregator() AggregatorService
	Attempt() AttemptService
	Course() CourseService
	Content() ContentService
	Export() ExportService
	Users() UserAdminService
	Config() ConfigService
	Calendar() CalendarService
	Stats() StatsService

	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
