package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/iitp-cep/portal-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Query    string // substring match on username
	IsBanned *bool
	IsOnline *bool
	Limit    int
	Offset   int
}

type AssessmentFilters struct {
	Kind     *models.AssessmentKind
	CourseID *uint
	IsLive   *bool
	Limit    int
	Offset   int
	SortBy   string // "open_date", "close_date", "title"
	SortOrder string // "asc", "desc"
}

type EventFilters struct {
	CourseID *uint
	Type     *models.EventType
	Limit    int
	Offset   int
}

// MonthlyCount is one point of a per-month aggregation series.
type MonthlyCount struct {
	Month time.Time `json:"month"`
	Count int64     `json:"count"`
}

// PortalTotals are the headline numbers on the admin dashboard.
type PortalTotals struct {
	Users       int64 `json:"users"`
	OnlineUsers int64 `json:"online_users"`
	Courses     int64 `json:"courses"`
	Assignments int64 `json:"assignments"`
	Quizzes     int64 `json:"quizzes"`
	Exams       int64 `json:"exams"`
	Questions   int64 `json:"questions"`
}

// ===== REPOSITORY INTERFACES =====

type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error)
	// GetOrCreate returns the user with the given username, creating
	// the row on first login.
	GetOrCreate(ctx context.Context, tx *gorm.DB, username string) (*models.User, bool, error)
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	// Touch refreshes presence (is_online, last_active) only.
	Touch(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error
	MarkOffline(ctx context.Context, tx *gorm.DB, username string) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	CountByMonth(ctx context.Context, tx *gorm.DB) ([]MonthlyCount, error)
	Count(ctx context.Context, tx *gorm.DB, filters UserFilters) (int64, error)
}

type SystemConfigRepository interface {
	// Get returns the singleton row, or the built-in defaults when the
	// table is empty.
	Get(ctx context.Context, tx *gorm.DB) (*models.SystemConfig, error)
	Update(ctx context.Context, tx *gorm.DB, cfg *models.SystemConfig) error
}

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Course, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	ExistsByCode(ctx context.Context, tx *gorm.DB, code string, excludeID *uint) (bool, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type AssessmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) error
	GetByID(ctx context.Context, tx *gorm.DB, kind models.AssessmentKind, id uint) (*models.Assessment, error)
	List(ctx context.Context, tx *gorm.DB, filters AssessmentFilters) ([]*models.Assessment, int64, error)
	Update(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) error
	SetLive(ctx context.Context, tx *gorm.DB, kind models.AssessmentKind, id uint, live bool) error
	Delete(ctx context.Context, tx *gorm.DB, kind models.AssessmentKind, id uint) error

	// Aggregator queries. ListLive applies the full availability
	// window; ListClosingAfter deliberately ignores the live flag.
	ListLive(ctx context.Context, tx *gorm.DB, kind models.AssessmentKind, now time.Time) ([]*models.Assessment, error)
	ListClosingAfter(ctx context.Context, tx *gorm.DB, now time.Time) ([]*models.Assessment, error)
	// ListForMonth returns assessments whose open or close date falls
	// inside the given month.
	ListForMonth(ctx context.Context, tx *gorm.DB, year int, month time.Month) ([]*models.Assessment, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, kind models.AssessmentKind, courseID uint) ([]*models.Assessment, error)
	CountByKind(ctx context.Context, tx *gorm.DB, kind models.AssessmentKind) (int64, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	CreateOption(ctx context.Context, tx *gorm.DB, option *models.Option) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	// ListByAssessment returns the fixed attempt ordering: ascending id
	// with options preloaded in label order.
	ListByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uint) ([]*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type CalendarEventRepository interface {
	Create(ctx context.Context, tx *gorm.DB, event *models.CalendarEvent) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.CalendarEvent, error)
	// List returns events newest-first.
	List(ctx context.Context, tx *gorm.DB, filters EventFilters) ([]*models.CalendarEvent, error)
	ListForMonth(ctx context.Context, tx *gorm.DB, year int, month time.Month) ([]*models.CalendarEvent, error)
	Update(ctx context.Context, tx *gorm.DB, event *models.CalendarEvent) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}
