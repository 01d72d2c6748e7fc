package repositories

import "context"

// Repository aggregates all repository interfaces behind one handle.
type Repository interface {
	User() UserRepository
	SystemConfig() SystemConfigRepository
	Course() CourseRepository
	Assessment() AssessmentRepository
	Question() QuestionRepository
	CalendarEvent() CalendarEventRepository

	// Transaction support: fn runs against a Repository bound to one
	// transaction; returning an error rolls everything back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
