package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/iitp-cep/portal-service/internal/config"
	"github.com/iitp-cep/portal-service/internal/events"
	"github.com/iitp-cep/portal-service/internal/repositories"
	"github.com/iitp-cep/portal-service/internal/session"
	"github.com/iitp-cep/portal-service/internal/validator"
)

// serviceManager wires every service to its shared dependencies.
type serviceManager struct {
	repo      repositories.Repository
	sessions  *session.Store
	publisher events.EventPublisher
	validator *validator.BusinessValidator
	logger    *slog.Logger
	gate      config.AttemptGateMode

	auth       AuthService
	aggregator AggregatorService
	attempt    AttemptService
	course     CourseService
	content    ContentService
	export     ExportService
	users      UserAdminService
	sysConfig  ConfigService
	calendar   CalendarService
	stats      StatsService

	shutdown bool
	mu       sync.RWMutex
}

func NewServiceManager(repo repositories.Repository, sessions *session.Store, publisher events.EventPublisher, v *validator.BusinessValidator, gate config.AttemptGateMode, logger *slog.Logger) ServiceManager {
	m := &serviceManager{
		repo:      repo,
		sessions:  sessions,
		publisher: publisher,
		validator: v,
		logger:    logger,
		gate:      gate,
	}

	m.auth = NewAuthService(repo, sessions, publisher, v, logger)
	m.aggregator = NewAggregatorService(repo, logger)
	m.attempt = NewAttemptService(repo, sessions, publisher, gate, logger)
	m.course = NewCourseService(repo, v, logger)
	m.content = NewContentService(repo, publisher, v, logger)
	m.export = NewExportService(repo, logger)
	m.users = NewUserAdminService(repo, logger)
	m.sysConfig = NewConfigService(repo, v, logger)
	m.calendar = NewCalendarService(repo, v, logger)
	m.stats = NewStatsService(repo, logger)

	return m
}

func (m *serviceManager) Auth() AuthService             { return m.auth }
func (m *serviceManager) Aggregator() AggregatorService { return m.aggregator }
func (m *serviceManager) Attempt() AttemptService       { return m.attempt }
func (m *serviceManager) Course() CourseService         { return m.course }
func (m *serviceManager) Content() ContentService       { return m.content }
func (m *serviceManager) Export() ExportService         { return m.export }
func (m *serviceManager) Users() UserAdminService       { return m.users }
func (m *serviceManager) Config() ConfigService         { return m.sysConfig }
func (m *serviceManager) Calendar() CalendarService     { return m.calendar }
func (m *serviceManager) Stats() StatsService           { return m.stats }

func (m *serviceManager) HealthCheck(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.repo.Ping(ctx)
}

func (m *serviceManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shutdown {
		return nil
	}
	m.shutdown = true

	if err := m.publisher.Close(); err != nil {
		m.logger.ErrorContext(ctx, "Failed to close event publisher", "error", err)
	}
	m.logger.InfoContext(ctx, "Service manager shut down")
	return nil
}
