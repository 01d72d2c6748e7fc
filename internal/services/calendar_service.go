package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/iitp-cep/portal-service/internal/models"
	"github.com/iitp-cep/portal-service/internal/repositories"
	"github.com/iitp-cep/portal-service/internal/validator"
)

type calendarService struct {
	repo      repositories.Repository
	validator *validator.BusinessValidator
	logger    *slog.Logger
}

func NewCalendarService(repo repositories.Repository, v *validator.BusinessValidator, logger *slog.Logger) CalendarService {
	return &calendarService{repo: repo, validator: v, logger: logger}
}

func (s *calendarService) List(ctx context.Context, filters repositories.EventFilters) ([]*models.CalendarEvent, error) {
	events, err := s.repo.CalendarEvent().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}
	return events, nil
}

func (s *calendarService) Create(ctx context.Context, req *CreateEventRequest) (*models.CalendarEvent, error) {
	event, err := s.buildEvent(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CalendarEvent().Create(ctx, nil, event); err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}

	s.logger.InfoContext(ctx, "Calendar event created", "event_id", event.ID, "title", event.Title)
	return event, nil
}

func (s *calendarService) Update(ctx context.Context, id uint, req *CreateEventRequest) (*models.CalendarEvent, error) {
	existing, err := s.repo.CalendarEvent().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load calendar event: %w", err)
	}

	updated, err := s.buildEvent(ctx, req)
	if err != nil {
		return nil, err
	}

	existing.Title = updated.Title
	existing.Date = updated.Date
	existing.Description = updated.Description
	existing.CourseID = updated.CourseID
	existing.EventType = updated.EventType
	existing.Course = nil

	if err := s.repo.CalendarEvent().Update(ctx, nil, existing); err != nil {
		return nil, fmt.Errorf("failed to update calendar event: %w", err)
	}
	return existing, nil
}

func (s *calendarService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.CalendarEvent().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	return nil
}

func (s *calendarService) buildEvent(ctx context.Context, req *CreateEventRequest) (*models.CalendarEvent, error) {
	if verrs := s.validator.Validate(req); len(verrs) > 0 {
		return nil, verrs
	}

	eventType := models.EventType(strings.ToUpper(strings.TrimSpace(req.EventType)))
	switch eventType {
	case models.EventAssignmentOpen, models.EventQuizOpen, models.EventExamOpen,
		models.EventDeadline, models.EventNotice:
	default:
		return nil, ValidationErrors{{Field: "event_type", Message: "unknown event type", Value: req.EventType}}
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ValidationErrors{{Field: "date", Message: "must be YYYY-MM-DD", Value: req.Date}}
	}

	if req.CourseID != nil {
		if _, err := s.repo.Course().GetByID(ctx, nil, *req.CourseID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCourseNotFound
			}
			return nil, fmt.Errorf("failed to check course: %w", err)
		}
	}

	return &models.CalendarEvent{
		Title:       strings.TrimSpace(req.Title),
		Date:        datatypes.Date(date),
		Description: req.Description,
		CourseID:    req.CourseID,
		EventType:   eventType,
	}, nil
}
