package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/iitp-cep/portal-service/internal/models"
	"github.com/iitp-cep/portal-service/internal/repositories"
)

type CalendarEventPostgreSQL struct {
	db *gorm.DB
}

func NewCalendarEventPostgreSQL(db *gorm.DB) repositories.CalendarEventRepository {
	return &CalendarEventPostgreSQL{db: db}
}

func (c *CalendarEventPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *CalendarEventPostgreSQL) Create(ctx context.Context, tx *gorm.DB, event *models.CalendarEvent) error {
	if err := c.getDB(tx).WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create calendar event: %w", err)
	}
	return nil
}

func (c *CalendarEventPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	err := c.getDB(tx).WithContext(ctx).Preload("Course").First(&event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get calendar event: %w", err)
	}
	return &event, nil
}

func (c *CalendarEventPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.EventFilters) ([]*models.CalendarEvent, error) {
	query := c.getDB(tx).WithContext(ctx).Model(&models.CalendarEvent{})

	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.Type != nil {
		query = query.Where("event_type = ?", *filters.Type)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	var events []*models.CalendarEvent
	if err := query.Preload("Course").Order("date DESC, id DESC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}
	return events, nil
}

func (c *CalendarEventPostgreSQL) ListForMonth(ctx context.Context, tx *gorm.DB, year int, month time.Month) ([]*models.CalendarEvent, error) {
	var events []*models.CalendarEvent
	err := c.getDB(tx).WithContext(ctx).
		Preload("Course").
		Where("EXTRACT(YEAR FROM date) = ? AND EXTRACT(MONTH FROM date) = ?", year, int(month)).
		Order("date ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events for month: %w", err)
	}
	return events, nil
}

func (c *CalendarEventPostgreSQL) Update(ctx context.Context, tx *gorm.DB, event *models.CalendarEvent) error {
	if err := c.getDB(tx).WithContext(ctx).Save(event).Error; err != nil {
		return fmt.Errorf("failed to update calendar event: %w", err)
	}
	return nil
}

func (c *CalendarEventPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := c.getDB(tx).WithContext(ctx).Delete(&models.CalendarEvent{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete calendar event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
