package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/iitp-cep/portal-service/internal/cache"
	"github.com/iitp-cep/portal-service/internal/models"
	"github.com/iitp-cep/portal-service/internal/repositories"
)

type AssessmentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewAssessmentPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.AssessmentRepository {
	return &AssessmentPostgreSQL{db: db, cacheManager: cacheManager}
}

func (a *AssessmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *AssessmentPostgreSQL) invalidate(ctx context.Context) {
	cache.SafeInvalidatePattern(ctx, a.cacheManager.Assessment, "*")
}

func (a *AssessmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) error {
	if err := a.getDB(tx).WithContext(ctx).Create(assessment).Error; err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}
	a.invalidate(ctx)
	return nil
}

func (a *AssessmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, kind models.AssessmentKind, id uint) (*models.Assessment, error) {
	var assessment models.Assessment
	err := a.getDB(tx).WithContext(ctx).
		Preload("Course").
		Where("kind = ?", kind).
		First(&assessment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return &assessment, nil
}

func (a *AssessmentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AssessmentFilters) ([]*models.Assessment, int64, error) {
	query := a.getDB(tx).WithContext(ctx).Model(&models.Assessment{})

	if filters.Kind != nil {
		query = query.Where("kind = ?", *filters.Kind)
	}
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.IsLive != nil {
		query = query.Where("is_live = ?", *filters.IsLive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count assessments: %w", err)
	}

	sortBy := filters.SortBy
	switch sortBy {
	case "open_date", "close_date", "title":
	default:
		sortBy = "open_date"
	}
	order := "DESC"
	if filters.SortOrder == "asc" {
		order = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, order))

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	var assessments []*models.Assessment
	if err := query.Preload("Course").Find(&assessments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list assessments: %w", err)
	}
	return assessments, total, nil
}

func (a *AssessmentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) error {
	if err := a.getDB(tx).WithContext(ctx).Save(assessment).Error; err != nil {
		return fmt.Errorf("failed to update assessment: %w", err)
	}
	a.invalidate(ctx)
	return nil
}

func (a *AssessmentPostgreSQL) SetLive(ctx context.Context, tx *gorm.DB, kind models.AssessmentKind, id uint, live bool) error {
	result := a.getDB(tx).WithContext(ctx).
		Model(&models.Assessment{}).
		Where("id = ? AND kind = ?", id, kind).
		Update("is_live", live)
	if result.Error != nil {
		return fmt.Errorf("failed to set assessment live flag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	a.invalidate(ctx)
	return nil
}

func (a *AssessmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, kind models.AssessmentKind, id uint) error {
	result := a.getDB(tx).WithContext(ctx).
		Where("kind = ?", kind).
		Delete(&models.Assessment{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete assessment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	a.invalidate(ctx)
	return nil
}

func (a *AssessmentPostgreSQL) ListLive(ctx context.Context, tx *gorm.DB, kind models.AssessmentKind, now time.Time) ([]*models.Assessment, error) {
	var assessments []*models.Assessment
	err := a.getDB(tx).WithContext(ctx).
		Preload("Course").
		Where("kind = ? AND is_live = ?", kind, true).
		Where("open_date <= ?", now).
		Where("close_date IS NULL OR close_date >= ?", now).
		Order("open_date ASC").
		Find(&assessments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list live assessments: %w", err)
	}
	return assessments, nil
}

// ListClosingAfter feeds the timeline: every assessment whose deadline
// has not passed, regardless of the live flag, so upcoming work shows
// before it is opened.
func (a *AssessmentPostgreSQL) ListClosingAfter(ctx context.Context, tx *gorm.DB, now time.Time) ([]*models.Assessment, error) {
	var assessments []*models.Assessment
	err := a.getDB(tx).WithContext(ctx).
		Preload("Course").
		Where("close_date IS NULL OR close_date >= ?", now).
		Find(&assessments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming assessments: %w", err)
	}
	return assessments, nil
}

func (a *AssessmentPostgreSQL) ListForMonth(ctx context.Context, tx *gorm.DB, year int, month time.Month) ([]*models.Assessment, error) {
	var assessments []*models.Assessment
	cacheKey := fmt.Sprintf("month:%d-%02d", year, int(month))

	err := a.cacheManager.Assessment.CacheOrExecute(ctx, cacheKey, &assessments, cache.AssessmentCacheConfig.TTL, func() (interface{}, error) {
		var rows []*models.Assessment
		err := a.getDB(tx).WithContext(ctx).
			Preload("Course").
			Where(
				"(EXTRACT(YEAR FROM open_date) = ? AND EXTRACT(MONTH FROM open_date) = ?) OR (close_date IS NOT NULL AND EXTRACT(YEAR FROM close_date) = ? AND EXTRACT(MONTH FROM close_date) = ?)",
				year, int(month), year, int(month),
			).
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list assessments for month: %w", err)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return assessments, nil
}

func (a *AssessmentPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, kind models.AssessmentKind, courseID uint) ([]*models.Assessment, error) {
	var assessments []*models.Assessment
	err := a.getDB(tx).WithContext(ctx).
		Where("kind = ? AND course_id = ?", kind, courseID).
		Order("open_date DESC").
		Find(&assessments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments by course: %w", err)
	}
	return assessments, nil
}

func (a *AssessmentPostgreSQL) CountByKind(ctx context.Context, tx *gorm.DB, kind models.AssessmentKind) (int64, error) {
	var count int64
	err := a.getDB(tx).WithContext(ctx).
		Model(&models.Assessment{}).
		Where("kind = ?", kind).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count assessments: %w", err)
	}
	return count, nil
}
