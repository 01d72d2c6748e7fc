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

type UserPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.UserRepository {
	return &UserPostgreSQL{db: db, cacheManager: cacheManager}
}

func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := u.getDB(tx).WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	var user models.User
	err := u.getDB(tx).WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetOrCreate(ctx context.Context, tx *gorm.DB, username string) (*models.User, bool, error) {
	user, err := u.GetByUsername(ctx, tx, username)
	if err == nil {
		return user, false, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, false, err
	}

	created := &models.User{
		Username:   username,
		LastActive: time.Now(),
	}
	if err := u.getDB(tx).WithContext(ctx).Create(created).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}
	cache.SafeDelete(ctx, u.cacheManager.Stats, "user_growth")
	return created, true, nil
}

func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	query := u.getDB(tx).WithContext(ctx).Model(&models.User{})

	if filters.Query != "" {
		query = query.Where("username ILIKE ?", "%"+filters.Query+"%")
	}
	if filters.IsBanned != nil {
		query = query.Where("is_banned = ?", *filters.IsBanned)
	}
	if filters.IsOnline != nil {
		query = query.Where("is_online = ?", *filters.IsOnline)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var users []*models.User
	if err := query.Order("username ASC").Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if err := u.getDB(tx).WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (u *UserPostgreSQL) Touch(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error {
	err := u.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_online": true, "last_active": at}).Error
	if err != nil {
		return fmt.Errorf("failed to touch user: %w", err)
	}
	return nil
}

func (u *UserPostgreSQL) MarkOffline(ctx context.Context, tx *gorm.DB, username string) error {
	err := u.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Update("is_online", false).Error
	if err != nil {
		return fmt.Errorf("failed to mark user offline: %w", err)
	}
	return nil
}

func (u *UserPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := u.getDB(tx).WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	cache.SafeDelete(ctx, u.cacheManager.Stats, "user_growth")
	return nil
}

func (u *UserPostgreSQL) CountByMonth(ctx context.Context, tx *gorm.DB) ([]repositories.MonthlyCount, error) {
	var counts []repositories.MonthlyCount
	err := u.cacheManager.Stats.CacheOrExecute(ctx, "user_growth", &counts, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		var rows []repositories.MonthlyCount
		err := u.getDB(tx).WithContext(ctx).
			Model(&models.User{}).
			Select("date_trunc('month', created_at) AS month, COUNT(*) AS count").
			Group("month").
			Order("month ASC").
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count users by month: %w", err)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (u *UserPostgreSQL) Count(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) (int64, error) {
	query := u.getDB(tx).WithContext(ctx).Model(&models.User{})
	if filters.IsOnline != nil {
		query = query.Where("is_online = ?", *filters.IsOnline)
	}
	if filters.IsBanned != nil {
		query = query.Where("is_banned = ?", *filters.IsBanned)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
