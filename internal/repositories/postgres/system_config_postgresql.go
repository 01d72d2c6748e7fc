package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/iitp-cep/portal-service/internal/cache"
	"github.com/iitp-cep/portal-service/internal/models"
	"github.com/iitp-cep/portal-service/internal/repositories"
)

type SystemConfigPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewSystemConfigPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.SystemConfigRepository {
	return &SystemConfigPostgreSQL{db: db, cacheManager: cacheManager}
}

func (s *SystemConfigPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

// Get returns the first (effectively only) config row. An empty table
// yields the built-in defaults rather than an error; the toggle row is
// optional by design.
func (s *SystemConfigPostgreSQL) Get(ctx context.Context, tx *gorm.DB) (*models.SystemConfig, error) {
	var cfg models.SystemConfig
	err := s.cacheManager.Config.CacheOrExecute(ctx, "current", &cfg, cache.ConfigCacheConfig.TTL, func() (interface{}, error) {
		var row models.SystemConfig
		err := s.getDB(tx).WithContext(ctx).Order("id ASC").First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.DefaultSystemConfig(), nil
			}
			return nil, fmt.Errorf("failed to get system config: %w", err)
		}
		return &row, nil
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *SystemConfigPostgreSQL) Update(ctx context.Context, tx *gorm.DB, cfg *models.SystemConfig) error {
	if err := s.getDB(tx).WithContext(ctx).Save(cfg).Error; err != nil {
		return fmt.Errorf("failed to update system config: %w", err)
	}
	cache.SafeDelete(ctx, s.cacheManager.Config, "current")
	return nil
}
