package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iitp-cep/portal-service/internal/models"
	"github.com/iitp-cep/portal-service/internal/repositories"
	"github.com/iitp-cep/portal-service/internal/validator"
)

type configService struct {
	repo      repositories.Repository
	validator *validator.BusinessValidator
	logger    *slog.Logger
}

func NewConfigService(repo repositories.Repository, v *validator.BusinessValidator, logger *slog.Logger) ConfigService {
	return &configService{repo: repo, validator: v, logger: logger}
}

func (s *configService) Get(ctx context.Context) (*models.SystemConfig, error) {
	cfg, err := s.repo.SystemConfig().Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	return cfg, nil
}

func (s *configService) Update(ctx context.Context, req *UpdateConfigRequest) (*models.SystemConfig, error) {
	if verrs := s.validator.Validate(req); len(verrs) > 0 {
		return nil, verrs
	}

	cfg, err := s.repo.SystemConfig().Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}

	if req.Status != nil {
		cfg.Status = models.SystemStatus(*req.Status)
	}
	if req.PIN != nil {
		cfg.PIN = *req.PIN
	}
	if req.RootUser != nil {
		cfg.RootUser = *req.RootUser
	}
	if req.PinRequired != nil {
		cfg.PinRequired = *req.PinRequired
	}
	if req.ShowAnswer != nil {
		cfg.ShowAnswer = *req.ShowAnswer
	}

	if err := s.repo.SystemConfig().Update(ctx, nil, cfg); err != nil {
		return nil, fmt.Errorf("failed to update system config: %w", err)
	}

	s.logger.InfoContext(ctx, "System config updated",
		"status", cfg.Status,
		"pin_required", cfg.PinRequired,
		"show_answer", cfg.ShowAnswer)
	return cfg, nil
}
