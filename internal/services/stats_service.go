package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iitp-cep/portal-service/internal/models"
	"github.com/iitp-cep/portal-service/internal/repositories"
)

type statsService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewStatsService(repo repositories.Repository, logger *slog.Logger) StatsService {
	return &statsService{repo: repo, logger: logger}
}

// PortalStats assembles the admin dashboard headline numbers and the
// monthly user-growth series.
func (s *statsService) PortalStats(ctx context.Context) (*PortalStatsResponse, error) {
	totals := repositories.PortalTotals{}

	var err error
	if totals.Users, err = s.repo.User().Count(ctx, nil, repositories.UserFilters{}); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	online := true
	if totals.OnlineUsers, err = s.repo.User().Count(ctx, nil, repositories.UserFilters{IsOnline: &online}); err != nil {
		return nil, fmt.Errorf("failed to count online users: %w", err)
	}

	if totals.Courses, err = s.repo.Course().Count(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to count courses: %w", err)
	}

	if totals.Assignments, err = s.repo.Assessment().CountByKind(ctx, nil, models.KindAssignment); err != nil {
		return nil, fmt.Errorf("failed to count assignments: %w", err)
	}
	if totals.Quizzes, err = s.repo.Assessment().CountByKind(ctx, nil, models.KindQuiz); err != nil {
		return nil, fmt.Errorf("failed to count quizzes: %w", err)
	}
	if totals.Exams, err = s.repo.Assessment().CountByKind(ctx, nil, models.KindExam); err != nil {
		return nil, fmt.Errorf("failed to count exams: %w", err)
	}

	if totals.Questions, err = s.repo.Question().Count(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}

	growth, err := s.repo.User().CountByMonth(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load user growth: %w", err)
	}

	return &PortalStatsResponse{Totals: totals, UserGrowth: growth}, nil
}
