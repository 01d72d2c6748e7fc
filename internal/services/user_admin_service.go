package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iitp-cep/portal-service/internal/repositories"
)

type userAdminService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewUserAdminService(repo repositories.Repository, logger *slog.Logger) UserAdminService {
	return &userAdminService{repo: repo, logger: logger}
}

func (s *userAdminService) List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	now := time.Now()
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, &UserResponse{
			ID:          u.ID,
			Username:    u.Username,
			IsAdmin:     u.IsAdmin,
			IsBanned:    u.IsBanned,
			StatusLabel: u.StatusLabel(now),
			LastActive:  u.LastActive,
			CreatedAt:   u.CreatedAt,
		})
	}
	return &UserListResponse{Users: out, Total: total}, nil
}

func (s *userAdminService) SetBanned(ctx context.Context, id uint, banned bool) error {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	user.IsBanned = banned
	if banned {
		user.IsOnline = false
	}
	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.InfoContext(ctx, "User ban flag changed", "user_id", id, "username", user.Username, "banned", banned)
	return nil
}

func (s *userAdminService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.User().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.logger.InfoContext(ctx, "User deleted", "user_id", id)
	return nil
}
