package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iitp-cep/portal-service/internal/events"
	"github.com/iitp-cep/portal-service/internal/models"
	"github.com/iitp-cep/portal-service/internal/repositories"
	"github.com/iitp-cep/portal-service/internal/session"
	"github.com/iitp-cep/portal-service/internal/validator"
)

// GuestUsername is the identity handed out when the PIN gate is off and
// no name is supplied.
const GuestUsername = "Guest"

type authService struct {
	repo      repositories.Repository
	sessions  *session.Store
	publisher events.EventPublisher
	validator *validator.BusinessValidator
	logger    *slog.Logger
}

func NewAuthService(repo repositories.Repository, sessions *session.Store, publisher events.EventPublisher, v *validator.BusinessValidator, logger *slog.Logger) AuthService {
	return &authService{
		repo:      repo,
		sessions:  sessions,
		publisher: publisher,
		validator: v,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	cfg, err := s.repo.SystemConfig().Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}

	if cfg.Status == models.SystemOffline {
		return nil, ErrSystemOffline
	}

	req.Username = strings.TrimSpace(req.Username)

	// Guest access only exists while the PIN gate is off.
	if req.Username == "" && !cfg.PinRequired {
		return s.loginGuest(ctx)
	}

	if verrs := s.validator.Validate(req); len(verrs) > 0 {
		return nil, verrs
	}

	if cfg.PinRequired && req.PIN != cfg.PIN {
		s.logger.WarnContext(ctx, "Login rejected: bad PIN", "username", req.Username)
		return nil, ErrInvalidPIN
	}

	user, created, err := s.repo.User().GetOrCreate(ctx, nil, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	if user.IsBanned {
		return nil, ErrUserBanned
	}

	if err := s.repo.User().Touch(ctx, nil, user.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to update presence: %w", err)
	}

	isAdmin := user.IsAdmin || strings.EqualFold(user.Username, cfg.RootUser)

	sessionID, err := s.sessions.Create(ctx, user.Username, isAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.publishLogin(ctx, user.Username, created)
	s.logger.InfoContext(ctx, "User logged in", "username", user.Username, "first_login", created)

	return &LoginResult{
		SessionID:  sessionID,
		Username:   user.Username,
		IsAdmin:    isAdmin,
		FirstLogin: created,
	}, nil
}

func (s *authService) loginGuest(ctx context.Context) (*LoginResult, error) {
	sessionID, err := s.sessions.Create(ctx, GuestUsername, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create guest session: %w", err)
	}

	s.publishLogin(ctx, GuestUsername, false)
	return &LoginResult{
		SessionID: sessionID,
		Username:  GuestUsername,
		IsGuest:   true,
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID, username string) error {
	if username != "" && username != GuestUsername {
		if err := s.repo.User().MarkOffline(ctx, nil, username); err != nil && !repositories.IsNotFoundError(err) {
			s.logger.ErrorContext(ctx, "Failed to mark user offline", "username", username, "error", err)
		}
	}

	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}

	if err := s.publisher.Publish(ctx, events.NewPortalEvent(events.EventUserLoggedOut, events.UserLoggedOutEvent{
		Username:    username,
		LoggedOutAt: time.Now(),
	})); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish logout event", "error", err)
	}
	return nil
}

// Heartbeat refreshes presence and re-checks that the caller may still
// use the portal. It returns ErrSystemOffline when the portal has been
// taken offline since login and ErrUserBanned when the user has been
// banned mid-session. Guests and deleted users fall through silently;
// presence itself is best effort.
func (s *authService) Heartbeat(ctx context.Context, username string) error {
	cfg, err := s.repo.SystemConfig().Get(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to load system config: %w", err)
	}
	if cfg.Status == models.SystemOffline {
		return ErrSystemOffline
	}

	if username == "" || username == GuestUsername {
		return nil
	}

	user, err := s.repo.User().GetByUsername(ctx, nil, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load user for heartbeat: %w", err)
	}
	if user.IsBanned {
		return ErrUserBanned
	}
	return s.repo.User().Touch(ctx, nil, user.ID, time.Now())
}

func (s *authService) publishLogin(ctx context.Context, username string, firstLogin bool) {
	err := s.publisher.Publish(ctx, events.NewPortalEvent(events.EventUserLoggedIn, events.UserLoggedInEvent{
		Username:   username,
		FirstLogin: firstLogin,
		LoggedInAt: time.Now(),
	}))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish login event", "error", err)
	}
}
