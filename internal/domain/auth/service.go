package auth

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/yanqian/projectshelf/internal/domain/user"
	apperrors "github.com/yanqian/projectshelf/pkg/errors"
	"github.com/yanqian/projectshelf/pkg/metrics"
)

const invalidCredentialsMessage = "invalid email or password"

// Service exposes authentication workflows.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (LoginResponse, error)
	Authenticate(ctx context.Context, accessToken string) (Claims, error)
	Profile(ctx context.Context, userID string) (user.View, error)
}

type service struct {
	cfg      Config
	tokens   *TokenService
	users    CredentialStore
	attempts AttemptStore
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg Config, tokens *TokenService, users CredentialStore, attempts AttemptStore, recorder metrics.Recorder, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg,
		tokens:   tokens,
		users:    users,
		attempts: attempts,
		metrics:  recorder,
		logger:   logger.With("component", "auth.service"),
	}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "email cannot be empty", nil)
	}
	if req.Password == "" {
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "password cannot be empty", nil)
	}
	if s.throttled(ctx, email) {
		s.metrics.RecordAuthEvent(metrics.AuthLoginThrottled)
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeTooManyAttempts, "too many failed login attempts, try again later", nil)
	}

	u, found, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInternal, "failed to fetch user", err)
	}
	if !found {
		// Spend the same bcrypt work as a real comparison.
		_ = bcrypt.CompareHashAndPassword(placeholderHash(), []byte(req.Password))
		return LoginResponse{}, s.loginFailed(ctx, email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return LoginResponse{}, s.loginFailed(ctx, email)
	}
	if !u.IsActive {
		return LoginResponse{}, s.loginFailed(ctx, email)
	}

	if s.attempts != nil && s.cfg.MaxLoginAttempts > 0 {
		if err := s.attempts.Reset(ctx, attemptKey(email)); err != nil {
			s.logger.Warn("failed to reset login attempts", "error", err)
		}
	}
	resp, err := s.buildLoginResponse(u)
	if err != nil {
		return LoginResponse{}, err
	}
	s.metrics.RecordAuthEvent(metrics.AuthLoginSuccess)
	s.logger.Info("user logged in", "user_id", u.ID)
	return resp, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (LoginResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		s.metrics.RecordAuthEvent(metrics.AuthRefreshFailure)
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInvalidRefreshToken, "Refresh token not found", nil)
	}
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		s.metrics.RecordAuthEvent(metrics.AuthRefreshFailure)
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInvalidRefreshToken, "Invalid refresh token", err)
	}
	u, found, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInternal, "failed to load user", err)
	}
	if !found || !u.IsActive {
		s.metrics.RecordAuthEvent(metrics.AuthRefreshFailure)
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInvalidRefreshToken, "Invalid refresh token", nil)
	}
	resp, err := s.buildLoginResponse(u)
	if err != nil {
		return LoginResponse{}, err
	}
	s.metrics.RecordAuthEvent(metrics.AuthRefreshSuccess)
	return resp, nil
}

func (s *service) Authenticate(_ context.Context, accessToken string) (Claims, error) {
	return s.tokens.VerifyAccess(accessToken)
}

func (s *service) Profile(ctx context.Context, userID string) (user.View, error) {
	u, found, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.View{}, apperrors.Wrap(apperrors.CodeInternal, "failed to load profile", err)
	}
	if !found {
		return user.View{}, apperrors.Wrap(apperrors.CodeNotFound, "user not found", nil)
	}
	return user.ToView(u), nil
}

func (s *service) buildLoginResponse(u user.User) (LoginResponse, error) {
	pair, err := s.tokens.IssuePair(IdentityOf(u))
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user.ToView(u),
	}, nil
}

// throttled fails open: a broken attempt store never locks users out.
func (s *service) throttled(ctx context.Context, email string) bool {
	if s.attempts == nil || s.cfg.MaxLoginAttempts <= 0 {
		return false
	}
	count, err := s.attempts.Count(ctx, attemptKey(email))
	if err != nil {
		s.logger.Warn("failed to read login attempts", "error", err)
		return false
	}
	return count >= int64(s.cfg.MaxLoginAttempts)
}

func (s *service) loginFailed(ctx context.Context, email string) error {
	s.metrics.RecordAuthEvent(metrics.AuthLoginFailure)
	if s.attempts != nil && s.cfg.MaxLoginAttempts > 0 {
		if _, err := s.attempts.Increment(ctx, attemptKey(email), s.cfg.LoginAttemptWindow); err != nil {
			s.logger.Warn("failed to record login attempt", "error", err)
		}
	}
	return apperrors.Wrap(apperrors.CodeInvalidCredentials, invalidCredentialsMessage, nil)
}

func attemptKey(email string) string {
	return "login:" + email
}

var (
	placeholderOnce sync.Once
	placeholder     []byte
)

func placeholderHash() []byte {
	placeholderOnce.Do(func() {
		placeholder, _ = bcrypt.GenerateFromPassword([]byte("projectshelf-placeholder"), bcrypt.DefaultCost)
	})
	return placeholder
}
