package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yanqian/projectshelf/internal/domain/user"
	apperrors "github.com/yanqian/projectshelf/pkg/errors"
	"github.com/yanqian/projectshelf/pkg/metrics"
)

func TestService_LoginAndRefresh(t *testing.T) {
	creds := newCredentialStub(t, user.User{ID: "u1", FirstName: "Ada", Email: "a@x.com", Role: user.RoleUser, IsActive: true}, "secret123")
	svc := newTestService(t, creds, newAttemptStub(), 5)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: " a@x.com ", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, "u1", resp.User.ID)
	require.Equal(t, "Ada", resp.User.FirstName)

	claims, err := svc.Authenticate(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
	require.Equal(t, user.RoleUser, claims.Role)

	refreshed, err := svc.Refresh(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, resp.AccessToken, refreshed.AccessToken)
	require.NotEqual(t, resp.RefreshToken, refreshed.RefreshToken)
	require.Equal(t, "a@x.com", refreshed.User.Email)
}

func TestService_LoginFailuresAreIndistinguishable(t *testing.T) {
	creds := newCredentialStub(t, user.User{ID: "u1", Email: "a@x.com", Role: user.RoleUser, IsActive: true}, "secret123")
	svc := newTestService(t, creds, newAttemptStub(), 0)

	_, wrongPassword := svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "nope-nope"})
	_, unknownEmail := svc.Login(context.Background(), LoginRequest{Email: "b@x.com", Password: "secret123"})
	_, otherCase := svc.Login(context.Background(), LoginRequest{Email: "A@x.com", Password: "secret123"})

	for _, err := range []error{wrongPassword, unknownEmail, otherCase} {
		require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidCredentials))
		require.Equal(t, invalidCredentialsMessage, apperrors.MessageOf(err))
	}
}

func TestService_LoginRejectsInactiveUser(t *testing.T) {
	creds := newCredentialStub(t, user.User{ID: "u1", Email: "a@x.com", Role: user.RoleUser, IsActive: false}, "secret123")
	svc := newTestService(t, creds, newAttemptStub(), 0)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "secret123"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidCredentials))
}

func TestService_LoginValidatesInput(t *testing.T) {
	svc := newTestService(t, &credentialStub{}, nil, 0)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "", Password: "x"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@x.com"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestService_LoginThrottle(t *testing.T) {
	creds := newCredentialStub(t, user.User{ID: "u1", Email: "a@x.com", Role: user.RoleUser, IsActive: true}, "secret123")
	attempts := newAttemptStub()
	svc := newTestService(t, creds, attempts, 3)

	for i := 0; i < 3; i++ {
		_, err := svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "wrong-pass"})
		require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidCredentials))
	}

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "secret123"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeTooManyAttempts))

	require.NoError(t, attempts.Reset(context.Background(), attemptKey("a@x.com")))
	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)
}

func TestService_SuccessfulLoginResetsAttempts(t *testing.T) {
	creds := newCredentialStub(t, user.User{ID: "u1", Email: "a@x.com", Role: user.RoleUser, IsActive: true}, "secret123")
	attempts := newAttemptStub()
	svc := newTestService(t, creds, attempts, 3)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "wrong-pass"})
	require.Error(t, err)
	require.Equal(t, int64(1), attempts.counts[attemptKey("a@x.com")])

	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)
	require.Zero(t, attempts.counts[attemptKey("a@x.com")])
}

func TestService_ThrottleFailsOpen(t *testing.T) {
	creds := newCredentialStub(t, user.User{ID: "u1", Email: "a@x.com", Role: user.RoleUser, IsActive: true}, "secret123")
	attempts := newAttemptStub()
	attempts.err = errors.New("valkey down")
	svc := newTestService(t, creds, attempts, 1)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)
}

func TestService_RefreshRejectsBadTokens(t *testing.T) {
	creds := newCredentialStub(t, user.User{ID: "u1", Email: "a@x.com", Role: user.RoleUser, IsActive: true}, "secret123")
	svc := newTestService(t, creds, nil, 0)

	_, err := svc.Refresh(context.Background(), "")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidRefreshToken))
	require.Equal(t, "Refresh token not found", apperrors.MessageOf(err))

	_, err = svc.Refresh(context.Background(), "garbage")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidRefreshToken))
	require.Equal(t, "Invalid refresh token", apperrors.MessageOf(err))

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background(), resp.AccessToken)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidRefreshToken))
}

func TestService_RefreshFailsForDeletedUser(t *testing.T) {
	creds := newCredentialStub(t, user.User{ID: "u1", Email: "a@x.com", Role: user.RoleUser, IsActive: true}, "secret123")
	svc := newTestService(t, creds, nil, 0)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)

	creds.users = nil
	_, err = svc.Refresh(context.Background(), resp.RefreshToken)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidRefreshToken))
}

func TestService_RefreshUsesCurrentRole(t *testing.T) {
	creds := newCredentialStub(t, user.User{ID: "u1", Email: "a@x.com", Role: user.RoleUser, IsActive: true}, "secret123")
	svc := newTestService(t, creds, nil, 0)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)

	promoted := creds.users["u1"]
	promoted.Role = user.RoleAdmin
	creds.users["u1"] = promoted

	refreshed, err := svc.Refresh(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	claims, err := svc.Authenticate(context.Background(), refreshed.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.RoleAdmin, claims.Role)
}

func TestService_Profile(t *testing.T) {
	creds := newCredentialStub(t, user.User{ID: "u1", FirstName: "Ada", Email: "a@x.com", Role: user.RoleUser, IsActive: true}, "secret123")
	svc := newTestService(t, creds, nil, 0)

	view, err := svc.Profile(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "Ada", view.FirstName)

	_, err = svc.Profile(context.Background(), "missing")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func newTestService(t *testing.T, creds CredentialStore, attempts AttemptStore, maxAttempts int) Service {
	t.Helper()
	cfg := Config{
		AccessSecret:       "access-secret",
		RefreshSecret:      "refresh-secret",
		AccessTokenTTL:     time.Hour,
		RefreshTokenTTL:    24 * time.Hour,
		MaxLoginAttempts:   maxAttempts,
		LoginAttemptWindow: 15 * time.Minute,
	}
	tokens, err := NewTokenService(cfg)
	require.NoError(t, err)
	return NewService(cfg, tokens, creds, attempts, metrics.Nop{}, newTestLogger())
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type credentialStub struct {
	users map[string]user.User
}

func newCredentialStub(t *testing.T, u user.User, password string) *credentialStub {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u.PasswordHash = string(hash)
	return &credentialStub{users: map[string]user.User{u.ID: u}}
}

func (c *credentialStub) GetByEmail(_ context.Context, email string) (user.User, bool, error) {
	for _, u := range c.users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return user.User{}, false, nil
}

func (c *credentialStub) GetByID(_ context.Context, id string) (user.User, bool, error) {
	u, ok := c.users[id]
	return u, ok, nil
}

type attemptStub struct {
	counts map[string]int64
	err    error
}

func newAttemptStub() *attemptStub {
	return &attemptStub{counts: make(map[string]int64)}
}

func (a *attemptStub) Increment(_ context.Context, key string, _ time.Duration) (int64, error) {
	if a.err != nil {
		return 0, a.err
	}
	a.counts[key]++
	return a.counts[key], nil
}

func (a *attemptStub) Count(_ context.Context, key string) (int64, error) {
	if a.err != nil {
		return 0, a.err
	}
	return a.counts[key], nil
}

func (a *attemptStub) Reset(_ context.Context, key string) error {
	if a.err != nil {
		return a.err
	}
	delete(a.counts, key)
	return nil
}
