package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/projectshelf/internal/domain/user"
	apperrors "github.com/yanqian/projectshelf/pkg/errors"
)

func TestTokenService_RejectsUnusableSecrets(t *testing.T) {
	_, err := NewTokenService(Config{AccessSecret: "", RefreshSecret: "r"})
	require.ErrorIs(t, err, ErrInvalidTokenConfig)

	_, err = NewTokenService(Config{AccessSecret: "same", RefreshSecret: "same"})
	require.ErrorIs(t, err, ErrInvalidTokenConfig)
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tokens := newTestTokens(t, func() time.Time { return now })

	pair, err := tokens.IssuePair(Identity{UserID: "u1", Email: "a@x.com", Role: user.RoleAdmin})
	require.NoError(t, err)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := tokens.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "u1", access.Subject)
	require.Equal(t, "a@x.com", access.Email)
	require.Equal(t, user.RoleAdmin, access.Role)
	require.WithinDuration(t, now, access.IssuedAt, 0)
	require.WithinDuration(t, now.Add(time.Hour), access.ExpiresAt, 0)

	refresh, err := tokens.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	require.WithinDuration(t, now.Add(24*time.Hour), refresh.ExpiresAt, 0)
}

func TestTokenService_PairsAreUnique(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tokens := newTestTokens(t, func() time.Time { return now })
	id := Identity{UserID: "u1", Email: "a@x.com", Role: user.RoleUser}

	first, err := tokens.IssuePair(id)
	require.NoError(t, err)
	second, err := tokens.IssuePair(id)
	require.NoError(t, err)
	require.NotEqual(t, first.AccessToken, second.AccessToken)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

func TestTokenService_CrossSecretTokensAreRejected(t *testing.T) {
	tokens := newTestTokens(t, time.Now)
	pair, err := tokens.IssuePair(Identity{UserID: "u1", Email: "a@x.com", Role: user.RoleUser})
	require.NoError(t, err)

	_, err = tokens.VerifyAccess(pair.RefreshToken)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	_, err = tokens.VerifyRefresh(pair.AccessToken)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}

func TestTokenService_ExpiredTokenIsRejected(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	current := now
	tokens := newTestTokens(t, func() time.Time { return current })

	pair, err := tokens.IssuePair(Identity{UserID: "u1", Email: "a@x.com", Role: user.RoleUser})
	require.NoError(t, err)

	current = now.Add(2 * time.Hour)
	_, err = tokens.VerifyAccess(pair.AccessToken)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	_, err = tokens.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
}

func TestTokenService_MalformedAndTamperedTokens(t *testing.T) {
	tokens := newTestTokens(t, time.Now)
	pair, err := tokens.IssuePair(Identity{UserID: "u1", Email: "a@x.com", Role: user.RoleUser})
	require.NoError(t, err)

	parts := strings.Split(pair.AccessToken, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	for _, raw := range []string{"", "not-a-jwt", "a.b.c", tampered} {
		_, err := tokens.VerifyAccess(raw)
		require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken), "token %q", raw)
	}
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	tokens := newTestTokens(t, time.Now)
	claims := tokenClaims{
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = tokens.VerifyAccess(signed)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}

func newTestTokens(t *testing.T, clock func() time.Time) *TokenService {
	t.Helper()
	tokens, err := NewTokenServiceWithClock(Config{
		AccessSecret:    "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}, clock)
	require.NoError(t, err)
	return tokens
}
