package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yanqian/projectshelf/internal/domain/user"
	apperrors "github.com/yanqian/projectshelf/pkg/errors"
	"github.com/yanqian/projectshelf/pkg/util"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// TokenService issues and verifies HS256 token pairs. Access and refresh
// tokens are signed with different secrets so neither class can be forged
// from the other's key.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           util.Clock
}

// NewTokenService builds a TokenService using the wall clock.
func NewTokenService(cfg Config) (*TokenService, error) {
	return NewTokenServiceWithClock(cfg, util.NowUTC)
}

// NewTokenServiceWithClock builds a TokenService that reads time from clock.
func NewTokenServiceWithClock(cfg Config, clock util.Clock) (*TokenService, error) {
	access := strings.TrimSpace(cfg.AccessSecret)
	refresh := strings.TrimSpace(cfg.RefreshSecret)
	if access == "" || refresh == "" || access == refresh {
		return nil, ErrInvalidTokenConfig
	}
	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	refreshTTL := cfg.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenService{
		accessSecret:  []byte(access),
		refreshSecret: []byte(refresh),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           clock,
	}, nil
}

// IssuePair signs a fresh access and refresh token for identity.
func (t *TokenService) IssuePair(identity Identity) (TokenPair, error) {
	now := t.now()
	access, err := t.sign(identity, tokenTypeAccess, t.accessSecret, now, t.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := t.sign(identity, tokenTypeRefresh, t.refreshSecret, now, t.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess validates an access token.
func (t *TokenService) VerifyAccess(token string) (Claims, error) {
	return t.verify(token, tokenTypeAccess, t.accessSecret)
}

// VerifyRefresh validates a refresh token.
func (t *TokenService) VerifyRefresh(token string) (Claims, error) {
	return t.verify(token, tokenTypeRefresh, t.refreshSecret)
}

// AccessTTL reports the access token lifetime.
func (t *TokenService) AccessTTL() time.Duration {
	return t.accessTTL
}

// RefreshTTL reports the refresh token lifetime.
func (t *TokenService) RefreshTTL() time.Duration {
	return t.refreshTTL
}

func (t *TokenService) sign(identity Identity, tokenType string, secret []byte, now time.Time, ttl time.Duration) (string, error) {
	claims := tokenClaims{
		Email:     identity.Email,
		Role:      identity.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInternal, "failed to sign token", err)
	}
	return signed, nil
}

// verify collapses every failure into invalid_token so callers cannot tell
// expired, malformed and foreign-secret tokens apart.
func (t *TokenService) verify(token, tokenType string, secret []byte) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token missing", nil)
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(t.now),
	)
	var claims tokenClaims
	parsed, err := parser.ParseWithClaims(token, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", tok.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token validation failed", err)
	}
	if !parsed.Valid {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token invalid", nil)
	}
	if claims.TokenType != tokenType {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token type mismatch", nil)
	}
	if claims.Subject == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token missing subject", nil)
	}
	out := Claims{
		Subject:   claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	return out, nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email     string    `json:"email"`
	Role      user.Role `json:"role"`
	TokenType string    `json:"type"`
}
