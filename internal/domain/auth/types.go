package auth

import (
	"time"

	"github.com/yanqian/projectshelf/internal/domain/user"
)

// Config drives authentication behavior.
type Config struct {
	AccessSecret       string
	RefreshSecret      string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	MaxLoginAttempts   int
	LoginAttemptWindow time.Duration
}

// Identity is what gets embedded into a token pair.
type Identity struct {
	UserID string
	Email  string
	Role   user.Role
}

// IdentityOf extracts the token identity from a stored user.
func IdentityOf(u user.User) Identity {
	return Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// Claims are decoded from a verified token: sub, email, role, iat, exp.
type Claims struct {
	Subject   string
	Email     string
	Role      user.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Actor converts verified claims into the caller identity used by domain services.
func (c Claims) Actor() user.Actor {
	return user.Actor{ID: c.Subject, Role: c.Role}
}

// TokenPair is one access token and one refresh token issued together.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginRequest captures login details.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the signed pair and the authenticated user.
type LoginResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	User         user.View `json:"user"`
}

// RefreshRequest encapsulates refresh token payload for clients without cookies.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
