package auth

import (
	"context"
	"time"

	"github.com/yanqian/projectshelf/internal/domain/user"
)

// CredentialStore is the read side of user persistence the auth flow needs.
// user.Repository satisfies it.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, bool, error)
	GetByID(ctx context.Context, id string) (user.User, bool, error)
}

// AttemptStore counts failed logins per key inside a fixed window.
type AttemptStore interface {
	// Increment bumps the counter, starting a new window when none is open.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	Count(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}
