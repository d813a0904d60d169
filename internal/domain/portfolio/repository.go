package portfolio

import "context"

// Repository persists portfolios. Every lookup is scoped to the owner so a
// portfolio belonging to someone else is indistinguishable from a missing one.
type Repository interface {
	Create(ctx context.Context, p Portfolio) (Portfolio, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Portfolio, error)
	GetForOwner(ctx context.Context, id, ownerID string) (Portfolio, bool, error)
	Update(ctx context.Context, p Portfolio) (Portfolio, bool, error)
	Delete(ctx context.Context, id, ownerID string) (bool, error)
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}
