package user

import "context"

// Repository abstracts user persistence. Implementations enforce email uniqueness
// by returning ErrEmailExists from Create.
type Repository interface {
	Create(ctx context.Context, u NewUser) (User, error)
	GetByEmail(ctx context.Context, email string) (User, bool, error)
	GetByID(ctx context.Context, id string) (User, bool, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u User) (User, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// PortfolioLifecycle is the slice of the portfolio domain that account
// creation and deletion drive.
type PortfolioLifecycle interface {
	CreateDefault(ctx context.Context, owner User) error
	DeleteAllForOwner(ctx context.Context, ownerID string) error
}
