package userrepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/projectshelf/internal/domain/user"
)

func TestMemoryRepository_EmailIsUnique(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, user.NewUser{FirstName: "Ada", Email: "a@x.com", PasswordHash: "h", Role: user.RoleUser})
	require.NoError(t, err)
	require.True(t, isUUID(created.ID))
	require.True(t, created.IsActive)

	_, err = repo.Create(ctx, user.NewUser{FirstName: "Other", Email: "a@x.com", PasswordHash: "h", Role: user.RoleUser})
	require.ErrorIs(t, err, user.ErrEmailExists)

	_, err = repo.Create(ctx, user.NewUser{FirstName: "Other", Email: "A@x.com", PasswordHash: "h", Role: user.RoleUser})
	require.NoError(t, err)
}

func TestMemoryRepository_UpdateAndDelete(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, user.NewUser{FirstName: "Ada", Email: "a@x.com", PasswordHash: "h", Role: user.RoleUser})
	require.NoError(t, err)

	created.FirstName = "Augusta"
	created.Email = "changed@x.com"
	updated, found, err := repo.Update(ctx, created)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Augusta", updated.FirstName)
	require.Equal(t, "a@x.com", updated.Email)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	_, found, err = repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.False(t, found)

	deleted, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, deleted)

	_, err = repo.Create(ctx, user.NewUser{FirstName: "Ada", Email: "a@x.com", PasswordHash: "h", Role: user.RoleUser})
	require.NoError(t, err)
}
