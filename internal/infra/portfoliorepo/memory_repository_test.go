package portfoliorepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/projectshelf/internal/domain/portfolio"
)

func TestMemoryRepository_OwnerScoping(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, portfolio.Portfolio{UserID: "owner", Name: "Ada", Title: "Engineer"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.NotNil(t, created.CaseStudies)

	_, found, err := repo.GetForOwner(ctx, created.ID, "intruder")
	require.NoError(t, err)
	require.False(t, found)

	created.UserID = "intruder"
	_, found, err = repo.Update(ctx, created)
	require.NoError(t, err)
	require.False(t, found)

	deleted, err := repo.Delete(ctx, created.ID, "intruder")
	require.NoError(t, err)
	require.False(t, deleted)

	list, err := repo.ListByOwner(ctx, "intruder")
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}

func TestMemoryRepository_ReturnsDetachedCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, portfolio.Portfolio{
		UserID:      "owner",
		Name:        "Ada",
		Title:       "Engineer",
		CaseStudies: []portfolio.CaseStudy{{ID: "cs1", Title: "One", Tools: []string{"Go"}}},
	})
	require.NoError(t, err)

	created.CaseStudies[0].Tools[0] = "mutated"

	stored, found, err := repo.GetForOwner(ctx, created.ID, "owner")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []string{"Go"}, stored.CaseStudies[0].Tools)
}

func TestMemoryRepository_DeleteByOwner(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for _, owner := range []string{"a", "a", "b"} {
		_, err := repo.Create(ctx, portfolio.Portfolio{UserID: owner, Name: "n", Title: "t"})
		require.NoError(t, err)
	}

	n, err := repo.DeleteByOwner(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	remaining, err := repo.ListByOwner(ctx, "b")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
}
