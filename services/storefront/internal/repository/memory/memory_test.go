package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shestoi/storefront/services/storefront/internal/repository"
)

func TestRepository_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	_, err := repo.Get(ctx, "cart:s1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Set(ctx, "cart:s1", []byte(`{"version":1}`)))

	got, err := repo.Get(ctx, "cart:s1")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"version":1}`), got)

	require.NoError(t, repo.Delete(ctx, "cart:s1"))
	require.NoError(t, repo.Delete(ctx, "cart:s1"))

	_, err = repo.Get(ctx, "cart:s1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRepository_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	require.NoError(t, repo.Set(ctx, "k", []byte("abc")))

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	got[0] = 'x'

	again, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), again)
}
