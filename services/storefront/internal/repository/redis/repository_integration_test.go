//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/shestoi/storefront/services/storefront/internal/repository"
)

func TestRepository_Integration(t *testing.T) {
	ctx := context.Background()

	// Поднимаем настоящий Redis: проверяем TTL и поведение на реальном сервере
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, container.Terminate(ctx))
	}()

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	defer client.Close()

	repo := NewRepository(client, time.Minute, zap.NewNop())
	require.NoError(t, repo.Ping(ctx))

	t.Run("Set and Get", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "cart:it", []byte(`{"version":1,"lines":[]}`)))

		got, err := repo.Get(ctx, "cart:it")
		require.NoError(t, err)
		require.JSONEq(t, `{"version":1,"lines":[]}`, string(got))

		ttl, err := client.TTL(ctx, "cart:it").Result()
		require.NoError(t, err)
		require.Greater(t, ttl, time.Duration(0))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "cart:it"))

		_, err := repo.Get(ctx, "cart:it")
		require.ErrorIs(t, err, repository.ErrNotFound)
	})
}
