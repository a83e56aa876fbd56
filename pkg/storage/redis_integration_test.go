//go:build integration

package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/internal/testutil/containers"
	"github.com/dmitrymomot/storefront/pkg/redis"
	"github.com/dmitrymomot/storefront/pkg/storage"
)

func TestRedisStorage(t *testing.T) {
	rc := containers.NewRedisContainer(t)

	client, err := redis.Connect(context.Background(), redis.Config{
		ConnectionURL:  rc.URL,
		RetryAttempts:  3,
		RetryInterval:  time.Second,
		ConnectTimeout: 30 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, redis.Healthcheck(client)(context.Background()))

	runStorageContract(t, storage.NewRedisStorage(client, storage.WithKeyPrefix("device-a:")))

	t.Run("prefixes isolate profiles", func(t *testing.T) {
		ctx := context.Background()
		a := storage.NewRedisStorage(client, storage.WithKeyPrefix("profile-a:"))
		b := storage.NewRedisStorage(client, storage.WithKeyPrefix("profile-b:"))

		require.NoError(t, a.Set(ctx, "token", "a-token"))
		_, err := b.Get(ctx, "token")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		raw, err := client.Get(ctx, "profile-a:token").Result()
		require.NoError(t, err)
		assert.Equal(t, "a-token", raw)
	})
}
