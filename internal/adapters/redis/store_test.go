package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ergoweb/internal/adapters/redis"
	"github.com/aretw0/ergoweb/pkg/domain"
	"github.com/aretw0/ergoweb/pkg/ports"
)

func TestRedisStore_Contract(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err, "Failed to start miniredis")
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client)
	ports.RunConfigStoreContract(t, store)
}

func TestRedisStore_TTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redis.NewFromClient(client, redis.WithTTL(time.Minute), redis.WithPrefix("test:"))

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "current", domain.NewConfiguration("{}")))

	mr.FastForward(2 * time.Minute)

	_, err = store.Load(ctx, "current")
	assert.ErrorIs(t, err, domain.ErrConfigNotFound, "expired configuration should read as missing")
}
