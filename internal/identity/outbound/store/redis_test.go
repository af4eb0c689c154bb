package store

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()
	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)

	opt, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestRedis(t *testing.T) {
	client := newRedisClient(t)
	runStoreContract(t, NewRedis(client, "test", instrument.NewNoop()))
}

func TestRedis_KeysExpireAfterRetention(t *testing.T) {
	client := newRedisClient(t)
	s := NewRedis(client, "test", instrument.NewNoop())
	ctx := context.Background()

	expiresAt := time.Now().Add(2 * time.Minute)
	require.NoError(t, s.PutChallenge(ctx, entity.Challenge{Email: "ttl@x.com", Code: "d", ExpiresAt: expiresAt}))

	ttl, err := client.PTTL(ctx, "test:challenge:ttl@x.com").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 2*time.Minute)
	assert.LessOrEqual(t, ttl, 2*time.Minute+redisRetention)

	n, err := s.SweepChallenges(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}
