package leaderboard

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	assert.Equal(t, "mines:level_2", NewRedisLeaderboard(client, "mines", 5).Key(2))
	assert.Equal(t, "minesweeper:level_1", NewRedisLeaderboard(client, "", 0).Key(1))
}

// TestRedisLeaderboard runs against the Redis server named by
// LEADERBOARD_TEST_REDIS_ADDR.
func TestRedisLeaderboard(t *testing.T) {
	addr := os.Getenv("LEADERBOARD_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LEADERBOARD_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	lb := NewRedisLeaderboard(client, "test-"+uuid.NewString(), 2)
	defer client.Del(ctx, lb.Key(1))

	a, b, c := uuid.New(), uuid.New(), uuid.New()

	t.Run("keeps the best time of a session", func(t *testing.T) {
		assert.NoError(t, lb.Submit(ctx, 1, a, 50))
		assert.NoError(t, lb.Submit(ctx, 1, a, 80))
		assert.NoError(t, lb.Submit(ctx, 1, a, 30))

		top, err := lb.Top(ctx, 1, 10)
		assert.NoError(t, err)
		assert.Len(t, top, 1)
		assert.Equal(t, 30, top[0].Elapsed)
	})

	t.Run("trims to size, fastest first", func(t *testing.T) {
		assert.NoError(t, lb.Submit(ctx, 1, b, 10))
		assert.NoError(t, lb.Submit(ctx, 1, c, 90))

		top, err := lb.Top(ctx, 1, 0)
		assert.NoError(t, err)
		assert.Len(t, top, 2)
		assert.Equal(t, b, top[0].SessionID)
		assert.Equal(t, a, top[1].SessionID)
	})
}
