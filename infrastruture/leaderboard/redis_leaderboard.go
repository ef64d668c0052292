package leaderboard

import (
	"context"
	"errors"
	"fmt"

	dmn "github.com/beka-birhanu/vinom-mines/domain"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "minesweeper"
	defaultSize   = 10
)

var _ i.Leaderboard = &RedisLeaderboard{}

// RedisLeaderboard keeps the fastest winning times of each level in a Redis
// sorted set, lowest score first.
type RedisLeaderboard struct {
	client *redis.Client
	locker *redsync.Redsync
	prefix string
	size   int64
}

// NewRedisLeaderboard initializes a RedisLeaderboard that keeps at most size
// entries per level under keys starting with prefix.
func NewRedisLeaderboard(client *redis.Client, prefix string, size int64) *RedisLeaderboard {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if size <= 0 {
		size = defaultSize
	}
	pool := goredis.NewPool(client)
	return &RedisLeaderboard{
		client: client,
		locker: redsync.New(pool),
		prefix: prefix,
		size:   size,
	}
}

// Key returns the sorted set holding the times of level.
func (l *RedisLeaderboard) Key(level int) string {
	return fmt.Sprintf("%s:level_%d", l.prefix, level)
}

// Submit records elapsed for the session unless it already holds a better
// time, then trims the board to its size.
func (l *RedisLeaderboard) Submit(ctx context.Context, level int, sessionID uuid.UUID, elapsed int) error {
	key := l.Key(level)
	mutex := l.locker.NewMutex(key + ":submit_lock")
	if err := mutex.LockContext(ctx); err != nil {
		return err
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	member := sessionID.String()
	best, err := l.client.ZScore(ctx, key, member).Result()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return err
	case best <= float64(elapsed):
		return nil
	}

	if err := l.client.ZAdd(ctx, key, redis.Z{Score: float64(elapsed), Member: member}).Err(); err != nil {
		return err
	}
	return l.client.ZRemRangeByRank(ctx, key, l.size, -1).Err()
}

// Top returns up to limit entries of level, fastest first.
func (l *RedisLeaderboard) Top(ctx context.Context, level int, limit int64) ([]dmn.LeaderboardEntry, error) {
	if limit <= 0 || limit > l.size {
		limit = l.size
	}

	scores, err := l.client.ZRangeWithScores(ctx, l.Key(level), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]dmn.LeaderboardEntry, 0, len(scores))
	for _, z := range scores {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(member)
		if err != nil {
			continue
		}
		entries = append(entries, dmn.LeaderboardEntry{SessionID: id, Elapsed: int(z.Score)})
	}
	return entries, nil
}
