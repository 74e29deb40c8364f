package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/port"
)

// PendingResetCache caches the per-user pending-reset flag under short TTLs.
// The session guard reads this on every authenticated request, so the cache
// absorbs what would otherwise be one users-table query per request.
type PendingResetCache struct {
	client *goredis.Client
	prefix string
}

var _ port.PendingResetCache = (*PendingResetCache)(nil)

func NewPendingResetCache(client *goredis.Client, prefix string) *PendingResetCache {
	return &PendingResetCache{client: client, prefix: prefix}
}

func (c *PendingResetCache) key(userID int64) string {
	return c.prefix + ":" + strconv.FormatInt(userID, 10)
}

func (c *PendingResetCache) Get(ctx context.Context, userID int64) (bool, bool, error) {
	val, err := c.client.Get(ctx, c.key(userID)).Result()
	if errors.Is(err, goredis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("get pending flag: %w", err)
	}
	return val == "1", true, nil
}

func (c *PendingResetCache) Set(ctx context.Context, userID int64, pending bool, ttl time.Duration) error {
	val := "0"
	if pending {
		val = "1"
	}
	if err := c.client.Set(ctx, c.key(userID), val, ttl).Err(); err != nil {
		return fmt.Errorf("set pending flag: %w", err)
	}
	return nil
}

func (c *PendingResetCache) Invalidate(ctx context.Context, userID int64) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("invalidate pending flag: %w", err)
	}
	return nil
}
