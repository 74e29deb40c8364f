package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/port"
)

// RateLimitStore tracks attempts in Redis sorted sets keyed by identifier.
// Member scores are unix nanosecond timestamps, so trimming a sliding window
// is a single ZREMRANGEBYSCORE.
type RateLimitStore struct {
	client *goredis.Client
	prefix string
}

var _ port.RateLimitStore = (*RateLimitStore)(nil)

func NewRateLimitStore(client *goredis.Client, prefix string) *RateLimitStore {
	return &RateLimitStore{client: client, prefix: prefix}
}

func (s *RateLimitStore) key(identifier string) string {
	return s.prefix + ":" + identifier
}

func (s *RateLimitStore) TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error {
	cutoff := reference.Add(-window).UnixNano()
	err := s.client.ZRemRangeByScore(ctx, s.key(identifier), "-inf", strconv.FormatInt(cutoff, 10)).Err()
	if err != nil {
		return fmt.Errorf("trim rate limit window: %w", err)
	}
	return nil
}

func (s *RateLimitStore) CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error) {
	cutoff := reference.Add(-window).UnixNano()
	count, err := s.client.ZCount(ctx, s.key(identifier), strconv.FormatInt(cutoff, 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("count rate limit attempts: %w", err)
	}
	return int(count), nil
}

func (s *RateLimitStore) RecordAttempt(ctx context.Context, identifier string, at time.Time) error {
	key := s.key(identifier)
	member := strconv.FormatInt(at.UnixNano(), 10)

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(at.UnixNano()), Member: member})
	// Expire the whole set once no attempt could still be in any window.
	pipe.Expire(ctx, key, 24*time.Hour)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record rate limit attempt: %w", err)
	}
	return nil
}

func (s *RateLimitStore) OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error) {
	cutoff := reference.Add(-window).UnixNano()

	members, err := s.client.ZRangeByScoreWithScores(ctx, s.key(identifier), &goredis.ZRangeBy{
		Min:   strconv.FormatInt(cutoff, 10),
		Max:   "+inf",
		Count: 1,
	}).Result()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read oldest attempt: %w", err)
	}
	if len(members) == 0 {
		return time.Time{}, false, nil
	}

	return time.Unix(0, int64(members[0].Score)), true, nil
}
