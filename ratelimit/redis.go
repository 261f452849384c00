package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces rate-limit keys in a shared Redis instance.
const DefaultKeyPrefix = "guardrail:rl"

// RedisStore is a Store backed by a shared Redis instance, making the window
// counters visible across processes. The hot path is a single INCR with an
// expiry pinned to the window start, so concurrent increments from multiple
// instances stay atomic.
type RedisStore struct {
	rdb    *goredis.Client
	prefix string
}

// NewRedisStore creates a RedisStore on top of an existing go-redis client.
// An empty prefix uses DefaultKeyPrefix.
func NewRedisStore(rdb *goredis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) counterKey(key string) string { return s.prefix + ":" + key }
func (s *RedisStore) limitKey(key string) string   { return s.prefix + ":" + key + ":limit" }

// Get returns the live entry for key, or nil if absent or expired.
func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	pipe := s.rdb.Pipeline()
	usedCmd := pipe.Get(ctx, s.counterKey(key))
	limitCmd := pipe.Get(ctx, s.limitKey(key))
	ttlCmd := pipe.PTTL(ctx, s.counterKey(key))
	if _, err := pipe.Exec(ctx); err != nil && err != goredis.Nil {
		return nil, fmt.Errorf("ratelimit get %q: %w", key, err)
	}

	used, err := usedCmd.Int()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ratelimit get %q: %w", key, err)
	}

	ttl, err := ttlCmd.Result()
	if err != nil || ttl <= 0 {
		// No expiry left means the window lapsed between commands.
		return nil, nil
	}

	limit, _ := limitCmd.Int()
	return &Entry{
		Limit:   limit,
		Used:    used,
		ResetAt: time.Now().Add(ttl),
	}, nil
}

// Set stores an entry for key with an expiry at the entry's reset time.
func (s *RedisStore) Set(ctx context.Context, key string, e *Entry) error {
	ttl := time.Until(e.ResetAt)
	if ttl <= 0 {
		return s.Reset(ctx, key)
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, s.counterKey(key), strconv.Itoa(e.Used), ttl)
	pipe.Set(ctx, s.limitKey(key), strconv.Itoa(e.Limit), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("ratelimit set %q: %w", key, err)
	}
	return nil
}

// Increment counts one request against key. The first increment of a window
// pins the expiry; later increments ride the existing one.
func (s *RedisStore) Increment(ctx context.Context, key string, limit int, window time.Duration) (*Entry, error) {
	used, err := s.rdb.Incr(ctx, s.counterKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("ratelimit increment %q: %w", key, err)
	}

	if used == 1 {
		pipe := s.rdb.Pipeline()
		pipe.PExpire(ctx, s.counterKey(key), window)
		pipe.Set(ctx, s.limitKey(key), strconv.Itoa(limit), window)
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("ratelimit window start %q: %w", key, err)
		}
		return &Entry{Limit: limit, Used: 1, ResetAt: time.Now().Add(window)}, nil
	}

	ttl, err := s.rdb.PTTL(ctx, s.counterKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("ratelimit ttl %q: %w", key, err)
	}
	if ttl <= 0 {
		// Counter without expiry: a crash between INCR and PEXPIRE left it
		// behind. Start a fresh window rather than counting forever.
		if err := s.Reset(ctx, key); err != nil {
			return nil, err
		}
		return s.Increment(ctx, key, limit, window)
	}

	return &Entry{
		Limit:   limit,
		Used:    int(used),
		ResetAt: time.Now().Add(ttl),
	}, nil
}

// Reset removes the entry for key.
func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.counterKey(key), s.limitKey(key)).Err(); err != nil {
		return fmt.Errorf("ratelimit reset %q: %w", key, err)
	}
	return nil
}

// compile-time interface checks
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
