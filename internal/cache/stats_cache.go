// Package cache keeps the most recent stats snapshot in Redis so repeated
// stat reads between writes skip the full table scan.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unclebandit/coldmail-tracker/internal/model"
)

// ErrStale is returned by Set when the snapshot was computed before the
// latest Invalidate and was therefore not stored.
var ErrStale = errors.New("stats snapshot is stale")

// StatsCache stores a single stats snapshot under one key. A generation
// counter next to it is bumped by every Invalidate; Set only stores a
// snapshot whose generation is still current.
type StatsCache struct {
	client *redis.Client
	key    string
	genKey string
	ttl    time.Duration
}

// NewStatsCache creates a cache backed by client.
func NewStatsCache(client *redis.Client, key string, ttl time.Duration) *StatsCache {
	if key == "" {
		key = "coldmail:stats"
	}
	return &StatsCache{client: client, key: key, genKey: key + ":gen", ttl: ttl}
}

// Connect parses a redis:// URL, pings the server and returns a client.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Get returns the cached snapshot, or nil on a miss.
func (c *StatsCache) Get(ctx context.Context) (*model.Stats, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	var st model.Stats
	if err := json.Unmarshal(data, &st); err != nil {
		// a corrupt entry is a miss; drop it
		c.client.Del(ctx, c.key)
		return nil, nil
	}
	return &st, nil
}

// Generation returns the current invalidation counter. Read it before
// scanning the store and pass it to Set.
func (c *StatsCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get stats generation: %w", err)
	}
	return gen, nil
}

// Set stores st for the configured TTL if no Invalidate happened since gen
// was read. Otherwise it returns ErrStale.
func (c *StatsCache) Set(ctx context.Context, gen int64, st model.Stats) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, c.genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key, data, c.ttl)
			return nil
		})
		return err
	}, c.genKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStale), errors.Is(err, redis.TxFailedErr):
		return ErrStale
	}
	return fmt.Errorf("set stats: %w", err)
}

// Invalidate drops the snapshot and bumps the generation, so a read that
// started before this call can no longer store its result.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey)
		pipe.Del(ctx, c.key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate stats: %w", err)
	}
	return nil
}
