package ssr

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"devlog/utils"
)

const snapshotPrefix = "devlog:ssr:"

// Cache stores rendered HTML snapshots keyed by request path. It is an
// explicitly constructed component owned by whoever wires the routes, not
// ambient module state.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get returns the cached snapshot for path, if present.
func (c *Cache) Get(ctx context.Context, path string) (string, bool) {
	data, err := c.rdb.Get(ctx, snapshotPrefix+path).Result()
	if err != nil {
		return "", false
	}
	return data, true
}

// Set stores a snapshot. Failures are logged and ignored; a missing cache
// entry only costs a re-render.
func (c *Cache) Set(ctx context.Context, path, data string) {
	if err := c.rdb.Set(ctx, snapshotPrefix+path, data, c.ttl).Err(); err != nil {
		utils.Sugar.Warnf("ssr cache set failed path=%s err=%v", path, err)
	}
}

// Purge drops every cached snapshot.
func (c *Cache) Purge(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, snapshotPrefix+"*", 1000).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			pipe := c.rdb.Pipeline()
			for _, key := range keys {
				pipe.Del(ctx, key)
			}
			if _, err := pipe.Exec(ctx); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
