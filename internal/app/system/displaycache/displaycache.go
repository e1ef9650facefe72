// internal/app/system/displaycache/displaycache.go
//
// Package displaycache caches the display names the document backend
// joins onto complaint pages (author, assignee and category names).
package displaycache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Kinds of cached names.
const (
	Users      = "user"
	Categories = "category"
)

// Cache maps document IDs to display names. Misses and backend errors
// both surface as missing IDs; callers then read the store.
type Cache interface {
	Names(ctx context.Context, kind string, ids []string) (found map[string]string, missing []string)
	Remember(ctx context.Context, kind string, names map[string]string)
	Forget(ctx context.Context, kind, id string)
}

// Nop caches nothing.
type Nop struct{}

func (Nop) Names(_ context.Context, _ string, ids []string) (map[string]string, []string) {
	return map[string]string{}, ids
}
func (Nop) Remember(context.Context, string, map[string]string) {}
func (Nop) Forget(context.Context, string, string)              {}

// Redis stores one string key per name with a TTL.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

// NewRedis wraps rdb. A zero ttl means ten minutes.
func NewRedis(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Redis{rdb: rdb, ttl: ttl, log: log}
}

func key(kind, id string) string {
	return "cityseva:name:" + kind + ":" + id
}

func (c *Redis) Names(ctx context.Context, kind string, ids []string) (map[string]string, []string) {
	found := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(kind, id)
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		c.log.Warn("display cache read failed", zap.String("kind", kind), zap.Error(err))
		return found, ids
	}
	var missing []string
	for i, v := range vals {
		if s, ok := v.(string); ok {
			found[ids[i]] = s
			continue
		}
		missing = append(missing, ids[i])
	}
	return found, missing
}

func (c *Redis) Remember(ctx context.Context, kind string, names map[string]string) {
	if len(names) == 0 {
		return
	}
	pipe := c.rdb.Pipeline()
	for id, name := range names {
		pipe.Set(ctx, key(kind, id), name, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("display cache write failed", zap.String("kind", kind), zap.Error(err))
	}
}

func (c *Redis) Forget(ctx context.Context, kind, id string) {
	if err := c.rdb.Del(ctx, key(kind, id)).Err(); err != nil && err != redis.Nil {
		c.log.Warn("display cache delete failed", zap.String("kind", kind), zap.Error(err))
	}
}
