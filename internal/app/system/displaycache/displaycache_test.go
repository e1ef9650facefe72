package displaycache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func TestNop_EverythingMisses(t *testing.T) {
	var c Cache = Nop{}
	found, missing := c.Names(context.Background(), Users, []string{"a", "b"})
	if len(found) != 0 {
		t.Errorf("expected no hits, got %v", found)
	}
	if len(missing) != 2 {
		t.Errorf("expected 2 misses, got %v", missing)
	}
}

func TestRedis_RememberAndForget(t *testing.T) {
	addr := os.Getenv("CITYSEVA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CITYSEVA_TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	c := NewRedis(rdb, time.Minute, zap.NewNop())
	id := "test-" + time.Now().Format("150405.000000")
	c.Remember(ctx, Users, map[string]string{id: "asha"})
	defer c.Forget(ctx, Users, id)

	found, missing := c.Names(ctx, Users, []string{id, id + "-absent"})
	if found[id] != "asha" {
		t.Errorf("expected cached name, got %q", found[id])
	}
	if len(missing) != 1 || missing[0] != id+"-absent" {
		t.Errorf("unexpected misses %v", missing)
	}

	c.Forget(ctx, Users, id)
	if _, missing := c.Names(ctx, Users, []string{id}); len(missing) != 1 {
		t.Errorf("expected miss after Forget")
	}
}
