package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisLog struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLog(rdb *redis.Client, ttl time.Duration) *RedisLog {
	return &RedisLog{rdb: rdb, ttl: ttl}
}

func (c *RedisLog) StoreDispatch(ctx context.Context, e Entry) error {
	key := fmt.Sprintf("dispatch:%s:%d", e.Kind, e.EntityID)

	e.At = e.At.UTC()
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}
