package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func deliveryKey(sid string) string { return fmt.Sprintf("delivery:%s", sid) }
func inboundKey(sid string) string  { return fmt.Sprintf("inbound:%s", sid) }

func (c *RedisCache) StoreDelivery(ctx context.Context, messageSID string, d Delivery) error {
	d.UpdatedAt = d.UpdatedAt.UTC()

	b, err := json.Marshal(d)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, deliveryKey(messageSID), b, c.ttl).Err()
}

func (c *RedisCache) Delivery(ctx context.Context, messageSID string) (Delivery, error) {
	raw, err := c.rdb.Get(ctx, deliveryKey(messageSID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Delivery{}, ErrMiss
	}
	if err != nil {
		return Delivery{}, err
	}

	var d Delivery
	if err := json.Unmarshal(raw, &d); err != nil {
		return Delivery{}, fmt.Errorf("decoding delivery %s: %w", messageSID, err)
	}
	return d, nil
}

func (c *RedisCache) Seen(ctx context.Context, messageSID string) (bool, error) {
	n, err := c.rdb.Exists(ctx, inboundKey(messageSID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *RedisCache) MarkSeen(ctx context.Context, messageSID string) error {
	return c.rdb.Set(ctx, inboundKey(messageSID), 1, c.ttl).Err()
}
