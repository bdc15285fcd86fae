package author

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// absentMarker is stored for names the knowledge lookup did not find.
const absentMarker = "-"

// RedisCache shares lookups between processes. Entries expire after ttl;
// a zero ttl never expires them.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "bookfeed:author:"
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, name string) (*Profile, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+name).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if val == absentMarker {
		return nil, true, nil
	}
	var p Profile
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, false, fmt.Errorf("decode cached profile %q: %w", name, err)
	}
	return &p, true, nil
}

func (c *RedisCache) Set(ctx context.Context, name string, p *Profile) error {
	val := absentMarker
	if p != nil {
		b, err := json.Marshal(p)
		if err != nil {
			return err
		}
		val = string(b)
	}
	return c.client.Set(ctx, c.prefix+name, val, c.ttl).Err()
}
