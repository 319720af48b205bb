package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// compareAndDeleteScript deletes a key only when its value matches, so a
// one-time code is consumed exactly once and a wrong guess does not burn it.
var compareAndDeleteScript = redis.NewScript(
	`if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`,
)

// Client wraps redis.Client. Entries stored here (pending OTP codes) have
// no other source of truth, so errors propagate to the caller instead of
// being treated as cache misses.
type Client struct {
	client *redis.Client
}

// New creates a new Redis client.
func New(addr, password string, db int) *Client {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	return &Client{client: redis.NewClient(opts)}
}

// Set stores value with TTL.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// CompareAndDelete atomically deletes key if its value equals value.
// Returns true when the key matched and was removed.
func (c *Client) CompareAndDelete(ctx context.Context, key string, value []byte) (bool, error) {
	res, err := compareAndDeleteScript.Run(ctx, c.client, []string{key}, value).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

// Ping verifies connectivity to the Redis server.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
