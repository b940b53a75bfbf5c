package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "kairos:"

// Client wraps redis.Client. Reads fail safe and treat connectivity errors
// as a miss; writes report them. A nil *Client is valid and behaves as an
// always-empty cache that accepts every write.
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

// Ping reports whether redis is reachable. Callers use it only for logging.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Get returns value or nil if missing or redis unavailable.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	res, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		// redis.Nil and connectivity errors both read as a miss
		return nil, nil
	}
	return res, nil
}

// Set stores value with TTL.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, keyPrefix+key, value, ttl).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
