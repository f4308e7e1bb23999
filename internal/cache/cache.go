package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps redis.Client and fails safe: connectivity errors behave like
// cache misses. A nil *Client is a valid, always-missing cache.
type Client struct {
	client *redis.Client
}

// New creates a new Redis client. An empty addr disables caching.
func New(addr, password string, db int) *Client {
	if addr == "" {
		return nil
	}
	return &Client{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Ping reports whether redis is reachable.
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
	res, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil and connectivity errors alike
		return nil, nil
	}
	return res, nil
}

// Set stores value with TTL. Redis errors are ignored.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Set(ctx, key, value, ttl)
}

// SetIfAbsent stores value only when key does not exist and reports whether it did.
func (c *Client) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	if c == nil || c.client == nil {
		return false
	}
	ok, err := c.client.SetNX(ctx, key, value, ttl).Result()
	return err == nil && ok
}

// Delete removes a key. Redis errors are ignored.
func (c *Client) Delete(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, key)
}

// GetJSON decodes a cached value into dst and reports whether it was a hit.
func (c *Client) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	data, _ := c.Get(ctx, key)
	if data == nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

// SetJSON encodes value and stores it with TTL.
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.Set(ctx, key, payload, ttl)
}

// SetJSONIfAbsent encodes value and stores it unless key already exists.
func (c *Client) SetJSONIfAbsent(ctx context.Context, key string, value interface{}, ttl time.Duration) bool {
	payload, err := json.Marshal(value)
	if err != nil {
		return false
	}
	return c.SetIfAbsent(ctx, key, payload, ttl)
}

// Close releases the connection pool.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
