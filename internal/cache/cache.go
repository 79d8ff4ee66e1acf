package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var errNoCache = errors.New("cache client not configured")

// UserKey is the cache key of a user profile.
func UserKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// ProfileInvalidator drops a cached user profile after a mutation, so every
// write path that touches user state can keep the read-through cache coherent.
type ProfileInvalidator interface {
	InvalidateUser(ctx context.Context, id uint) error
}

// Client wraps redis.Client. Errors propagate to the caller: the refresh token
// write is load-bearing and must not be silently dropped. Callers using the
// cache as a read-through layer treat errors as misses at the call site.
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

// disabled reports whether the cache is absent. Read-through callers see a
// permanent miss; session storage refuses to pretend it wrote.
func (c *Client) disabled() bool {
	return c == nil || c.client == nil
}

// Get returns the value at key, or nil with no error on a missing key.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if c.disabled() {
		return nil, nil
	}
	res, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Set stores value with TTL. A zero TTL means no expiry.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.disabled() {
		return nil
	}
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes a key.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c.disabled() {
		return nil
	}
	return c.client.Del(ctx, key).Err()
}

// Ensure Client implements ProfileInvalidator
var _ ProfileInvalidator = (*Client)(nil)

// InvalidateUser removes the cached profile for a user.
func (c *Client) InvalidateUser(ctx context.Context, id uint) error {
	return c.Delete(ctx, UserKey(id))
}

// HGet returns the value of a hash field, or nil with no error when the field
// is missing.
func (c *Client) HGet(ctx context.Context, key, field string) ([]byte, error) {
	if c.disabled() {
		return nil, errNoCache
	}
	res, err := c.client.HGet(ctx, key, field).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// HSet stores a hash field, overwriting any prior value.
func (c *Client) HSet(ctx context.Context, key, field string, value []byte) error {
	if c.disabled() {
		return errNoCache
	}
	return c.client.HSet(ctx, key, field, value).Err()
}

// HDelete removes a hash field.
func (c *Client) HDelete(ctx context.Context, key, field string) error {
	if c.disabled() {
		return errNoCache
	}
	return c.client.HDel(ctx, key, field).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if c.disabled() {
		return nil
	}
	return c.client.Close()
}
