// Package rediscache shares resolved redirects between server instances via Redis.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iudanet/shortify/internal/server/cache"
)

const keyPrefix = "url:"

// Cache represents Redis redirect cache
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ cache.Cache = (*Cache)(nil)

// New connects to Redis at addr (host:port or redis:// URL) and checks the connection
func New(ctx context.Context, addr string, ttl time.Duration) (*Cache, error) {
	opt, err := redis.ParseURL(addr)
	if err != nil {
		opt = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewWithClient(client, ttl), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get returns cached URL for the code
func (c *Cache) Get(ctx context.Context, code string) (string, error) {
	url, err := c.client.Get(ctx, keyPrefix+code).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", cache.ErrMiss
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return url, nil
}

// Set stores URL for the code
func (c *Cache) Set(ctx context.Context, code, url string) error {
	if err := c.client.Set(ctx, keyPrefix+code, url, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete drops the code from cache
func (c *Cache) Delete(ctx context.Context, code string) error {
	if err := c.client.Del(ctx, keyPrefix+code).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the client
func (c *Cache) Close() error {
	return c.client.Close()
}
