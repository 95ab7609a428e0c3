// internal/infrastructure/database/redis/connection.go
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
)

// Client wraps the Redis client and serves as a cart key-value store
type Client struct {
	Redis *redis.Client
	ttl   time.Duration
}

// NewConnection creates a new Redis connection
func NewConnection(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	// Create Redis client
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,

		// Connection timeouts
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		// Pool timeouts
		PoolTimeout: 4 * time.Second,
	})

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.WithField("addr", cfg.GetRedisAddr()).Info("Redis connection established")

	return NewClient(rdb, cfg.Cart.TTL), nil
}

// NewClient wraps an existing Redis client. Values written through Set expire
// after ttl; zero keeps them forever.
func NewClient(rdb *redis.Client, ttl time.Duration) *Client {
	return &Client{
		Redis: rdb,
		ttl:   ttl,
	}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.Redis.Close()
}

// GetClient returns the Redis client instance
func (c *Client) GetClient() *redis.Client {
	return c.Redis
}

// Health checks the Redis connection health
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return c.Redis.Ping(ctx).Err()
}

// Get retrieves a value by key. A missing key is reported as found == false.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.Redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %q failed: %w", key, err)
	}
	return val, true, nil
}

// Set stores a value under key with the client's expiration
func (c *Client) Set(ctx context.Context, key, value string) error {
	if err := c.Redis.Set(ctx, key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q failed: %w", key, err)
	}
	return nil
}

// Remove deletes a key. Deleting a missing key is not an error.
func (c *Client) Remove(ctx context.Context, key string) error {
	if err := c.Redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q failed: %w", key, err)
	}
	return nil
}
