// Package redis provides Redis connection management for the rate limit
// counter store.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pulsemetrics/analytics-api/internal/config"
	"github.com/pulsemetrics/analytics-api/pkg/logger"
)

// Connection manages the Redis client lifecycle.
type Connection struct {
	client *redis.Client
	logger logger.Logger
}

// NewConnection creates a Redis client from configuration and verifies
// connectivity with a ping. The returned connection owns the client and must
// be closed on shutdown.
func NewConnection(cfg *config.RedisConfig, log logger.Logger) (*Connection, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Millisecond,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	log.Info(ctx, "redis connection established",
		logger.String("addr", cfg.Addr()),
		logger.Int("db", cfg.DB),
		logger.Int("pool_size", cfg.PoolSize),
	)

	return &Connection{client: client, logger: log}, nil
}

// Client returns the underlying Redis client.
func (c *Connection) Client() redis.UniversalClient {
	return c.client
}

// Ping checks counter store connectivity.
func (c *Connection) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client's connection pool.
func (c *Connection) Close() error {
	if err := c.client.Close(); err != nil {
		c.logger.Error(context.Background(), "failed to close redis connection", err)
		return err
	}
	c.logger.Info(context.Background(), "redis connection closed")
	return nil
}
