package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	rdb          *redis.Client
	keyGenerator *RedisKeyGenerator
}

type RedisConfig struct {
	Host        string
	Port        int
	Password    string
	Database    int
	MaxRetries  int
	PoolSize    int
	PoolTimeout time.Duration
	Namespace   string
}

func NewClient(config *RedisConfig, keyGenerator *RedisKeyGenerator) (*Client, error) {
	opts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password:     config.Password,
		DB:           config.Database,
		MaxRetries:   config.MaxRetries,
		PoolSize:     config.PoolSize,
		PoolTimeout:  config.PoolTimeout,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MinIdleConns: 2,
	}

	rdb := redis.NewClient(opts)

	client := &Client{
		rdb:          rdb,
		keyGenerator: keyGenerator,
	}

	// Test connexion
	if err := client.Ping(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c.rdb == nil {
		return fmt.Errorf("Redis client is nil")
	}

	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	return nil
}

func (c *Client) Close() {
	if c.rdb != nil {
		c.rdb.Close()
	}
}

func (c *Client) Client() *redis.Client {
	return c.rdb
}

func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.Ping(ctx); err != nil {
		return err
	}

	// Vérifier les statistiques de pool
	stats := c.rdb.PoolStats()
	if stats.TotalConns == 0 {
		return fmt.Errorf("no Redis connections available")
	}

	return nil
}

func (c *Client) Stats() *redis.PoolStats {
	return c.rdb.PoolStats()
}
