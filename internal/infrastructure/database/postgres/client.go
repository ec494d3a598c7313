package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Client struct {
	pool *pgxpool.Pool
}

type DatabaseConfig struct {
	Host           string
	Port           int
	Database       string
	Username       string
	Password       string
	SSLMode        string
	MaxConnections int
	ConnectionTTL  time.Duration
	QueryTimeout   time.Duration
}

// DSN chaîne de connexion
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.SSLMode,
	)
}

func NewClient(config *DatabaseConfig) (*Client, error) {
	poolConfig, err := pgxpool.ParseConfig(config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}

	// Configuration du pool optimisée
	poolConfig.MaxConns = 25
	if config.MaxConnections > 0 {
		poolConfig.MaxConns = int32(config.MaxConnections)
	}
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = 5 * time.Minute
	if config.ConnectionTTL > 0 {
		poolConfig.MaxConnLifetime = config.ConnectionTTL
	}
	poolConfig.MaxConnIdleTime = 30 * time.Second

	// Configuration des connexions
	statementTimeout := 30 * time.Second
	if config.QueryTimeout > 0 {
		statementTimeout = config.QueryTimeout
	}
	poolConfig.ConnConfig.ConnectTimeout = 30 * time.Second
	poolConfig.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%dms", statementTimeout.Milliseconds())
	poolConfig.ConnConfig.RuntimeParams["idle_in_transaction_session_timeout"] = "60s"

	// Optimisations PostgreSQL (paramètres session uniquement)
	poolConfig.ConnConfig.RuntimeParams["log_statement"] = "none"
	poolConfig.ConnConfig.RuntimeParams["log_min_duration_statement"] = "1000"

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	client := &Client{
		pool: pool,
	}

	// Test de connexion initial
	if err := client.Ping(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return client, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c.pool == nil {
		return fmt.Errorf("database pool is nil")
	}

	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for ping: %w", err)
	}
	defer conn.Release()

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	return nil
}

func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

func (c *Client) Pool() *pgxpool.Pool {
	return c.pool
}

func (c *Client) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return c.pool.QueryRow(ctx, sql, args...)
}

func (c *Client) Exec(ctx context.Context, sql string, args ...interface{}) error {
	_, err := c.pool.Exec(ctx, sql, args...)
	return err
}

func (c *Client) Stats() *pgxpool.Stat {
	return c.pool.Stat()
}

func (c *Client) HealthCheck(ctx context.Context) error {
	stats := c.Stats()
	
	if stats.TotalConns() == 0 {
		return fmt.Errorf("no database connections available")
	}

	if stats.IdleConns() == 0 && stats.AcquiredConns() >= stats.MaxConns() {
		return fmt.Errorf("database connection pool exhausted")
	}

	return c.Ping(ctx)
}
