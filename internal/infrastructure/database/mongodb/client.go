package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Client struct {
	client   *mongo.Client
	database *mongo.Database
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    int
}

func NewClient(config *MongoConfig) (*Client, error) {
	timeout := config.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(config.URI)

	// Configuration du pool de connexions
	if config.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(uint64(config.MaxPoolSize))
	}
	clientOptions.SetMinPoolSize(2)
	clientOptions.SetMaxConnIdleTime(30 * time.Minute)
	clientOptions.SetConnectTimeout(timeout)
	clientOptions.SetServerSelectionTimeout(5 * time.Second)

	// Lecture sur le primaire: une écriture doit être relue immédiatement
	clientOptions.SetReadPreference(readpref.Primary())
	clientOptions.SetRetryWrites(true)
	clientOptions.SetRetryReads(true)

	mongoClient, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	client := &Client{
		client:   mongoClient,
		database: mongoClient.Database(config.Database),
	}

	// Test de connexion
	if err := client.Ping(ctx); err != nil {
		client.Close(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("MongoDB client is nil")
	}

	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	return nil
}

func (c *Client) Close(ctx context.Context) error {
	if c.client != nil {
		return c.client.Disconnect(ctx)
	}
	return nil
}

func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}
