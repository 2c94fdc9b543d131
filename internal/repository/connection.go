package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig describes how the cart store reaches MongoDB.
type MongoConfig struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	MinPoolSize    uint64
	ConnectTimeout time.Duration
}

func DefaultMongoConfig(uri, database string) MongoConfig {
	return MongoConfig{
		URI:            uri,
		Database:       database,
		MaxPoolSize:    100,
		MinPoolSize:    10,
		ConnectTimeout: 10 * time.Second,
	}
}

func (c MongoConfig) clientOptions() *options.ClientOptions {
	opts := options.Client().
		ApplyURI(c.URI).
		SetServerSelectionTimeout(5 * time.Second).
		SetAppName("storefront")
	if c.ConnectTimeout > 0 {
		opts.SetConnectTimeout(c.ConnectTimeout)
	}
	if c.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(c.MaxPoolSize)
	}
	if c.MinPoolSize > 0 && c.MinPoolSize <= c.MaxPoolSize {
		opts.SetMinPoolSize(c.MinPoolSize)
	}
	return opts
}

// ConnectMongoDB connects and pings the server.
func ConnectMongoDB(ctx context.Context, cfg MongoConfig) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, cfg.clientOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(cfg.Database), nil
}
