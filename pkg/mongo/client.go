package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/angelmondragon/activity-seeder/pkg/config"
	"github.com/angelmondragon/activity-seeder/pkg/logger"
)

// Client wraps the MongoDB connection and the target database.
type Client struct {
	raw      *mongo.Client
	database *mongo.Database
}

// New connects to MongoDB and verifies the primary is reachable.
func New(ctx context.Context, cfg config.StoreConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	connectCtx := ctx
	if cfg.MongoConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, cfg.MongoConnectTimeout)
		defer cancel()
	}

	raw, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := raw.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = raw.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "database", cfg.MongoDatabase), "mongo connection established")
	}

	return &Client{raw: raw, database: raw.Database(cfg.MongoDatabase)}, nil
}

func optionsFromConfig(cfg config.StoreConfig) (*options.ClientOptions, error) {
	if cfg.MongoURI == "" {
		return nil, errors.New("mongo uri is required")
	}
	if cfg.MongoDatabase == "" {
		return nil, errors.New("mongo database is required")
	}
	opts := options.Client().ApplyURI(cfg.MongoURI)
	if cfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MongoMaxPoolSize)
	}
	if cfg.MongoConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.MongoConnectTimeout)
	}
	return opts, nil
}

// Collection returns a handle on the named collection of the target database.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

// Ping verifies the primary is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.raw.Ping(ctx, readpref.Primary())
}

// Close disconnects the pooled connections.
func (c *Client) Close(ctx context.Context) error {
	return c.raw.Disconnect(ctx)
}
