package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultTimeout        = 5 * time.Second
	defaultConnectTimeout = 10 * time.Second
	defaultMaxPoolSize    = 50
	defaultConnectRetries = 3
)

// Config captures the settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	// Timeout bounds every repository operation.
	Timeout time.Duration
	// ConnectTimeout bounds each connect+ping attempt at startup.
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
	ConnectRetries uint64
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.MaxPoolSize == 0 {
		c.MaxPoolSize = defaultMaxPoolSize
	}
	if c.ConnectRetries == 0 {
		c.ConnectRetries = defaultConnectRetries
	}
	return c
}

// Connect establishes a MongoDB client, verifies connectivity with a ping and
// returns both the client and the selected database. Failed attempts are
// retried with exponential backoff.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	cfg = cfg.withDefaults()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(2).
		SetMaxConnIdleTime(30 * time.Second).
		SetServerSelectionTimeout(cfg.Timeout).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetRetryWrites(true)

	var client *mongo.Client
	backoff := retry.WithMaxRetries(cfg.ConnectRetries, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()

		c, err := mongo.Connect(attemptCtx, opts)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("mongo connect: %w", err))
		}
		if err := c.Ping(attemptCtx, nil); err != nil {
			_ = c.Disconnect(attemptCtx)
			return retry.RetryableError(fmt.Errorf("mongo ping: %w", err))
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return client, client.Database(cfg.Database), nil
}
